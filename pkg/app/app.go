package app

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/zurustar/arraystore/pkg/array"
	"github.com/zurustar/arraystore/pkg/cli"
	"github.com/zurustar/arraystore/pkg/literal"
	"github.com/zurustar/arraystore/pkg/logger"
	"github.com/zurustar/arraystore/pkg/sharing"
	"github.com/zurustar/arraystore/pkg/storage"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config   *cli.Config
	log      *slog.Logger
	out      io.Writer
	registry *prometheus.Registry
	stores   *storage.Registry
	engine   *array.Engine
}

// New Applicationを作成
func New(out io.Writer) *Application {
	return &Application{
		out: out,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.out)
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Debug("Application started")

	// 3. リテラルの読み込み
	literals, err := app.loadLiterals()
	if err != nil {
		return fmt.Errorf("failed to load literals: %w", err)
	}

	app.log.Debug("Literals loaded", "count", len(literals))

	// 4. エンジンの構築と配列の構築
	app.initEngine()
	target, sources, err := app.buildArrays(literals)
	if err != nil {
		return fmt.Errorf("failed to build arrays: %w", err)
	}

	// 5. 追加の実行
	if err := app.appendAll(target, sources); err != nil {
		return fmt.Errorf("failed to append: %w", err)
	}

	// 6. 結果の出力
	fmt.Fprintln(app.out, describe(target))
	if app.config.Metrics {
		if err := app.printMetrics(); err != nil {
			return fmt.Errorf("failed to print metrics: %w", err)
		}
	}

	app.log.Debug("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel, app.config.LogFormat); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadLiterals ファイルまたはフラグからリテラルを読み込む
func (app *Application) loadLiterals() ([]literal.Literal, error) {
	if app.config.InputPath != "" {
		loader, err := literal.NewLoader(app.config.Encoding)
		if err != nil {
			return nil, err
		}
		literals, err := loader.Load(app.config.InputPath)
		if err != nil {
			return nil, err
		}
		if len(literals) < 2 {
			return nil, fmt.Errorf("%s: need a target and at least one source, got %d literals", app.config.InputPath, len(literals))
		}
		return literals, nil
	}

	var literals []literal.Literal
	for _, text := range append([]string{app.config.Target}, app.config.Sources...) {
		lit, err := literal.ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", text, err)
		}
		literals = append(literals, lit)
	}
	return literals, nil
}

// buildArrays 先頭をターゲット、残りをソースとして配列を構築（容量上限はエンジンと共通）
func (app *Application) buildArrays(literals []literal.Literal) (*array.Array, []*array.Array, error) {
	arrays := make([]*array.Array, len(literals))
	for i, lit := range literals {
		a, err := lit.BuildIn(app.stores)
		if err != nil {
			return nil, nil, fmt.Errorf("literal %d: %w", i+1, err)
		}
		app.log.Debug("Array built", "index", i, "kind", a.Kind(), "size", a.Size(), "capacity", a.Capacity())
		arrays[i] = a
	}

	target := arrays[0]
	if app.config.Shared {
		target.MarkShared()
	}
	return target, arrays[1:], nil
}

// initEngine 設定に従って追加エンジンを構築
func (app *Application) initEngine() {
	app.registry = prometheus.NewRegistry()
	app.stores = storage.NewDefaultRegistry(storage.WithMaxCapacity(app.config.MaxCapacity))
	app.engine = array.NewEngine(
		array.WithRegistry(app.stores),
		array.WithGrowthPolicy(app.config.Growth.Policy()),
		array.WithPropagator(sharing.WriteBarrier{}),
		array.WithLogger(app.log),
		array.WithMetrics(array.NewMetrics(app.registry)),
	)
}

// appendAll ソースを順にターゲットへ追加（1回の呼び出しで1つの配列）
func (app *Application) appendAll(target *array.Array, sources []*array.Array) error {
	site := app.engine.NewCallSite()
	for i, source := range sources {
		path := app.engine.Plan(target, source)
		if _, err := site.AppendAll(target, source); err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
		app.log.Info("Appended", "source", i+1, "path", path, "kind", target.Kind(), "size", target.Size(), "capacity", target.Capacity())
	}
	return nil
}

// printMetrics 収集したメトリクスを表示
func (app *Application) printMetrics() error {
	families, err := app.registry.Gather()
	if err != nil {
		return err
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			fmt.Fprintf(app.out, "%s%s %s\n", f.GetName(), formatLabels(m.GetLabel()), formatValue(f.GetType(), m))
		}
	}
	return nil
}

// describe 配列の状態を1行で表す
func describe(a *array.Array) string {
	return fmt.Sprintf("kind=%s size=%d capacity=%d shared=%t values=%s", a.Kind(), a.Size(), a.Capacity(), a.IsShared(), a)
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for _, l := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}

func formatValue(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%g", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "?"
	}
}
