package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zurustar/arraystore/pkg/growth"
	"github.com/zurustar/arraystore/pkg/literal"
	"github.com/zurustar/arraystore/pkg/storage"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	InputPath   string        // リテラルファイルのパス（1行目がターゲット、以降がソース）
	Target      string        // ターゲット配列のリテラル
	Sources     []string      // ソース配列のリテラル（指定順に追加）
	Encoding    string        // リテラルファイルのエンコーディング
	LogLevel    string        // ログレベル（debug, info, warn, error）
	LogFormat   string        // ログ形式（text, json）
	Shared      bool          // ターゲットを共有状態にしてから追加する
	Metrics     bool          // 終了時にメトリクスを表示
	MaxCapacity int           // ストアの最大容量
	Growth      growth.Config // 容量拡張ポリシー
	ShowHelp    bool          // ヘルプ表示フラグ
}

// sourceFlags は -source を複数回指定できるようにする
type sourceFlags struct {
	values *[]string
}

func (s sourceFlags) String() string {
	if s.values == nil {
		return ""
	}
	return strings.Join(*s.values, " ")
}

func (s sourceFlags) Set(v string) error {
	*s.values = append(*s.values, v)
	return nil
}

// boolFlags は値を取らないフラグ
var boolFlags = map[string]bool{
	"h": true, "help": true,
	"m": true, "metrics": true,
	"shared":       true,
	"growth.exact": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("arraystore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	fs.StringVar(&config.Target, "target", "", "ターゲット配列のリテラル")
	fs.Var(sourceFlags{values: &config.Sources}, "source", "ソース配列のリテラル（複数指定可）")
	fs.StringVar(&config.Encoding, "encoding", "", "リテラルファイルのエンコーディング（utf-8, shift_jis）")
	fs.StringVar(&config.Encoding, "e", "", "エンコーディング（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.LogFormat, "log-format", "", "ログ形式（text, json）")
	fs.BoolVar(&config.Shared, "shared", false, "ターゲットを共有状態にする")
	fs.BoolVar(&config.Metrics, "metrics", false, "メトリクスを表示")
	fs.BoolVar(&config.Metrics, "m", false, "メトリクスを表示（短縮形）")
	fs.IntVar(&config.MaxCapacity, "max-capacity", storage.DefaultMaxCapacity, "ストアの最大容量")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")
	config.Growth.RegisterFlags(fs)

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}
	if config.LogFormat == "" {
		config.LogFormat = strings.ToLower(os.Getenv("LOG_FORMAT"))
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.Encoding == "" {
		config.Encoding = os.Getenv("ARRAYSTORE_ENCODING")
	}

	if config.ShowHelp {
		return config, nil
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}
	if config.LogFormat != "text" && config.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format: %s (must be text or json)", config.LogFormat)
	}

	encoding, err := literal.NormalizeEncoding(config.Encoding)
	if err != nil {
		return nil, err
	}
	config.Encoding = encoding

	if config.MaxCapacity < 0 {
		return nil, fmt.Errorf("max capacity must be non-negative, got %d", config.MaxCapacity)
	}
	if err := config.Growth.Validate(); err != nil {
		return nil, err
	}

	// 位置引数（リテラルファイルのパス）
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one literal file, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		config.InputPath = fs.Arg(0)
	}

	switch {
	case config.InputPath != "" && config.Target != "":
		return nil, fmt.Errorf("a literal file and -target cannot be combined")
	case config.InputPath == "" && config.Target == "":
		return nil, fmt.Errorf("either a literal file or -target is required")
	case config.Target != "" && len(config.Sources) == 0:
		return nil, fmt.Errorf("-target requires at least one -source")
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -name=value 形式とブール型フラグは次の引数を取らない
			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") || boolFlags[name] {
				continue
			}
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `arraystore - array append inspector

Usage:
  arraystore [options] <literal-file>
  arraystore [options] -target <literal> -source <literal> [-source <literal> ...]

Arguments:
  literal-file    1行に1つの配列リテラルを書いたファイル
                  1行目がターゲット、2行目以降を順に追加する

Literal:
  [<kind>[/<capacity>]] <json-array>
  kind: empty, int, long, double, object（省略時は値から推定）
  例: int/4 [1, 2, 3]    object ["a", 3.5]

Options:
  -target <literal>           ターゲット配列
  -source <literal>           追加する配列（複数指定可）
  -e, --encoding <name>       ファイルのエンコーディング: utf-8, shift_jis（デフォルト: utf-8）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --log-format <format>       ログ形式: text, json（デフォルト: text）
  --shared                    ターゲットを共有状態にしてから追加する
  -m, --metrics               終了時にメトリクスを表示
  --max-capacity <n>          ストアの最大容量
  --growth.floor <n>          拡張時の最小容量（デフォルト: 16）
  --growth.factor <n>         拡張時の倍率（デフォルト: 2）
  --growth.exact              必要なサイズちょうどに拡張する
  -h, --help                  このヘルプを表示

Environment Variables:
  LOG_LEVEL=<level>           ログレベル
  LOG_FORMAT=<format>         ログ形式
  ARRAYSTORE_ENCODING=<name>  ファイルのエンコーディング

Examples:
  arraystore -target 'int/4 [1, 2, 3]' -source '[4, 5]'
  arraystore -target '[1, 2]' -source 'object ["a", 3.5]' --metrics
  arraystore -e sjis arrays.txt
`)
}
