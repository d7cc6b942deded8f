package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/zurustar/arraystore/pkg/growth"
	"github.com/zurustar/arraystore/pkg/literal"
	"github.com/zurustar/arraystore/pkg/storage"
)

func TestParseArgs_ValidArgs(t *testing.T) {
	defaultGrowth := growth.Config{Floor: growth.DefaultFloor, Factor: growth.DefaultFactor}

	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name: "リテラルファイル指定",
			args: []string{"/path/to/arrays.txt"},
			expected: Config{
				InputPath:   "/path/to/arrays.txt",
				Encoding:    literal.EncodingUTF8,
				LogLevel:    "info",
				LogFormat:   "text",
				MaxCapacity: storage.DefaultMaxCapacity,
				Growth:      defaultGrowth,
			},
		},
		{
			name: "インラインリテラル",
			args: []string{"-target", "int/4 [1, 2, 3]", "-source", "[4, 5]"},
			expected: Config{
				Target:      "int/4 [1, 2, 3]",
				Sources:     []string{"[4, 5]"},
				Encoding:    literal.EncodingUTF8,
				LogLevel:    "info",
				LogFormat:   "text",
				MaxCapacity: storage.DefaultMaxCapacity,
				Growth:      defaultGrowth,
			},
		},
		{
			name: "複数のソース",
			args: []string{"-target", "[1]", "-source", "[2]", "-source", `["a"]`},
			expected: Config{
				Target:      "[1]",
				Sources:     []string{"[2]", `["a"]`},
				Encoding:    literal.EncodingUTF8,
				LogLevel:    "info",
				LogFormat:   "text",
				MaxCapacity: storage.DefaultMaxCapacity,
				Growth:      defaultGrowth,
			},
		},
		{
			name: "複数オプション",
			args: []string{"--log-level", "debug", "--log-format", "json", "-e", "sjis", "--shared", "-m", "arrays.txt"},
			expected: Config{
				InputPath:   "arrays.txt",
				Encoding:    literal.EncodingShiftJIS,
				LogLevel:    "debug",
				LogFormat:   "json",
				Shared:      true,
				Metrics:     true,
				MaxCapacity: storage.DefaultMaxCapacity,
				Growth:      defaultGrowth,
			},
		},
		{
			name: "位置引数が最初（順序に関係なく動作）",
			args: []string{"arrays.txt", "--growth.exact", "--max-capacity", "64", "-l", "warn"},
			expected: Config{
				InputPath:   "arrays.txt",
				Encoding:    literal.EncodingUTF8,
				LogLevel:    "warn",
				LogFormat:   "text",
				MaxCapacity: 64,
				Growth:      growth.Config{Floor: growth.DefaultFloor, Factor: growth.DefaultFactor, Exact: true},
			},
		},
		{
			name: "拡張ポリシー指定",
			args: []string{"--growth.floor=4", "--growth.factor", "3", "arrays.txt"},
			expected: Config{
				InputPath:   "arrays.txt",
				Encoding:    literal.EncodingUTF8,
				LogLevel:    "info",
				LogFormat:   "text",
				MaxCapacity: storage.DefaultMaxCapacity,
				Growth:      growth.Config{Floor: 4, Factor: 3},
			},
		},
		{
			name: "ヘルプ表示",
			args: []string{"--help"},
			expected: Config{
				LogLevel:    "info",
				LogFormat:   "text",
				MaxCapacity: storage.DefaultMaxCapacity,
				Growth:      defaultGrowth,
				ShowHelp:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("LOG_FORMAT", "")
			t.Setenv("ARRAYSTORE_ENCODING", "")

			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*config, tt.expected) {
				t.Errorf("ParseArgs(%q) =\n  %+v\nwant\n  %+v", tt.args, *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_Environment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("ARRAYSTORE_ENCODING", "shift-jis")

	config, err := ParseArgs([]string{"arrays.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", config.LogLevel, "debug")
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", config.LogFormat, "json")
	}
	if config.Encoding != literal.EncodingShiftJIS {
		t.Errorf("Encoding = %q, want %q", config.Encoding, literal.EncodingShiftJIS)
	}

	// コマンドラインフラグが優先
	config, err = ParseArgs([]string{"-l", "error", "arrays.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want %q", config.LogLevel, "error")
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "入力なし", args: []string{}},
		{name: "ソースなし", args: []string{"-target", "[1]"}},
		{name: "ファイルとターゲットの併用", args: []string{"-target", "[1]", "-source", "[2]", "arrays.txt"}},
		{name: "複数のファイル", args: []string{"a.txt", "b.txt"}},
		{name: "無効なログレベル", args: []string{"--log-level", "invalid", "arrays.txt"}},
		{name: "無効なログ形式", args: []string{"--log-format", "xml", "arrays.txt"}},
		{name: "無効なエンコーディング", args: []string{"-e", "latin1", "arrays.txt"}},
		{name: "負の最大容量", args: []string{"--max-capacity", "-1", "arrays.txt"}},
		{name: "無効な倍率", args: []string{"--growth.factor", "1", "arrays.txt"}},
		{name: "未知のフラグ", args: []string{"--bogus", "arrays.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("LOG_FORMAT", "")
			t.Setenv("ARRAYSTORE_ENCODING", "")

			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReorderArgs(t *testing.T) {
	got := reorderArgs([]string{"file.txt", "--shared", "-l", "debug", "--growth.floor=4"})
	want := []string{"--shared", "-l", "debug", "--growth.floor=4", "file.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reorderArgs() = %q, want %q", got, want)
	}
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&buf)
	if !strings.Contains(buf.String(), "Usage:") || !strings.Contains(buf.String(), "-source") {
		t.Errorf("help output is incomplete: %q", buf.String())
	}
}
