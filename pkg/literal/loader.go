package literal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported file encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// Loader はリテラルファイルの読み込みを行う
type Loader struct {
	encoding string
}

// NewLoader Loaderを作成
func NewLoader(encoding string) (*Loader, error) {
	enc, err := NormalizeEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &Loader{encoding: enc}, nil
}

// NormalizeEncoding エンコーディング名を正規化（空文字列はUTF-8）
func NormalizeEncoding(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "shift_jis", "shift-jis", "sjis":
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", name)
	}
}

// Load ファイルを読み込み、リテラルを解析する
func (l *Loader) Load(path string) ([]Literal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text, err := l.decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	literals, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return literals, nil
}

func (l *Loader) decode(data []byte) (string, error) {
	if l.encoding == EncodingShiftJIS {
		return convertShiftJISToUTF8(data)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("input is not valid UTF-8")
	}
	// BOMがあれば取り除く
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-8: %w", err)
	}
	return string(text), nil
}

// convertShiftJISToUTF8 Shift-JISからUTF-8に変換
func convertShiftJISToUTF8(data []byte) (string, error) {
	decoder := japanese.ShiftJIS.NewDecoder()
	reader := transform.NewReader(bytes.NewReader(data), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}

	return string(utf8Data), nil
}
