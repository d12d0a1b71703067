package source

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

func TestDecodeUTF8(t *testing.T) {
	got, err := Decode([]byte("\uFEFFvar x = 'ё';"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "var x = 'ё';" {
		t.Errorf("got %q", got)
	}

	if _, err := Decode([]byte{0xff, 0xfe, 0x41}, "utf-8"); err == nil {
		t.Errorf("expected an error for invalid UTF-8")
	}
}

func TestDecodeLegacyEncodings(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		encode   func(string) ([]byte, error)
		text     string
	}{
		{"shift_jis", "shift_jis", func(s string) ([]byte, error) { return japanese.ShiftJIS.NewEncoder().Bytes([]byte(s)) }, "x = 'こんにちは';"},
		{"windows-1251", "windows-1251", func(s string) ([]byte, error) { return charmap.Windows1251.NewEncoder().Bytes([]byte(s)) }, "x = 'привет';"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.encode(tt.text)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := Decode(raw, tt.encoding)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.text {
				t.Errorf("got %q, want %q", got, tt.text)
			}
		})
	}
}

func TestDecodeUnknownEncoding(t *testing.T) {
	if _, err := Decode([]byte("x"), "klingon-8"); err == nil {
		t.Errorf("expected an error for an unknown encoding")
	}
}

func TestSourceFileLine(t *testing.T) {
	sf := NewEvalSource("a = 1\r\nb = 2\n")
	if got := sf.Line(2); got != "b = 2" {
		t.Errorf("Line(2) = %q", got)
	}
	if got := sf.Line(10); got != "" {
		t.Errorf("Line(10) = %q", got)
	}
	if got := sf.Slice(4, 100); got != "1\r\nb = 2\n" {
		t.Errorf("Slice = %q", got)
	}
}
