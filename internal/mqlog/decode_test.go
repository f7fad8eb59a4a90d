package mqlog_test

import (
	"testing"

	"mqcheck/internal/mqlog"
)

func utf16le(s string, bom bool) []byte {
	var out []byte
	if bom {
		out = append(out, 0xFF, 0xFE)
	}
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

func TestDecode_UTF16LEWithBOM(t *testing.T) {
	got, err := mqlog.Decode(utf16le("Result: 0 errors\n", true))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != "Result: 0 errors\n" {
		t.Fatalf("wrong text: %q", got)
	}
}

func TestDecode_UTF16LEWithoutBOM(t *testing.T) {
	got, err := mqlog.Decode(utf16le("MQL5 Compiler build 3802\n", false))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != "MQL5 Compiler build 3802\n" {
		t.Fatalf("wrong text: %q", got)
	}
}

func TestDecode_PlainUTF8(t *testing.T) {
	got, err := mqlog.Decode([]byte("plain utf-8 log"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != "plain utf-8 log" {
		t.Fatalf("wrong text: %q", got)
	}
}
