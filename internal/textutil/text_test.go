package textutil

import (
	"bytes"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDetectBinary(t *testing.T) {
	if DetectBinary(nil) {
		t.Fatalf("empty should not be binary")
	}
	if !DetectBinary([]byte{1, 2, 0, 3}) {
		t.Fatalf("nul byte should be binary")
	}
	if !DetectBinary([]byte{1, 2, 3, 4, 5, 6, 7, 'a'}) {
		t.Fatalf("high control-ratio should be binary")
	}
	if DetectBinary([]byte("hello\nworld\t123")) {
		t.Fatalf("plain text should not be binary")
	}
	late := append(bytes.Repeat([]byte("a"), binarySampleSize), 0)
	if DetectBinary(late) {
		t.Fatalf("only the leading sample should be inspected")
	}
}

func TestDecode(t *testing.T) {
	dec, err := Decode([]byte("hello"))
	if err != nil || dec.Encoding != "utf-8" {
		t.Fatalf("utf8 decode failed: %+v %v", dec, err)
	}
	dec, err = Decode([]byte("\uFEFFt('a.b')"))
	if err != nil || dec.Text != "t('a.b')" {
		t.Fatalf("bom should be stripped: %q %v", dec.Text, err)
	}

	gbkBytes, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("中文"))
	if err != nil {
		t.Fatalf("encode gbk: %v", err)
	}
	dec, err = Decode(gbkBytes)
	if err != nil {
		t.Fatalf("gbk decode failed: %v", err)
	}
	if dec.Text != "中文" {
		t.Fatalf("unexpected decoded text: %q", dec.Text)
	}
}

func TestDisplayWidth(t *testing.T) {
	if DisplayWidth("\t") != 4 {
		t.Fatalf("tab width should be 4")
	}
	if DisplayWidth("a\t") != 4 {
		t.Fatalf("tab stop width mismatch")
	}
	if DisplayWidth("通用.保存") != 9 {
		t.Fatalf("cjk width mismatch: %d", DisplayWidth("通用.保存"))
	}
}

func TestHashAndLocator(t *testing.T) {
	h := HashSHA256([]byte("abc"))
	if len(h) != 64 {
		t.Fatalf("unexpected sha length: %d", len(h))
	}
	if runeColumnAtByteOffset("你好A", 0) != 1 {
		t.Fatalf("col at 0 should be 1")
	}
	if runeColumnAtByteOffset("你好A", 3) != 2 {
		t.Fatalf("col mismatch")
	}

	loc := NewLocator("abc\n你好A\n")
	if p := loc.At(0); p.Line != 1 || p.Column != 1 {
		t.Fatalf("bad pos: %+v", p)
	}
	// "A" 在第 2 行第 3 个字符
	if p := loc.At(4 + 6); p.Line != 2 || p.Column != 3 {
		t.Fatalf("bad pos: %+v", p)
	}
}

func TestCompilePattern(t *testing.T) {
	rx, err := CompilePattern("abc", true)
	if err != nil || !rx.MatchString("abc") {
		t.Fatalf("compile pattern failed: %v", err)
	}
	rx, err = CompilePattern("abc", false)
	if err != nil || !rx.MatchString("ABC") {
		t.Fatalf("case-insensitive compile failed: %v", err)
	}
	if _, err := CompilePattern("(", true); err == nil {
		t.Fatalf("expected invalid regex error")
	}
}
