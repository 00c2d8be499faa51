// Package textutil 文本解码、二进制识别、显示宽度与行列定位。
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	TabWidth = 4
	// binarySampleSize 只看文件开头这么多字节判断是否二进制。
	binarySampleSize = 8192
)

type Decoded struct {
	Text     string
	Encoding string
}

type Position struct {
	Line   int
	Column int
}

// DetectBinary 含 NUL 或控制字符占比超过 30% 即视为二进制。
func DetectBinary(data []byte) bool {
	sample := data
	if len(sample) > binarySampleSize {
		sample = sample[:binarySampleSize]
	}
	if len(sample) == 0 {
		return false
	}
	ctl := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b == 9 || b == 10 || b == 13 {
			continue
		}
		if b < 32 || b == 127 {
			ctl++
		}
	}
	ratio := float64(ctl) / float64(len(sample))
	return ratio > 0.30
}

// Decode 依次尝试 utf-8、gb18030、gbk。
func Decode(data []byte) (Decoded, error) {
	if utf8.Valid(data) {
		return Decoded{Text: strings.TrimPrefix(string(data), "\uFEFF"), Encoding: "utf-8"}, nil
	}
	if out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(data); err == nil && utf8.Valid(out) {
		return Decoded{Text: string(out), Encoding: "gb18030"}, nil
	}
	if out, err := simplifiedchinese.GBK.NewDecoder().Bytes(data); err == nil && utf8.Valid(out) {
		return Decoded{Text: string(out), Encoding: "gbk"}, nil
	}
	return Decoded{}, fmt.Errorf("无法识别文本编码（支持 utf-8/gbk/gb18030）")
}

// DisplayWidth 终端显示宽度：CJK 记 2，制表符按 TabWidth 对齐。
func DisplayWidth(s string) int {
	col := 0
	for _, r := range s {
		if r == '\t' {
			col += TabWidth - (col % TabWidth)
			continue
		}
		w := runewidth.RuneWidth(r)
		if w <= 0 {
			w = 1
		}
		col += w
	}
	return col
}

func HashSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Locator 把字节偏移换算为 1 起始的行号与字符列号。
type Locator struct {
	lines   []string
	offsets []int
}

func NewLocator(text string) Locator {
	lines := strings.Split(text, "\n")
	return Locator{lines: lines, offsets: buildLineOffsets(lines)}
}

func (l Locator) At(off int) Position {
	if len(l.lines) == 0 {
		return Position{}
	}
	i := sort.Search(len(l.offsets), func(i int) bool { return l.offsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return Position{Line: i + 1, Column: runeColumnAtByteOffset(l.lines[i], off-l.offsets[i])}
}

func runeColumnAtByteOffset(line string, byteOffset int) int {
	if byteOffset <= 0 {
		return 1
	}
	if byteOffset > len(line) {
		byteOffset = len(line)
	}
	return utf8.RuneCountInString(line[:byteOffset]) + 1
}

func buildLineOffsets(lines []string) []int {
	off := 0
	o := make([]int, 0, len(lines))
	for _, ln := range lines {
		o = append(o, off)
		off += len(ln) + 1 // + '\n'
	}
	return o
}

func CompilePattern(p string, caseSensitive bool) (*regexp.Regexp, error) {
	if caseSensitive {
		return regexp.Compile(p)
	}
	return regexp.Compile("(?i)" + p)
}
