// Package extract 从源码文本中提取被引用的翻译键。
package extract

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"react-intl-lint/internal/scan"
	"react-intl-lint/internal/textutil"
	"react-intl-lint/internal/worker"
)

// KeyUsage 键首次被引用的位置。
type KeyUsage struct {
	Key    string `json:"key"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Pattern 一条编译后的提取规则。内置规则取第一个非空分组；
// 自定义规则有分组时取第 1 组，否则取整个匹配。
type Pattern struct {
	Name   string
	Source string
	Custom bool
	re     *regexp.Regexp
}

// PatternError 自定义规则编译失败，该规则被跳过。
type PatternError struct {
	Pattern string
	Err     error
}

func (e PatternError) Error() string {
	return fmt.Sprintf("自定义键匹配规则 %q 无效：%v", e.Pattern, e.Err)
}

func (e PatternError) Unwrap() error { return e.Err }

const bt = "`"

// quoted 单引号、双引号或不含插值的模板字符串。
var quoted = `(?:'([^'\s]+)'|"([^"\s]+)"|` + bt + `([^` + bt + `\s$]+)` + bt + `)`

var builtins = []struct {
	name string
	expr string
}{
	{"t-call", `(?:^|[^\w$.])(?:this\.\$?t|\$t|t|i18n(?:ext)?\.t)\s*\(\s*` + quoted},
	{"format-message", `formatMessage\s*\(\s*\{[^}]*?\bid\s*:\s*` + quoted},
	{"formatted-component", `<Formatted\w*\b[^>]*?\bid\s*=\s*(?:\{\s*)?` + quoted},
	{"message-descriptor", `\bid\s*:\s*(?:'([\w-]+(?:\.[\w-]+)+)'|"([\w-]+(?:\.[\w-]+)+)")`},
	{"trans-i18nkey", `\bi18nKey\s*=\s*(?:\{\s*)?` + quoted},
	{"translate-pipe", quoted + `\s*\|\s*translate\b`},
	{"translate-attr", `(?:\btranslate\s*=\s*"([^"'\s]+)"|\[translate\]\s*=\s*"'([^'\s]+)'")`},
}

type Extractor struct {
	patterns []Pattern
}

// New 编译内置规则并追加自定义规则；无法编译的自定义规则以 PatternError 返回。
func New(custom []string) (*Extractor, []PatternError) {
	x := &Extractor{}
	for _, b := range builtins {
		x.patterns = append(x.patterns, Pattern{Name: b.name, Source: b.expr, re: regexp.MustCompile(b.expr)})
	}
	var errs []PatternError
	for i, raw := range custom {
		src := strings.TrimSpace(raw)
		if src == "" {
			continue
		}
		re, err := textutil.CompilePattern(normalizeCustom(src), true)
		if err != nil {
			errs = append(errs, PatternError{Pattern: src, Err: err})
			continue
		}
		x.patterns = append(x.patterns, Pattern{Name: fmt.Sprintf("custom-%d", i+1), Source: src, Custom: true, re: re})
	}
	return x, errs
}

func (x *Extractor) Patterns() []Pattern {
	return x.patterns
}

// normalizeCustom 兼容 /expr/flags 写法，flags 中的 i、s、m 转为内联标志，其余忽略。
func normalizeCustom(src string) string {
	if len(src) < 3 || src[0] != '/' {
		return src
	}
	end := strings.LastIndex(src, "/")
	if end <= 0 {
		return src
	}
	flags := src[end+1:]
	if strings.Trim(flags, "gimsuy") != "" {
		return src
	}
	var inline strings.Builder
	for _, f := range "ism" {
		if strings.ContainsRune(flags, f) {
			inline.WriteRune(f)
		}
	}
	expr := src[1:end]
	if inline.Len() > 0 {
		return "(?" + inline.String() + ")" + expr
	}
	return expr
}

type hit struct {
	key string
	off int
}

// ExtractFile 返回单个文件中的键，每个键只保留文件内首次出现的位置，按出现顺序排列。
func (x *Extractor) ExtractFile(f scan.File) []KeyUsage {
	var hits []hit
	for _, p := range x.patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(f.Text, -1) {
			if key, off, ok := pick(p, f.Text, m); ok {
				hits = append(hits, hit{key: key, off: off})
			}
		}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].off < hits[j].off })
	pos := textutil.NewLocator(f.Text)
	seen := map[string]struct{}{}
	out := make([]KeyUsage, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.key]; ok {
			continue
		}
		seen[h.key] = struct{}{}
		p := pos.At(h.off)
		out = append(out, KeyUsage{Key: h.key, File: f.Path, Line: p.Line, Column: p.Column})
	}
	return out
}

// pick 返回键文本及其在文件中的字节偏移。
func pick(p Pattern, text string, m []int) (string, int, bool) {
	groups := len(m)/2 - 1
	if p.Custom {
		if groups == 0 {
			return keyAt(text, m[0], m[1])
		}
		return keyAt(text, m[2], m[3])
	}
	for g := 1; g <= groups; g++ {
		if m[2*g] >= 0 {
			return keyAt(text, m[2*g], m[2*g+1])
		}
	}
	return "", 0, false
}

func keyAt(text string, start, end int) (string, int, bool) {
	if start < 0 || end <= start {
		return "", 0, false
	}
	key := strings.TrimSpace(text[start:end])
	if key == "" {
		return "", 0, false
	}
	return key, start, true
}

// Extract 并发提取全部文件；合并时按文件顺序进行，先到者保留出处。
func (x *Extractor) Extract(ctx context.Context, pool *worker.Pool, files []scan.File) (*UsedKeys, error) {
	slots := make([][]KeyUsage, len(files))
	err := pool.Each(ctx, len(files), func(_ context.Context, i int) {
		slots[i] = x.ExtractFile(files[i])
	})
	if err != nil {
		return nil, err
	}
	used := NewUsedKeys()
	for _, s := range slots {
		for _, u := range s {
			used.Add(u)
		}
	}
	return used, nil
}

