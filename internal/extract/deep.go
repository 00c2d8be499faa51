package extract

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"react-intl-lint/internal/scan"
	"react-intl-lint/internal/textutil"
	"react-intl-lint/internal/worker"
)

const quoteClass = `['"` + bt + `]`

// ProbePattern 为一个已定义的键生成深度搜索正则：
// 键整体被引号包围，或键的某个点号前缀后紧跟插值（模板字符串的 ${ 或 引号 + 拼接）。
func ProbePattern(key string) *regexp.Regexp {
	alts := []string{quoteClass + regexp.QuoteMeta(key) + quoteClass}
	parts := strings.Split(key, ".")
	for i := 1; i < len(parts); i++ {
		prefix := regexp.QuoteMeta(strings.Join(parts[:i], ".") + ".")
		alts = append(alts, quoteClass+prefix+`(?:\$\{|['"]\s*\+)`)
	}
	return regexp.MustCompile(`(?:` + strings.Join(alts, "|") + `)`)
}

// DeepSearch 对 used 中尚未出现的每个已定义键逐一扫描全部文件，命中的键并入 used。
// 每个键一个任务；返回新增键数量。
func DeepSearch(ctx context.Context, pool *worker.Pool, files []scan.File, defined []string, used *UsedKeys, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var probes []string
	for _, k := range defined {
		if !used.Has(k) {
			probes = append(probes, k)
		}
	}
	log.Warn("deep search enabled, scanning every file once per defined key",
		zap.Int("keys", len(probes)),
		zap.Int("files", len(files)),
	)
	slots := make([]*KeyUsage, len(probes))
	err := pool.Each(ctx, len(probes), func(ctx context.Context, i int) {
		re := ProbePattern(probes[i])
		for _, f := range files {
			if ctx.Err() != nil {
				return
			}
			loc := re.FindStringIndex(f.Text)
			if loc == nil {
				continue
			}
			p := textutil.NewLocator(f.Text).At(loc[0] + 1)
			slots[i] = &KeyUsage{Key: probes[i], File: f.Path, Line: p.Line, Column: p.Column}
			return
		}
	})
	if err != nil {
		return 0, err
	}
	added := 0
	for _, s := range slots {
		if s != nil && used.Add(*s) {
			added++
		}
	}
	return added, nil
}
