package rules

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// KeyMatcher 匹配 ignoredKeys / ignoredMisprintKeys。
// 每项按 glob 解析（如 common.*、*.title），`*` 可跨越点号；无法解析时退化为精确匹配。
type KeyMatcher struct {
	exact map[string]struct{}
	globs []glob.Glob
}

func NewKeyMatcher(patterns []string) (*KeyMatcher, []error) {
	m := &KeyMatcher{exact: map[string]struct{}{}}
	var errs []error
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		m.exact[p] = struct{}{}
		if !strings.ContainsAny(p, "*?[{") {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("忽略键模式 %q 无效，按精确匹配处理：%w", p, err))
			continue
		}
		m.globs = append(m.globs, g)
	}
	return m, errs
}

func (m *KeyMatcher) Match(key string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.exact[key]; ok {
		return true
	}
	for _, g := range m.globs {
		if g.Match(key) {
			return true
		}
	}
	return false
}

func (m *KeyMatcher) Empty() bool {
	return m == nil || (len(m.exact) == 0 && len(m.globs) == 0)
}
