// Package reconcile 对比被引用的键与语言文件中定义的键，得出各规则的原始差异。
package reconcile

import (
	"sort"
	"strings"

	"react-intl-lint/internal/extract"
	"react-intl-lint/internal/locale"
	"react-intl-lint/internal/rules"
)

// Misprint 一对被判定为拼写错误的键：Used 在源码中引用但未定义，Candidate 已定义但未被引用。
type Misprint struct {
	Used      string
	Candidate string
	Score     float64
}

// SourceReport 单个语言来源的差异，键列表均已排序。
type SourceReport struct {
	Language string
	File     string
	Remote   bool
	// Missing 源码引用了、本来源没有定义（keysOnViews）。
	Missing []string
	// Unused 本来源定义了、源码从未引用（zombieKeys/unused）。
	Unused    []string
	Empty     []string
	Misprints []Misprint
}

type Report struct {
	Sources []SourceReport
	// Undefined 源码引用了、任何来源都没有定义（zombieKeys/missing）。
	Undefined []string
	UsedKeys  int
	// DefinedKeys 全部来源的键并集大小。
	DefinedKeys int
}

// Reconcile 先剔除 ignoredKeys，再逐来源计算集合差。规则之间的重叠不做抑制。
func Reconcile(used *extract.UsedKeys, sources []locale.Source, cfg rules.RuleConfig) (*Report, []error) {
	ignored, errs := rules.NewKeyMatcher(cfg.IgnoredKeys)

	usedSet := map[string]struct{}{}
	for _, k := range used.Keys() {
		if ignored.Match(k) {
			continue
		}
		usedSet[k] = struct{}{}
	}

	union := map[string]struct{}{}
	rep := &Report{UsedKeys: len(usedSet)}
	for _, src := range sources {
		defined := map[string]struct{}{}
		sr := SourceReport{Language: src.Language, File: src.File, Remote: src.Remote}
		for _, e := range src.Entries {
			if ignored.Match(e.Key) {
				continue
			}
			defined[e.Key] = struct{}{}
			union[e.Key] = struct{}{}
			if strings.TrimSpace(e.Value) == "" {
				sr.Empty = append(sr.Empty, e.Key)
			}
		}
		sr.Missing = difference(usedSet, defined)
		sr.Unused = difference(defined, usedSet)
		sort.Strings(sr.Empty)
		rep.Sources = append(rep.Sources, sr)
	}
	rep.Undefined = difference(usedSet, union)
	rep.DefinedKeys = len(union)
	return rep, errs
}

// DefinedKeys 全部来源中定义过的键，排序去重。
func DefinedKeys(sources []locale.Source) []string {
	set := map[string]struct{}{}
	for _, src := range sources {
		for _, e := range src.Entries {
			set[e.Key] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func without(list []string, drop map[string]struct{}) []string {
	if len(drop) == 0 {
		return list
	}
	out := list[:0:0]
	for _, k := range list {
		if _, ok := drop[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
