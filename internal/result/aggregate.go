package result

import (
	"fmt"

	"react-intl-lint/internal/extract"
	"react-intl-lint/internal/reconcile"
	"react-intl-lint/internal/rules"
)

// Aggregate 是唯一的汇总步骤：所有规则产出在此转为条目并计数。
// 条目顺序：规则（keysOnViews, zombieKeys, emptyKeys, misprintKeys）→ 来源 → 键。
// 已禁用的规则不产生条目。
func Aggregate(rep *reconcile.Report, used *extract.UsedKeys, cfg rules.RuleConfig) *CliModel {
	m := &CliModel{MaxWarning: cfg.MaxWarning}
	add := func(e Entry) {
		if u, ok := used.Get(e.Key); ok {
			e.View, e.Line, e.Column = u.File, u.Line, u.Column
		}
		switch e.Severity {
		case rules.SeverityWarning:
			m.Warnings++
		case rules.SeverityError:
			m.Errors++
		}
		m.Entries = append(m.Entries, e)
	}

	for _, kind := range rules.RuleOrder {
		sev := cfg.SeverityOf(kind)
		if !sev.Enabled() {
			continue
		}
		switch kind {
		case rules.RuleKeysOnViews:
			for _, sr := range rep.Sources {
				for _, k := range sr.Missing {
					add(Entry{
						Rule: kind, Severity: sev, Key: k, File: sr.File, Language: sr.Language,
						Message: fmt.Sprintf("键 %q 在源码中使用，但 %s 中不存在", k, sr.File),
					})
				}
			}
		case rules.RuleZombieKeys:
			for _, sr := range rep.Sources {
				for _, k := range sr.Unused {
					add(Entry{
						Rule: kind, Severity: sev, Key: k, File: sr.File, Language: sr.Language, Direction: DirectionUnused,
						Message: fmt.Sprintf("键 %q 在 %s 中定义，但源码中从未使用", k, sr.File),
					})
				}
			}
			for _, k := range rep.Undefined {
				add(Entry{
					Rule: kind, Severity: sev, Key: k, Direction: DirectionMissing,
					Message: fmt.Sprintf("键 %q 在源码中使用，但任何语言文件都没有定义", k),
				})
			}
		case rules.RuleEmptyKeys:
			for _, sr := range rep.Sources {
				for _, k := range sr.Empty {
					add(Entry{
						Rule: kind, Severity: sev, Key: k, File: sr.File, Language: sr.Language,
						Message: fmt.Sprintf("键 %q 在 %s 中的值为空", k, sr.File),
					})
				}
			}
		case rules.RuleMisprintKeys:
			for _, sr := range rep.Sources {
				for _, mp := range sr.Misprints {
					add(Entry{
						Rule: kind, Severity: sev, Key: mp.Used, File: sr.File, Language: sr.Language,
						Suggestion: mp.Candidate, Score: mp.Score,
						Message: fmt.Sprintf("键 %q 在 %s 中不存在，疑似拼写错误：%s → %s（相似度 %.2f）",
							mp.Used, sr.File, mp.Candidate, mp.Used, mp.Score),
					})
				}
			}
		}
	}
	return m
}
