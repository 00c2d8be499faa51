package reconcile

import (
	"context"
	"sort"

	"github.com/agext/levenshtein"

	"react-intl-lint/internal/rules"
	"react-intl-lint/internal/worker"
)

// Similarity 归一化编辑距离相似度，取值 [0,1]，1 表示完全相同。
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}

type scored struct {
	probe     string
	candidate string
	score     float64
}

// MatchMisprints 在每个来源内把「引用但未定义」与「定义但未引用」的键两两打分，
// score >= coefficient 的配对按分数降序、键名升序贪心一对一合并为 Misprint，
// 并从 Missing、Unused 以及全局 Undefined 中移除。
func MatchMisprints(ctx context.Context, pool *worker.Pool, rep *Report, cfg rules.RuleConfig) ([]error, error) {
	cfg = cfg.Normalize()
	skip, errs := rules.NewKeyMatcher(cfg.IgnoredMisprintKeys)
	resolved := map[string]struct{}{}

	for si := range rep.Sources {
		sr := &rep.Sources[si]
		probes := filterOut(sr.Missing, skip)
		candidates := filterOut(sr.Unused, skip)
		if len(probes) == 0 || len(candidates) == 0 {
			continue
		}
		slots := make([][]scored, len(probes))
		err := pool.Each(ctx, len(probes), func(_ context.Context, i int) {
			var out []scored
			for _, c := range candidates {
				if s := Similarity(probes[i], c); s >= cfg.MisprintCoefficient {
					out = append(out, scored{probe: probes[i], candidate: c, score: s})
				}
			}
			slots[i] = out
		})
		if err != nil {
			return errs, err
		}
		var pairs []scored
		for _, s := range slots {
			pairs = append(pairs, s...)
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].score != pairs[j].score {
				return pairs[i].score > pairs[j].score
			}
			if pairs[i].probe != pairs[j].probe {
				return pairs[i].probe < pairs[j].probe
			}
			return pairs[i].candidate < pairs[j].candidate
		})

		usedProbe := map[string]struct{}{}
		usedCand := map[string]struct{}{}
		for _, p := range pairs {
			if _, ok := usedProbe[p.probe]; ok {
				continue
			}
			if _, ok := usedCand[p.candidate]; ok {
				continue
			}
			usedProbe[p.probe] = struct{}{}
			usedCand[p.candidate] = struct{}{}
			resolved[p.probe] = struct{}{}
			sr.Misprints = append(sr.Misprints, Misprint{Used: p.probe, Candidate: p.candidate, Score: p.score})
		}
		sort.Slice(sr.Misprints, func(i, j int) bool { return sr.Misprints[i].Used < sr.Misprints[j].Used })
		sr.Missing = without(sr.Missing, usedProbe)
		sr.Unused = without(sr.Unused, usedCand)
	}
	rep.Undefined = without(rep.Undefined, resolved)
	return errs, nil
}

func filterOut(keys []string, m *rules.KeyMatcher) []string {
	if m.Empty() {
		return keys
	}
	var out []string
	for _, k := range keys {
		if !m.Match(k) {
			out = append(out, k)
		}
	}
	return out
}
