package rules

import (
	"math"
	"time"
)

const (
	DefaultMaxWarning          = 1
	DefaultMisprintCoefficient = 0.9
	DefaultFetchTimeoutMs      = 10000
	DefaultFetchRetries        = 2
)

// RuleConfig 单次运行的规则配置，按值传递，运行期间不修改。
type RuleConfig struct {
	KeysOnViews         Severity
	ZombieKeys          Severity
	EmptyKeys           Severity
	MisprintKeys        Severity
	DeepSearch          Toggle
	MaxWarning          uint
	MisprintCoefficient float64
	IgnoredKeys         []string
	IgnoredMisprintKeys []string
	CustomPatterns      []string
}

func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		KeysOnViews:         SeverityError,
		ZombieKeys:          SeverityWarning,
		EmptyKeys:           SeverityWarning,
		MisprintKeys:        SeverityDisable,
		DeepSearch:          ToggleDisable,
		MaxWarning:          DefaultMaxWarning,
		MisprintCoefficient: DefaultMisprintCoefficient,
	}
}

// Normalize 返回系数被夹在 [0,1] 内的副本。
func (c RuleConfig) Normalize() RuleConfig {
	c.MisprintCoefficient = ClampCoefficient(c.MisprintCoefficient)
	return c
}

func (c RuleConfig) SeverityOf(kind RuleKind) Severity {
	switch kind {
	case RuleKeysOnViews:
		return c.KeysOnViews
	case RuleZombieKeys:
		return c.ZombieKeys
	case RuleEmptyKeys:
		return c.EmptyKeys
	case RuleMisprintKeys:
		return c.MisprintKeys
	default:
		return SeverityDisable
	}
}

func ClampCoefficient(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FetchSettings 远程语言文件的拉取参数。
type FetchSettings struct {
	TimeoutMs int
	Retries   int
	Headers   map[string]string
}

func DefaultFetchSettings() FetchSettings {
	return FetchSettings{TimeoutMs: DefaultFetchTimeoutMs, Retries: DefaultFetchRetries}
}

func (f FetchSettings) Timeout() time.Duration {
	if f.TimeoutMs <= 0 {
		return DefaultFetchTimeoutMs * time.Millisecond
	}
	return time.Duration(f.TimeoutMs) * time.Millisecond
}
