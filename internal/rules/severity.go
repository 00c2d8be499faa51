package rules

import (
	"fmt"
	"strings"
)

// Severity 规则严重级别，disable < warning < error。
type Severity int

const (
	SeverityDisable Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDisable:
		return "disable"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

func (s Severity) Enabled() bool {
	return s > SeverityDisable
}

func ParseSeverity(v string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "disable", "off", "":
		return SeverityDisable, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityDisable, fmt.Errorf("无效的严重级别：%s（仅支持 disable/warning/error）", v)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Toggle 开关型规则。
type Toggle int

const (
	ToggleDisable Toggle = iota
	ToggleEnable
)

func (t Toggle) String() string {
	if t == ToggleEnable {
		return "enable"
	}
	return "disable"
}

func (t Toggle) On() bool {
	return t == ToggleEnable
}

func ParseToggle(v string) (Toggle, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "disable", "off", "false", "0", "":
		return ToggleDisable, nil
	case "enable", "on", "true", "1":
		return ToggleEnable, nil
	default:
		return ToggleDisable, fmt.Errorf("无效的开关值：%s（仅支持 disable/enable）", v)
	}
}

func (t Toggle) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Toggle) UnmarshalText(b []byte) error {
	v, err := ParseToggle(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// RuleKind 规则类型。
type RuleKind string

const (
	RuleKeysOnViews  RuleKind = "keysOnViews"
	RuleZombieKeys   RuleKind = "zombieKeys"
	RuleEmptyKeys    RuleKind = "emptyKeys"
	RuleMisprintKeys RuleKind = "misprintKeys"
)

// RuleOrder 结果输出顺序。
var RuleOrder = []RuleKind{RuleKeysOnViews, RuleZombieKeys, RuleEmptyKeys, RuleMisprintKeys}
