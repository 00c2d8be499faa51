// Package result 把对账差异汇总为带严重级别的结果条目，并给出通过/失败结论。
package result

import (
	"fmt"
	"strings"

	"react-intl-lint/internal/rules"
)

const (
	DirectionUnused  = "unused"
	DirectionMissing = "missing"
)

// Entry 一条结果，创建后不再修改。
type Entry struct {
	Rule     rules.RuleKind `json:"rule" yaml:"rule"`
	Severity rules.Severity `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
	Key      string         `json:"key" yaml:"key"`
	// File 相关的语言文件；zombieKeys/missing 没有语言文件。
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty"`
	// Suggestion misprintKeys 的候选键。
	Suggestion string  `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Score      float64 `json:"score,omitempty" yaml:"score,omitempty"`
	// View 键在源码中首次出现的位置。
	View   string `json:"view,omitempty" yaml:"view,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// CliModel 一次运行的最终结果。
type CliModel struct {
	Entries    []Entry
	Warnings   int
	Errors     int
	MaxWarning uint

	fatal    bool
	fatalMsg string
}

// NewFatal 致命错误（无项目文件、无可用语言来源），不产生任何条目。
func NewFatal(msg string) *CliModel {
	return &CliModel{fatal: true, fatalMsg: msg}
}

func (m *CliModel) HasFatal() bool {
	return m.fatal
}

func (m *CliModel) FatalMessage() string {
	return m.fatalMsg
}

// Passed errors == 0 且 warnings <= maxWarning。
func (m *CliModel) Passed() bool {
	if m.fatal {
		return false
	}
	return m.Errors == 0 && uint(m.Warnings) <= m.MaxWarning
}

// ExitCode 通过返回 0，否则返回 1。
func (m *CliModel) ExitCode() int {
	if m.Passed() {
		return 0
	}
	return 1
}

// CountsByRule 每条规则的条目数，未出现的规则不在结果中。
func (m *CliModel) CountsByRule() map[rules.RuleKind]int {
	out := map[rules.RuleKind]int{}
	for _, e := range m.Entries {
		out[e.Rule]++
	}
	return out
}

func (m *CliModel) Summary() string {
	if m.fatal {
		return "致命错误：" + m.fatalMsg
	}
	var b strings.Builder
	status := "通过"
	if !m.Passed() {
		status = "未通过"
	}
	fmt.Fprintf(&b, "%s：%d 个错误，%d 个警告（警告上限 %d）", status, m.Errors, m.Warnings, m.MaxWarning)
	if m.Errors == 0 && uint(m.Warnings) > m.MaxWarning {
		fmt.Fprintf(&b, "，警告数超过上限")
	}
	return b.String()
}
