package app

import (
	"go.uber.org/zap"

	"react-intl-lint/internal/locale"
	"react-intl-lint/internal/metrics"
	"react-intl-lint/internal/reconcile"
	"react-intl-lint/internal/result"
	"react-intl-lint/internal/rules"
)

type Options struct {
	// Project 单个 glob，花括号内的逗号不拆分。
	Project   string
	Languages []string
	Ignore    []string
	CWD       string

	Rules      rules.RuleConfig
	Fetch      rules.FetchSettings
	FixZombies bool

	Jobs             int
	MaxFileSizeBytes int64
	ConfigPath       string
	Format           string
	Version          string
	Args             []string

	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Diagnostic 文件级的可恢复问题，以 error 事件输出，不影响通过与否。
type Diagnostic struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Path     string `json:"path"`
	Detail   string `json:"detail"`
}

// FixRecord 一次僵尸键清理后的文件改写。
type FixRecord struct {
	File    string
	Removed []string
	SHA256  string
}

type Summary struct {
	ProjectFiles int            `json:"project_files"`
	LocaleFiles  int            `json:"locale_sources"`
	UsedKeys     int            `json:"used_keys"`
	DefinedKeys  int            `json:"defined_keys"`
	Warnings     int            `json:"warnings"`
	Errors       int            `json:"errors"`
	MaxWarning   uint           `json:"max_warning"`
	Diagnostics  int            `json:"diagnostics"`
	FixedKeys    int            `json:"fixed_keys"`
	RuleCounts   map[string]int `json:"rule_counts,omitempty"`
}

type Result struct {
	Events      []map[string]any
	Model       *result.CliModel
	Report      *reconcile.Report
	Sources     []locale.Source
	Diagnostics []Diagnostic
	Fixes       []FixRecord
	Summary     Summary
}

// HasFatal 项目文件为空或没有可用的语言来源。
func (r Result) HasFatal() bool {
	return r.Model != nil && r.Model.HasFatal()
}

// HasViolation 规则检查未通过（不含致命错误）。
func (r Result) HasViolation() bool {
	return r.Model != nil && !r.Model.HasFatal() && !r.Model.Passed()
}

type ConfigErr struct{ Msg string }

func (e *ConfigErr) Error() string { return e.Msg }

type ArgErr struct{ Msg string }

func (e *ArgErr) Error() string { return e.Msg }

// FatalErr 中止运行的输入错误，Code 为 project_no_files 或 languages_no_sources。
type FatalErr struct {
	Code string
	Msg  string
}

func (e *FatalErr) Error() string { return e.Msg }
