// Package app 串起一次完整的检查：采集 → 提取 → 对账 → 汇总 → 清理僵尸键，并生成事件流。
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"react-intl-lint/internal/extract"
	"react-intl-lint/internal/locale"
	"react-intl-lint/internal/logger"
	"react-intl-lint/internal/reconcile"
	"react-intl-lint/internal/result"
	"react-intl-lint/internal/rules"
	"react-intl-lint/internal/scan"
	"react-intl-lint/internal/worker"
)

const DefaultMaxFileSize = 10 * 1024 * 1024

const (
	ExitOK        = 0
	ExitViolation = 1
	ExitInput     = 3
)

func DefaultJobs() int {
	return worker.DefaultSize()
}

type ingested struct {
	projectFiles int
	files        []scan.File
	scanDiags    []Diagnostic
	locales      locale.LoadResult
}

// Run 执行一次检查。规则违规与文件级问题都体现在 Result 中；
// 返回 error 只表示参数错误或运行本身失败（ctx 取消、线程池创建失败等）。
func Run(ctx context.Context, opts Options) (Result, error) {
	log := logger.OrNop(opts.Logger)
	rec := opts.Metrics
	if opts.Jobs <= 0 {
		opts.Jobs = DefaultJobs()
	}
	if opts.MaxFileSizeBytes <= 0 {
		opts.MaxFileSizeBytes = DefaultMaxFileSize
	}
	if strings.TrimSpace(opts.Project) == "" {
		return Result{}, &ArgErr{Msg: "缺少项目源码 glob（--project）"}
	}
	if len(opts.Languages) == 0 {
		return Result{}, &ArgErr{Msg: "缺少语言文件 glob 或 URL（--languages）"}
	}
	cfg := opts.Rules.Normalize()
	res := Result{}

	x, perrs := extract.New(cfg.CustomPatterns)
	for _, pe := range perrs {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Category: "config", Code: "custom_pattern_invalid", Path: pe.Pattern, Detail: pe.Error()})
	}

	pool, err := worker.New("react-intl-lint", opts.Jobs, log)
	if err != nil {
		return res, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()
	log.Debug("worker pool ready", zap.Int("size", pool.Cap()))

	phase := func(name string, start time.Time) {
		rec.ObservePhase(name, start)
		log.Debug("phase finished", zap.String("phase", name), zap.Duration("elapsed", time.Since(start)), zap.Any("pool", pool.Metrics()))
	}

	start := time.Now()
	in, err := ingest(ctx, pool, opts, log)
	phase("ingest", start)
	res.Diagnostics = append(res.Diagnostics, in.scanDiags...)
	for _, f := range in.locales.Failures {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Category: "input", Code: f.Code, Path: f.Path, Detail: f.Detail})
	}
	res.Summary.ProjectFiles = in.projectFiles
	var fe *FatalErr
	if errors.As(err, &fe) {
		path := opts.Project
		if fe.Code == "languages_no_sources" {
			path = strings.Join(opts.Languages, ",")
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Category: "input", Code: fe.Code, Path: path, Detail: fe.Msg})
		res.Model = result.NewFatal(fe.Msg)
		log.Error("run aborted", zap.String("code", fe.Code), zap.String("reason", fe.Msg))
		res.finish(opts, cfg)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("ingest: %w", err)
	}
	sources := in.locales.Sources
	res.Sources = sources

	start = time.Now()
	used, err := x.Extract(ctx, pool, in.files)
	if err != nil {
		return res, fmt.Errorf("extract keys: %w", err)
	}
	if cfg.DeepSearch.On() {
		n, err := extract.DeepSearch(ctx, pool, in.files, reconcile.DefinedKeys(sources), used, log)
		if err != nil {
			return res, fmt.Errorf("deep search: %w", err)
		}
		log.Debug("deep search finished", zap.Int("found", n))
	}
	phase("extract", start)

	start = time.Now()
	rep, kerrs := reconcile.Reconcile(used, sources, cfg)
	if cfg.MisprintKeys.Enabled() {
		merrs, err := reconcile.MatchMisprints(ctx, pool, rep, cfg)
		if err != nil {
			return res, fmt.Errorf("match misprints: %w", err)
		}
		kerrs = append(kerrs, merrs...)
	}
	for _, e := range kerrs {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Category: "config", Code: "ignored_key_invalid", Detail: e.Error()})
	}
	res.Report = rep
	res.Model = result.Aggregate(rep, used, cfg)
	phase("reconcile", start)

	rec.SetKeys("used", rep.UsedKeys)
	rec.SetKeys("defined", rep.DefinedKeys)
	for _, e := range res.Model.Entries {
		rec.Result(string(e.Rule), e.Severity.String())
	}

	if opts.FixZombies {
		start = time.Now()
		fixes, diags := fixZombies(res.Sources, rep, log)
		res.Fixes = fixes
		res.Diagnostics = append(res.Diagnostics, diags...)
		for _, f := range fixes {
			rec.FixedKeys(len(f.Removed))
		}
		phase("fix", start)
	}

	res.finish(opts, cfg)
	log.Debug("run finished",
		zap.Int("entries", len(res.Model.Entries)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Bool("passed", res.Model.Passed()),
	)
	return res, nil
}

// ingest 并发采集源码与语言文件，Wait 之后才进入对账。
// 任一方的致命错误都会取消另一方。
func ingest(ctx context.Context, pool *worker.Pool, opts Options, log *zap.Logger) (*ingested, error) {
	in := &ingested{}
	rec := opts.Metrics
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sr := scan.Collect(scan.Options{
			Patterns:       []string{opts.Project},
			CWD:            opts.CWD,
			IgnorePatterns: opts.Ignore,
		})
		for _, e := range sr.Errors {
			in.scanDiags = append(in.scanDiags, Diagnostic{Category: "input", Code: e.Code, Path: e.Path, Detail: e.Detail})
		}
		in.projectFiles = len(sr.Files)
		if len(sr.Files) == 0 {
			return &FatalErr{Code: "project_no_files", Msg: fmt.Sprintf("项目 glob 没有匹配到任何文件：%s", opts.Project)}
		}
		files, errs, err := scan.Read(gctx, sr.Files, scan.ReadOptions{
			MaxFileSize: opts.MaxFileSizeBytes,
			Pool:        pool,
			OnFile:      rec.FileScanned,
		})
		if err != nil {
			return err
		}
		for _, e := range errs {
			in.scanDiags = append(in.scanDiags, Diagnostic{Category: "input", Code: e.Code, Path: e.Path, Detail: e.Detail})
		}
		in.files = files
		log.Debug("project scanned", zap.Int("matched", len(sr.Files)), zap.Int("read", len(files)))
		return nil
	})

	g.Go(func() error {
		lr, err := locale.Load(gctx, locale.Options{
			Specs:          opts.Languages,
			IgnorePatterns: opts.Ignore,
			CWD:            opts.CWD,
			Fetch:          opts.Fetch,
			Pool:           pool,
			Logger:         log,
		})
		if err != nil {
			return err
		}
		in.locales = lr
		for _, s := range lr.Sources {
			rec.LocaleSource(s.Remote, true)
		}
		for _, f := range lr.Failures {
			rec.LocaleSource(locale.IsRemote(f.Path), false)
		}
		if len(lr.Sources) == 0 {
			return &FatalErr{Code: "languages_no_sources", Msg: fmt.Sprintf("没有可用的语言来源：%s", strings.Join(opts.Languages, ","))}
		}
		log.Debug("locales loaded", zap.Int("sources", len(lr.Sources)), zap.Int("failures", len(lr.Failures)))
		return nil
	})

	err := g.Wait()
	return in, err
}

// ExitCode 致命错误 3，未通过 1，通过 0。
func (r Result) ExitCode() int {
	switch {
	case r.HasFatal():
		return ExitInput
	case r.HasViolation():
		return ExitViolation
	default:
		return ExitOK
	}
}

func (r *Result) finish(opts Options, cfg rules.RuleConfig) {
	r.Summary.LocaleFiles = len(r.Sources)
	r.Summary.MaxWarning = cfg.MaxWarning
	r.Summary.Diagnostics = len(r.Diagnostics)
	if r.Report != nil {
		r.Summary.UsedKeys = r.Report.UsedKeys
		r.Summary.DefinedKeys = r.Report.DefinedKeys
	}
	if !r.Model.HasFatal() {
		r.Summary.Warnings = r.Model.Warnings
		r.Summary.Errors = r.Model.Errors
		r.Summary.RuleCounts = map[string]int{}
		for k, n := range r.Model.CountsByRule() {
			r.Summary.RuleCounts[string(k)] = n
		}
	}
	for _, f := range r.Fixes {
		r.Summary.FixedKeys += len(f.Removed)
	}

	events := make([]map[string]any, 0, len(r.Diagnostics)+len(r.Model.Entries)+len(r.Fixes)+2)
	events = append(events, buildMeta(opts, cfg))
	for _, d := range r.Diagnostics {
		events = append(events, buildErrorEvent(d))
	}
	for _, e := range r.Model.Entries {
		events = append(events, buildResultEvent(e))
	}
	for _, f := range r.Fixes {
		events = append(events, map[string]any{
			"type":    "fix",
			"file":    f.File,
			"removed": f.Removed,
			"count":   len(f.Removed),
			"sha256":  f.SHA256,
		})
	}
	events = append(events, buildSummary(*r))
	r.Events = events
}

func buildMeta(opts Options, cfg rules.RuleConfig) map[string]any {
	return map[string]any{
		"type":          "meta",
		"tool":          "react-intl-lint",
		"version":       opts.Version,
		"cwd":           opts.CWD,
		"args":          opts.Args,
		"config_path":   opts.ConfigPath,
		"output_format": opts.Format,
		"project":       opts.Project,
		"languages":     opts.Languages,
		"ignore":        opts.Ignore,
		"rules": map[string]any{
			"keysOnViews":         cfg.KeysOnViews.String(),
			"zombieKeys":          cfg.ZombieKeys.String(),
			"emptyKeys":           cfg.EmptyKeys.String(),
			"misprintKeys":        cfg.MisprintKeys.String(),
			"deepSearch":          cfg.DeepSearch.String(),
			"maxWarning":          cfg.MaxWarning,
			"misprintCoefficient": cfg.MisprintCoefficient,
			"ignoredKeys":         cfg.IgnoredKeys,
			"ignoredMisprintKeys": cfg.IgnoredMisprintKeys,
		},
		"fix_zombies_keys": opts.FixZombies,
		"jobs":             opts.Jobs,
		"max_file_size":    opts.MaxFileSizeBytes,
		"exit_code_policy": map[string]int{"ok": 0, "violation": 1, "arg_error": 2, "input_error": 3, "config_error": 4, "internal_error": 5},
	}
}

func buildResultEvent(e result.Entry) map[string]any {
	ev := map[string]any{
		"type":     "result",
		"rule":     string(e.Rule),
		"severity": e.Severity.String(),
		"key":      e.Key,
		"message":  e.Message,
	}
	optional := map[string]string{
		"file":       e.File,
		"language":   e.Language,
		"direction":  e.Direction,
		"suggestion": e.Suggestion,
		"view":       e.View,
	}
	for k, v := range optional {
		if v != "" {
			ev[k] = v
		}
	}
	if e.Score > 0 {
		ev["score"] = e.Score
	}
	if e.Line > 0 {
		ev["line"] = e.Line
		ev["column"] = e.Column
	}
	return ev
}

func buildSummary(r Result) map[string]any {
	s := r.Summary
	m := map[string]any{
		"type":           "summary",
		"pass":           r.Model.Passed(),
		"fatal":          r.Model.HasFatal(),
		"message":        r.Model.Summary(),
		"project_files":  s.ProjectFiles,
		"locale_sources": s.LocaleFiles,
		"used_keys":      s.UsedKeys,
		"defined_keys":   s.DefinedKeys,
		"warnings":       s.Warnings,
		"errors":         s.Errors,
		"max_warning":    s.MaxWarning,
		"diagnostics":    s.Diagnostics,
		"fixed_keys":     s.FixedKeys,
		"exit_code":      r.ExitCode(),
	}
	if len(s.RuleCounts) > 0 {
		m["rule_counts"] = s.RuleCounts
	}
	return m
}
