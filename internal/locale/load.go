// Package locale 加载语言文件（本地 glob 或 HTTP URL），解析为保序树并扁平化为点号键。
package locale

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"react-intl-lint/internal/rules"
	"react-intl-lint/internal/scan"
	"react-intl-lint/internal/worker"
)

const (
	CodeParseFailed      = "locale_parse_failed"
	CodeStructureInvalid = "locale_structure_invalid"
	CodeFetchFailed      = "locale_fetch_failed"
	CodeReadFailed       = "locale_read_failed"
	CodeNotJSON          = "locale_not_json"
)

// Source 一个语言来源（一个本地文件或一个 URL），即一个对账单元。
type Source struct {
	Language string
	File     string
	Remote   bool
	Mode     fs.FileMode
	Doc      *Document
	Entries  []Entry
}

// Failure 单个来源的可恢复错误。
type Failure struct {
	Code   string
	Path   string
	Detail string
}

type Options struct {
	// Specs 已拆分的来源列表，每项是 glob、文件路径或 http(s) URL。
	Specs          []string
	IgnorePatterns []string
	CWD            string
	Fetch          rules.FetchSettings
	Pool           *worker.Pool
	Logger         *zap.Logger
	// HTTPClient 为空时按 Fetch 新建。
	HTTPClient *resty.Client
}

type LoadResult struct {
	Sources  []Source
	Failures []Failure
}

type loadTask struct {
	target string
	remote bool
}

type loadSlot struct {
	src *Source
	err *Failure
}

func IsRemote(spec string) bool {
	s := strings.ToLower(strings.TrimSpace(spec))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// LanguageCode fr.json -> fr；URL 取路径最后一段。
func LanguageCode(target string) string {
	base := target
	if IsRemote(target) {
		if u, err := url.Parse(target); err == nil {
			base = path.Base(u.Path)
			if base == "/" || base == "." || base == "" {
				return u.Host
			}
		}
	} else {
		base = filepath.Base(target)
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// NewHTTPClient 按 FetchSettings 配置超时、重试与请求头；非 2xx 响应同样重试。
func NewHTTPClient(settings rules.FetchSettings) *resty.Client {
	c := resty.New().
		SetTimeout(settings.Timeout()).
		SetRetryCount(max(settings.Retries, 0)).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.IsError()
		})
	if len(settings.Headers) > 0 {
		c.SetHeaders(settings.Headers)
	}
	return c
}

// Load 解析并加载全部来源。单个来源失败只记录 Failure，不影响其他来源；
// 只有 ctx 取消才返回 error。
func Load(ctx context.Context, opts Options) (LoadResult, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var res LoadResult
	var local []string
	var tasks []loadTask
	for _, s := range opts.Specs {
		if IsRemote(s) {
			continue
		}
		local = append(local, s)
	}
	if len(local) > 0 {
		sr := scan.Collect(scan.Options{Patterns: local, CWD: opts.CWD, IgnorePatterns: opts.IgnorePatterns})
		for _, e := range sr.Errors {
			res.Failures = append(res.Failures, Failure{Code: e.Code, Path: e.Path, Detail: e.Detail})
		}
		for _, f := range sr.Files {
			if !strings.EqualFold(filepath.Ext(f), ".json") {
				res.Failures = append(res.Failures, Failure{Code: CodeNotJSON, Path: f, Detail: "语言文件必须是 .json"})
				continue
			}
			tasks = append(tasks, loadTask{target: f})
		}
	}
	var client *resty.Client
	for _, s := range opts.Specs {
		if !IsRemote(s) {
			continue
		}
		if client == nil {
			client = opts.HTTPClient
			if client == nil {
				client = NewHTTPClient(opts.Fetch)
			}
		}
		tasks = append(tasks, loadTask{target: strings.TrimSpace(s), remote: true})
	}

	slots := make([]loadSlot, len(tasks))
	err := opts.Pool.Each(ctx, len(tasks), func(ctx context.Context, i int) {
		t := tasks[i]
		if t.remote {
			slots[i] = loadRemote(ctx, client, t.target, log)
			return
		}
		slots[i] = loadLocalFile(t.target)
	})
	if err != nil {
		return res, err
	}
	for i, s := range slots {
		if s.err == nil && s.src == nil {
			code := CodeReadFailed
			if tasks[i].remote {
				code = CodeFetchFailed
			}
			s.err = &Failure{Code: code, Path: tasks[i].target, Detail: "加载任务异常终止"}
		}
		if s.err != nil {
			res.Failures = append(res.Failures, *s.err)
			continue
		}
		res.Sources = append(res.Sources, *s.src)
	}
	return res, nil
}

var loadLocalFile = loadLocal

func loadLocal(file string) loadSlot {
	info, err := os.Stat(file)
	if err != nil {
		return loadSlot{err: &Failure{Code: CodeReadFailed, Path: file, Detail: err.Error()}}
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return loadSlot{err: &Failure{Code: CodeReadFailed, Path: file, Detail: err.Error()}}
	}
	src, f := Parse(data, file, LanguageCode(file))
	if f != nil {
		return loadSlot{err: f}
	}
	src.Mode = info.Mode().Perm()
	return loadSlot{src: &src}
}

func loadRemote(ctx context.Context, client *resty.Client, target string, log *zap.Logger) loadSlot {
	start := time.Now()
	resp, err := client.R().SetContext(ctx).Get(target)
	if err != nil {
		log.Warn("locale fetch failed", zap.String("url", target), zap.Error(err))
		return loadSlot{err: &Failure{Code: CodeFetchFailed, Path: target, Detail: err.Error()}}
	}
	if resp.IsError() {
		log.Warn("locale fetch failed", zap.String("url", target), zap.Int("status", resp.StatusCode()))
		return loadSlot{err: &Failure{
			Code:   CodeFetchFailed,
			Path:   target,
			Detail: fmt.Sprintf("HTTP %s（已重试 %d 次）", resp.Status(), max(resp.Request.Attempt-1, 0)),
		}}
	}
	log.Debug("locale fetched",
		zap.String("url", target),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", time.Since(start)),
	)
	src, f := Parse(resp.Body(), target, LanguageCode(target))
	if f != nil {
		return loadSlot{err: f}
	}
	src.Remote = true
	return loadSlot{src: &src}
}

// Parse 解析并扁平化单个语言来源。
func Parse(data []byte, file, language string) (Source, *Failure) {
	doc, err := ParseDocument(data)
	if err == nil {
		var entries []Entry
		entries, err = Flatten(doc.Root)
		if err == nil {
			entries = Translations(entries)
			for i := range entries {
				entries[i].Language = language
				entries[i].File = file
			}
			return Source{Language: language, File: file, Doc: doc, Entries: entries}, nil
		}
	}
	code := CodeParseFailed
	if errors.Is(err, ErrStructure) {
		code = CodeStructureInvalid
	}
	return Source{}, &Failure{Code: code, Path: file, Detail: err.Error()}
}
