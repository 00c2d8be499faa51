package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var defaultIgnoreDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"coverage":     {},
}

type Options struct {
	// Patterns 每项是一个 glob（支持 ** 与 {a,b}），不含通配符时按普通文件/目录处理。
	Patterns       []string
	CWD            string
	FollowSymlinks bool
	IgnorePatterns []string
}

type GitIgnoreMatcher struct {
	Base     string
	Patterns []string
}

type ScanResult struct {
	Files  []string
	Errors []ScanError
}

type ScanError struct {
	Code   string
	Path   string
	Detail string
}

// Collect 解析全部模式，返回去重、排序后的绝对路径。
func Collect(opts Options) ScanResult {
	m := make(map[string]struct{})
	var errs []ScanError
	matchers := loadGitIgnoreMatchers(opts)

	for _, in := range opts.Patterns {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		abs := in
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(opts.CWD, in)
		}
		if HasMeta(in) {
			collectGlob(abs, opts, matchers, m, &errs)
			continue
		}
		info, err := os.Lstat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				errs = append(errs, ScanError{Code: "input_path_not_found", Path: abs, Detail: "路径不存在"})
				continue
			}
			errs = append(errs, ScanError{Code: "input_stat_failed", Path: abs, Detail: err.Error()})
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
			errs = append(errs, ScanError{Code: "symlink_skipped", Path: abs, Detail: "默认不跟随软链接"})
			continue
		}
		if info.IsDir() {
			walkDir(abs, opts, matchers, m, &errs)
			continue
		}
		if isIgnored(abs, false, opts, matchers) {
			continue
		}
		m[abs] = struct{}{}
	}

	files := make([]string, 0, len(m))
	for p := range m {
		files = append(files, p)
	}
	sort.Strings(files)
	return ScanResult{Files: files, Errors: errs}
}

func collectGlob(pattern string, opts Options, matchers []GitIgnoreMatcher, out map[string]struct{}, errs *[]ScanError) {
	pattern = filepath.Clean(pattern)
	if !doublestar.ValidatePathPattern(pattern) {
		*errs = append(*errs, ScanError{Code: "glob_invalid", Path: pattern, Detail: "glob 语法错误"})
		return
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		*errs = append(*errs, ScanError{Code: "glob_failed", Path: pattern, Detail: err.Error()})
		// 出错前已匹配到的部分仍然有效
	}
	// 模式里写明的目录（如 build/i18n/*.json）不受默认忽略目录和 .gitignore 限制
	base := literalBase(pattern)
	gitignored := matchesGitIgnore(base, true, matchers)
	for _, p := range matches {
		if inDefaultIgnoredDir(p, base) {
			continue
		}
		if !opts.FollowSymlinks {
			if info, lerr := os.Lstat(p); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
				continue
			}
		}
		if matchesUserIgnore(p, opts) {
			continue
		}
		if !gitignored && matchesGitIgnore(p, false, matchers) {
			continue
		}
		out[p] = struct{}{}
	}
}

// literalBase 模式中第一个通配段之前的目录。
func literalBase(pattern string) string {
	segs := strings.Split(filepath.ToSlash(pattern), "/")
	n := 0
	for n < len(segs)-1 && !HasMeta(segs[n]) {
		n++
	}
	base := strings.Join(segs[:n], "/")
	if base == "" && strings.HasPrefix(filepath.ToSlash(pattern), "/") {
		base = "/"
	}
	return filepath.FromSlash(base)
}

// inDefaultIgnoredDir 只检查 base 之下的目录段。
func inDefaultIgnoredDir(absPath, base string) bool {
	rel := absPath
	if base != "" {
		if r, err := filepath.Rel(base, absPath); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	parts := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	for _, seg := range parts {
		if _, ok := defaultIgnoreDirs[seg]; ok {
			return true
		}
	}
	return false
}

func walkDir(root string, opts Options, matchers []GitIgnoreMatcher, out map[string]struct{}, errs *[]ScanError) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			*errs = append(*errs, ScanError{Code: "walk_error", Path: path, Detail: err.Error()})
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if _, ok := defaultIgnoreDirs[name]; ok && path != root {
				return fs.SkipDir
			}
			if isIgnored(path, true, opts, matchers) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}
		if isIgnored(path, false, opts, matchers) {
			return nil
		}
		out[path] = struct{}{}
		return nil
	})
}

func loadGitIgnoreMatchers(opts Options) []GitIgnoreMatcher {
	if opts.CWD == "" {
		return nil
	}
	gip := filepath.Join(opts.CWD, ".gitignore")
	b, err := os.ReadFile(gip)
	if err != nil {
		return nil
	}
	patterns := make([]string, 0)
	for _, raw := range strings.Split(string(b), "\n") {
		p := strings.TrimSpace(raw)
		if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "!") {
			continue
		}
		p = filepath.ToSlash(p)
		anchored := strings.Contains(strings.TrimSuffix(p, "/"), "/")
		p = strings.TrimPrefix(p, "/")
		if strings.HasSuffix(p, "/") {
			p = p + "**"
		}
		patterns = append(patterns, p)
		if !anchored {
			patterns = append(patterns, "**/"+p)
		}
	}
	return []GitIgnoreMatcher{{Base: opts.CWD, Patterns: patterns}}
}

func isIgnored(absPath string, isDir bool, opts Options, matchers []GitIgnoreMatcher) bool {
	return matchesUserIgnore(absPath, opts) || matchesGitIgnore(absPath, isDir, matchers)
}

func matchesUserIgnore(absPath string, opts Options) bool {
	slashAbs := filepath.ToSlash(absPath)
	for _, p := range opts.IgnorePatterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if ok, err := doublestar.Match(p, slashAbs); err == nil && ok {
			return true
		}
		if opts.CWD != "" {
			rel, rerr := filepath.Rel(opts.CWD, absPath)
			if rerr == nil {
				rel = filepath.ToSlash(rel)
				if ok, err := doublestar.Match(strings.TrimPrefix(p, "./"), rel); err == nil && ok {
					return true
				}
			}
		}
	}
	return false
}

func matchesGitIgnore(absPath string, isDir bool, matchers []GitIgnoreMatcher) bool {
	for _, m := range matchers {
		rel, err := filepath.Rel(m.Base, absPath)
		if err != nil {
			continue
		}
		if rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, p := range m.Patterns {
			ok, err := doublestar.Match(p, rel)
			if err == nil && ok {
				return true
			}
			if isDir {
				ok, err = doublestar.Match(p, rel+"/")
				if err == nil && ok {
					return true
				}
			}
		}
	}
	return false
}

// HasMeta 判断是否包含 glob 元字符。
func HasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// SplitList 按逗号拆分列表，花括号内的逗号属于 {a,b} 选择语法，不拆。
func SplitList(v string) []string {
	var out []string
	depth := 0
	start := 0
	flush := func(end int) {
		if s := strings.TrimSpace(v[start:end]); s != "" {
			out = append(out, s)
		}
	}
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(v))
	return out
}
