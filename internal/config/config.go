package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"react-intl-lint/internal/rules"
	"react-intl-lint/internal/scan"
)

// FileFetch 配置文件中的 fetch 段。
type FileFetch struct {
	TimeoutMs int               `mapstructure:"timeoutMs"`
	Retries   int               `mapstructure:"retries"`
	Headers   map[string]string `mapstructure:"headers"`
}

// FileRules 配置文件中的 rules 段，严重级别以字符串读入后再校验。
type FileRules struct {
	KeysOnViews            string   `mapstructure:"keysOnViews"`
	ZombieKeys             string   `mapstructure:"zombieKeys"`
	EmptyKeys              string   `mapstructure:"emptyKeys"`
	MisprintKeys           string   `mapstructure:"misprintKeys"`
	DeepSearch             string   `mapstructure:"deepSearch"`
	MaxWarning             int      `mapstructure:"maxWarning"`
	MisprintCoefficient    float64  `mapstructure:"misprintCoefficient"`
	IgnoredKeys            []string `mapstructure:"ignoredKeys"`
	IgnoredMisprintKeys    []string `mapstructure:"ignoredMisprintKeys"`
	CustomRegExpToFindKeys any      `mapstructure:"customRegExpToFindKeys"`
}

// File 合并后的原始配置（默认值 < 配置文件 < 环境变量 < 命令行）。
type File struct {
	Project        string    `mapstructure:"project"`
	Languages      any       `mapstructure:"languages"`
	Ignore         any       `mapstructure:"ignore"`
	FixZombiesKeys bool      `mapstructure:"fixZombiesKeys"`
	Fetch          FileFetch `mapstructure:"fetch"`
	Rules          FileRules `mapstructure:"rules"`
}

// Settings 校验后的运行参数。
type Settings struct {
	Project        string
	Languages      []string
	Ignore         []string
	FixZombiesKeys bool
	Rules          rules.RuleConfig
	Fetch          rules.FetchSettings
	ConfigPath     string
}

type LoadOptions struct {
	ConfigPath string
	// Flags 已解析的命令行参数，只有显式传入的参数会覆盖其他来源。
	Flags *pflag.FlagSet
	// CustomPatterns、FetchHeaders 来自可重复的命令行参数，追加在配置文件之后。
	CustomPatterns []string
	FetchHeaders   []string
}

// flagKeys 命令行参数名 -> 配置键。
var flagKeys = map[string]string{
	"project":               "project",
	"languages":             "languages",
	"ignore":                "ignore",
	"fix-zombies-keys":      "fixZombiesKeys",
	"fetch-timeout-ms":      "fetch.timeoutMs",
	"fetch-retries":         "fetch.retries",
	"keys-on-views":         "rules.keysOnViews",
	"zombie-keys":           "rules.zombieKeys",
	"empty-keys":            "rules.emptyKeys",
	"misprint-keys":         "rules.misprintKeys",
	"deep-search":           "rules.deepSearch",
	"max-warning":           "rules.maxWarning",
	"misprint-coefficient":  "rules.misprintCoefficient",
	"ignored-keys":          "rules.ignoredKeys",
	"ignored-misprint-keys": "rules.ignoredMisprintKeys",
}

func setDefaults(v *viper.Viper) {
	d := rules.DefaultRuleConfig()
	v.SetDefault("project", "")
	v.SetDefault("languages", "")
	v.SetDefault("ignore", "")
	v.SetDefault("fixZombiesKeys", false)

	v.SetDefault("fetch.timeoutMs", rules.DefaultFetchTimeoutMs)
	v.SetDefault("fetch.retries", rules.DefaultFetchRetries)

	v.SetDefault("rules.keysOnViews", d.KeysOnViews.String())
	v.SetDefault("rules.zombieKeys", d.ZombieKeys.String())
	v.SetDefault("rules.emptyKeys", d.EmptyKeys.String())
	v.SetDefault("rules.misprintKeys", d.MisprintKeys.String())
	v.SetDefault("rules.deepSearch", d.DeepSearch.String())
	v.SetDefault("rules.maxWarning", int(d.MaxWarning))
	v.SetDefault("rules.misprintCoefficient", d.MisprintCoefficient)
	v.SetDefault("rules.ignoredKeys", []string{})
	v.SetDefault("rules.ignoredMisprintKeys", []string{})
	v.SetDefault("rules.customRegExpToFindKeys", []string{})
}

// Load 按 默认值 < 配置文件 < REACT_INTL_LINT_* 环境变量 < 命令行 合并配置并校验。
func Load(opts LoadOptions) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		if err := readConfigFile(v, path); err != nil {
			return Settings{}, err
		}
	}
	// 须在 AutomaticEnv 之前合并，否则读到的是环境变量原始字符串
	if err := applyEnvHeaders(v); err != nil {
		return Settings{}, err
	}
	v.SetEnvPrefix(strings.TrimSuffix(EnvPrefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("绑定参数 --%s 失败：%w", name, err)
				}
			}
		}
	}

	var raw File
	if err := v.UnmarshalExact(&raw); err != nil {
		return Settings{}, fmt.Errorf("解析配置失败：%w", err)
	}
	s, err := raw.resolve()
	if err != nil {
		return Settings{}, err
	}
	s.ConfigPath = opts.ConfigPath
	s.Rules.CustomPatterns = append(s.Rules.CustomPatterns, opts.CustomPatterns...)
	hs, err := parseHeaders(opts.FetchHeaders)
	if err != nil {
		return Settings{}, err
	}
	for k, val := range hs {
		s.Fetch.Headers[k] = val
	}
	return s, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	var typ string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		typ = "yaml"
	case ".json":
		typ = "json"
	default:
		return fmt.Errorf("不支持的配置文件类型：%s（仅支持 .yaml/.yml/.json）", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败：%w", err)
	}
	expanded, err := expandEnv(string(b))
	if err != nil {
		return err
	}
	v.SetConfigType(typ)
	if err := v.ReadConfig(strings.NewReader(expanded)); err != nil {
		return fmt.Errorf("解析配置文件失败：%w", err)
	}
	return nil
}

func (f File) resolve() (Settings, error) {
	s := Settings{
		Project:        strings.TrimSpace(f.Project),
		Languages:      listOf(f.Languages, true),
		Ignore:         listOf(f.Ignore, true),
		FixZombiesKeys: f.FixZombiesKeys,
	}
	var err error
	r := rules.DefaultRuleConfig()
	sev := []struct {
		key string
		raw string
		dst *rules.Severity
	}{
		{"rules.keysOnViews", f.Rules.KeysOnViews, &r.KeysOnViews},
		{"rules.zombieKeys", f.Rules.ZombieKeys, &r.ZombieKeys},
		{"rules.emptyKeys", f.Rules.EmptyKeys, &r.EmptyKeys},
		{"rules.misprintKeys", f.Rules.MisprintKeys, &r.MisprintKeys},
	}
	for _, it := range sev {
		if *it.dst, err = rules.ParseSeverity(it.raw); err != nil {
			return Settings{}, fmt.Errorf("%s：%w", it.key, err)
		}
	}
	if r.DeepSearch, err = rules.ParseToggle(f.Rules.DeepSearch); err != nil {
		return Settings{}, fmt.Errorf("rules.deepSearch：%w", err)
	}
	if f.Rules.MaxWarning < 0 {
		return Settings{}, fmt.Errorf("rules.maxWarning 不能为负数：%d", f.Rules.MaxWarning)
	}
	r.MaxWarning = uint(f.Rules.MaxWarning)
	// 超出 [0,1] 的系数由 Normalize 夹取
	r.MisprintCoefficient = f.Rules.MisprintCoefficient
	r.IgnoredKeys = trimAll(f.Rules.IgnoredKeys)
	r.IgnoredMisprintKeys = trimAll(f.Rules.IgnoredMisprintKeys)
	r.CustomPatterns = listOf(f.Rules.CustomRegExpToFindKeys, false)
	s.Rules = r.Normalize()

	if f.Fetch.TimeoutMs < 0 {
		return Settings{}, fmt.Errorf("fetch.timeoutMs 不能为负数：%d", f.Fetch.TimeoutMs)
	}
	if f.Fetch.Retries < 0 {
		return Settings{}, fmt.Errorf("fetch.retries 不能为负数：%d", f.Fetch.Retries)
	}
	s.Fetch = rules.FetchSettings{TimeoutMs: f.Fetch.TimeoutMs, Retries: f.Fetch.Retries, Headers: map[string]string{}}
	for k, val := range f.Fetch.Headers {
		s.Fetch.Headers[strings.ToLower(k)] = val
	}
	return s, nil
}

// listOf 字符串按逗号拆分（split=true 时花括号内不拆），数组逐项取字符串。
func listOf(v any, split bool) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if split {
			return scan.SplitList(x)
		}
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		return trimAll(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if s := strings.TrimSpace(fmt.Sprint(it)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var envExpr = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

func expandEnv(src string) (string, error) {
	var out strings.Builder
	last := 0
	for _, idx := range envExpr.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:idx[0]])
		name := src[idx[2]:idx[3]]
		hasDefault := idx[4] >= 0 && idx[5] >= 0
		defVal := ""
		if hasDefault && idx[6] >= 0 && idx[7] >= 0 {
			defVal = src[idx[6]:idx[7]]
		}
		if v, ok := os.LookupEnv(name); ok {
			out.WriteString(v)
		} else if hasDefault {
			out.WriteString(defVal)
		} else {
			return "", fmt.Errorf("配置中引用了未设置的环境变量：%s", name)
		}
		last = idx[1]
	}
	out.WriteString(src[last:])
	return out.String(), nil
}

func ParseSizeToBytes(s string) (int64, error) {
	v := strings.TrimSpace(strings.ToUpper(s))
	if v == "" {
		return 0, nil
	}
	units := []struct {
		U string
		M int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}
	for _, unit := range units {
		if strings.HasSuffix(v, unit.U) {
			n := strings.TrimSpace(strings.TrimSuffix(v, unit.U))
			f, err := strconv.ParseFloat(n, 64)
			if err != nil || f < 0 {
				return 0, fmt.Errorf("无效大小值：%s", s)
			}
			return int64(f * float64(unit.M)), nil
		}
	}
	// 纯数字按字节
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("无效大小值：%s", s)
	}
	return n, nil
}
