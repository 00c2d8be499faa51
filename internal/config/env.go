package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，键中的 "." 换成 "_"，例如 REACT_INTL_LINT_RULES_ZOMBIEKEYS=error。
const EnvPrefix = "REACT_INTL_LINT_"

// envHeadersKey 请求头无法由 viper 直接从字符串解到 map，单独处理：
// REACT_INTL_LINT_FETCH_HEADERS="Authorization=Bearer x,X-Team=web"
const envHeadersKey = EnvPrefix + "FETCH_HEADERS"

func applyEnvHeaders(v *viper.Viper) error {
	raw, ok := os.LookupEnv(envHeadersKey)
	if !ok {
		return nil
	}
	hs, err := parseHeaders(splitCSV(raw))
	if err != nil {
		return fmt.Errorf("环境变量 %s：%w", envHeadersKey, err)
	}
	merged := map[string]any{}
	for k, val := range v.GetStringMapString("fetch.headers") {
		merged[k] = val
	}
	for k, val := range hs {
		merged[k] = val
	}
	v.Set("fetch.headers", merged)
	return nil
}

// parseHeaders 解析 "Name=Value" 列表，名称不能为空，统一转小写（viper 的键本身也不区分大小写）。
func parseHeaders(items []string) (map[string]string, error) {
	out := make(map[string]string, len(items))
	for _, it := range items {
		name, value, ok := strings.Cut(it, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("无效的请求头：%q（格式应为 Name=Value）", it)
		}
		out[strings.ToLower(name)] = strings.TrimSpace(value)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
