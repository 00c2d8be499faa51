// Package output 把事件流按 ndjson / json / yaml 写出；text 由结果模型直接渲染。
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FormatText   = "text"
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
)

var formats = []string{FormatText, FormatNDJSON, FormatJSON, FormatYAML}

// ValidateFormat 大小写不敏感，返回规范化后的格式名。
func ValidateFormat(f string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(f))
	if v == "yml" {
		v = FormatYAML
	}
	for _, known := range formats {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("不支持的输出格式：%s（可选 %s）", f, strings.Join(formats, "/"))
}

// Machine text 以外的格式都输出事件流。
func Machine(format string) bool {
	return format != FormatText
}

func Write(w io.Writer, format string, events []map[string]any) error {
	switch format {
	case FormatNDJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		obj := map[string]any{"events": events}
		b, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"events": events}); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("不支持的输出格式：%s", format)
	}
}
