package cmd

import (
	"io"
	"strings"

	"react-intl-lint/internal/output"
)

type cliErrorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

// writeCLIError 运行前失败（参数、配置）时也给出完整的 meta/error/summary 事件。
func writeCLIError(w io.Writer, format string, args []string, code, category, path, detail string, exitCode int) {
	h := cliHintByCode(code)
	events := []map[string]any{
		{
			"type":          "meta",
			"tool":          "react-intl-lint",
			"version":       Version,
			"args":          args,
			"output_format": format,
		},
		{
			"type":        "error",
			"code":        code,
			"category":    category,
			"path":        path,
			"detail":      detail,
			"next_action": h.NextAction,
			"fix_example": h.FixExample,
			"doc_key":     h.DocKey,
			"recoverable": h.Recoverable,
		},
		{
			"type":        "summary",
			"pass":        false,
			"fatal":       false,
			"message":     detail,
			"diagnostics": 1,
			"exit_code":   exitCode,
		},
	}
	_ = output.Write(w, format, events)
}

// detectFormatFromArgs 在 cobra 解析失败时也能拿到 --format；无效或 text 返回空串。
func detectFormatFromArgs(args []string) string {
	raw := ""
	for i := 0; i < len(args); i++ {
		a := strings.TrimSpace(args[i])
		if a == "--format" {
			if i+1 < len(args) {
				raw = args[i+1]
			}
			continue
		}
		if strings.HasPrefix(a, "--format=") {
			raw = strings.TrimPrefix(a, "--format=")
		}
	}
	f, err := output.ValidateFormat(raw)
	if err != nil || !output.Machine(f) {
		return ""
	}
	return f
}

func cliHintByCode(code string) cliErrorHint {
	switch code {
	case "arg_missing_inputs":
		return cliErrorHint{
			NextAction:  "同时提供 --project 与 --languages（或写在配置文件里）",
			FixExample:  `react-intl-lint -p "./src/**/*.{ts,tsx}" -l "./src/i18n/*.json"`,
			DocKey:      "arg.missing_inputs",
			Recoverable: true,
		}
	case "arg_unexpected":
		return cliErrorHint{
			NextAction:  "不接受位置参数，请用 --project 指定源码 glob",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json"`,
			DocKey:      "arg.unexpected",
			Recoverable: true,
		}
	case "invalid_output_format":
		return cliErrorHint{
			NextAction:  "把 --format 改为 text、ndjson、json 或 yaml",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json" --format ndjson`,
			DocKey:      "arg.invalid_output_format",
			Recoverable: true,
		}
	case "invalid_max_file_size":
		return cliErrorHint{
			NextAction:  "把 --max-file-size 改成合法大小（如 10MB）",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json" --max-file-size 20MB`,
			DocKey:      "arg.invalid_max_file_size",
			Recoverable: true,
		}
	case "invalid_log_option":
		return cliErrorHint{
			NextAction:  "--log-level 取 debug/info/warn/error，--log-format 取 json/console",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json" --log-level debug --log-format console`,
			DocKey:      "arg.invalid_log_option",
			Recoverable: true,
		}
	case "config_invalid":
		return cliErrorHint{
			NextAction:  "修正配置文件、REACT_INTL_LINT_* 环境变量或对应参数后重试",
			FixExample:  "react-intl-lint --config ./react-intl-lint.yaml",
			DocKey:      "config.invalid",
			Recoverable: true,
		}
	case "cwd_failed":
		return cliErrorHint{
			NextAction:  "确认当前工作目录可访问，或切换到可访问目录",
			FixExample:  "cd /path/to/project && react-intl-lint --config ./react-intl-lint.yaml",
			DocKey:      "runtime.cwd_failed",
			Recoverable: true,
		}
	case "output_write_failed":
		return cliErrorHint{
			NextAction:  "检查输出管道或重定向目标是否可写",
			FixExample:  "react-intl-lint --config ./react-intl-lint.yaml --format ndjson > result.ndjson",
			DocKey:      "runtime.output_write_failed",
			Recoverable: true,
		}
	case "run_failed":
		return cliErrorHint{
			NextAction:  "加 --log-level debug 重跑并查看 stderr 日志",
			FixExample:  "react-intl-lint --config ./react-intl-lint.yaml --log-level debug --log-format console",
			DocKey:      "runtime.run_failed",
			Recoverable: false,
		}
	default:
		return cliErrorHint{
			NextAction:  "根据 detail 修正参数或配置后重试",
			FixExample:  "react-intl-lint --help",
			DocKey:      "general.error",
			Recoverable: true,
		}
	}
}
