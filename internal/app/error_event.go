package app

type errorHint struct {
	NextAction  string
	FixExample  string
	DocKey      string
	Recoverable bool
}

func buildErrorEvent(d Diagnostic) map[string]any {
	h := hintByCode(d.Code)
	return map[string]any{
		"type":        "error",
		"code":        d.Code,
		"category":    d.Category,
		"path":        d.Path,
		"detail":      d.Detail,
		"next_action": h.NextAction,
		"fix_example": h.FixExample,
		"doc_key":     h.DocKey,
		"recoverable": h.Recoverable,
	}
}

func hintByCode(code string) errorHint {
	switch code {
	case "project_no_files":
		return errorHint{
			NextAction:  "确认 --project 的 glob 能匹配到源码文件，注意相对路径基于当前目录",
			FixExample:  `react-intl-lint -p "./src/**/*.{js,jsx,ts,tsx}" -l "./src/i18n/*.json"`,
			DocKey:      "input.project_no_files",
			Recoverable: false,
		}
	case "languages_no_sources":
		return errorHint{
			NextAction:  "确认 --languages 至少有一个可读取、可解析的 .json 文件或可访问的 URL",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json,https://cdn.example.com/i18n/fr.json"`,
			DocKey:      "input.languages_no_sources",
			Recoverable: false,
		}
	case "input_path_not_found", "glob_invalid", "glob_failed":
		return errorHint{
			NextAction:  "确认路径或 glob 存在且拼写正确，再重试",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json"`,
			DocKey:      "input.path_not_found",
			Recoverable: true,
		}
	case "input_stat_failed", "walk_error", "file_open_failed", "file_stat_failed", "file_read_failed", "locale_read_failed":
		return errorHint{
			NextAction:  "检查路径权限和可读性",
			FixExample:  "chmod -R +r ./src && react-intl-lint -p ./src -l ./src/i18n/*.json",
			DocKey:      "input.path_access",
			Recoverable: true,
		}
	case "symlink_skipped":
		return errorHint{
			NextAction:  "该工具不跟随软链接，请改为传真实路径",
			FixExample:  `react-intl-lint -p "/real/path/src/**/*.tsx" -l ./i18n/*.json`,
			DocKey:      "input.symlink_skipped",
			Recoverable: true,
		}
	case "file_too_large":
		return errorHint{
			NextAction:  "增大 --max-file-size，或用 --ignore 排除该文件",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l ./i18n/*.json --max-file-size 20MB`,
			DocKey:      "input.max_file_size",
			Recoverable: true,
		}
	case "binary_file_skipped":
		return errorHint{
			NextAction:  "收窄 --project 的扩展名，或用 --ignore 排除二进制文件",
			FixExample:  `react-intl-lint -p "./src/**/*.{ts,tsx}" -l ./i18n/*.json -i "**/*.png"`,
			DocKey:      "input.binary_skipped",
			Recoverable: true,
		}
	case "decode_failed":
		return errorHint{
			NextAction:  "先把文件转成 utf-8/gbk/gb18030 之一，再执行",
			FixExample:  "iconv -f latin1 -t utf-8 view.tsx -o view.tsx",
			DocKey:      "input.decode_failed",
			Recoverable: true,
		}
	case "locale_parse_failed", "locale_structure_invalid":
		return errorHint{
			NextAction:  "修正语言文件的 JSON（顶层必须是对象，同一对象内不能有重复键）",
			FixExample:  `{"common": {"save": "Save"}}`,
			DocKey:      "locale.invalid_json",
			Recoverable: true,
		}
	case "locale_not_json":
		return errorHint{
			NextAction:  "--languages 只接受 .json 文件，请收窄 glob",
			FixExample:  `react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json"`,
			DocKey:      "locale.not_json",
			Recoverable: true,
		}
	case "locale_fetch_failed":
		return errorHint{
			NextAction:  "检查 URL 与网络，必要时调大 --fetch-timeout-ms / --fetch-retries 或补充 --fetch-header",
			FixExample:  `react-intl-lint -l "https://cdn.example.com/i18n/fr.json" --fetch-timeout-ms 20000 --fetch-header "Authorization=Bearer <token>"`,
			DocKey:      "locale.fetch_failed",
			Recoverable: true,
		}
	case "custom_pattern_invalid":
		return errorHint{
			NextAction:  "修正自定义正则（Go RE2 语法，不支持反向引用和环视）",
			FixExample:  `react-intl-lint --custom-pattern "i18n\.get\('([^']+)'\)"`,
			DocKey:      "rules.custom_pattern_invalid",
			Recoverable: true,
		}
	case "ignored_key_invalid":
		return errorHint{
			NextAction:  "修正 ignoredKeys / ignoredMisprintKeys 中的 glob",
			FixExample:  `react-intl-lint --ignored-keys "legacy.*,debug.**"`,
			DocKey:      "rules.ignored_key_invalid",
			Recoverable: true,
		}
	case "fix_remote_skipped":
		return errorHint{
			NextAction:  "远程语言文件不会被改写，请在其源仓库中删除这些键",
			FixExample:  "react-intl-lint --fix-zombies-keys -l ./src/i18n/*.json",
			DocKey:      "fix.remote_skipped",
			Recoverable: true,
		}
	case "fix_write_failed":
		return errorHint{
			NextAction:  "检查语言文件及其目录的写权限",
			FixExample:  "chmod u+w ./src/i18n/*.json",
			DocKey:      "fix.write_failed",
			Recoverable: true,
		}
	default:
		return errorHint{
			NextAction:  "根据 detail 修正输入或配置后重试",
			FixExample:  "react-intl-lint --help",
			DocKey:      "general.error",
			Recoverable: true,
		}
	}
}
