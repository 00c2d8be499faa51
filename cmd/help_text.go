package cmd

import "strings"

func rootLongHelp() string {
	return strings.TrimSpace(`
对比源码中引用的翻译键与 JSON 语言文件中定义的键，按严重级别报告差异。

规则：
1. keysOnViews   源码引用了、某个语言文件没有定义（默认 error）
2. zombieKeys    语言文件定义了、源码从未引用；或源码引用了、任何语言文件都没有定义（默认 warning）
3. emptyKeys     语言文件中的值为空（默认 warning）
4. misprintKeys  未定义的键与未使用的键足够相似，合并为一条拼写错误（默认 disable）

严重级别：disable / warning / error
- 存在 error，或 warning 数超过 --max-warning，即为未通过

输入：
- --project：单个 glob，支持 ** 与 {a,b}，花括号内的逗号不拆分
- --languages：逗号分隔的 glob 或 http(s) URL；每个文件/URL 单独对账，语言码取文件名
- 默认忽略目录：.git/node_modules/vendor/dist/build/coverage，并读取当前目录的 .gitignore

配置来源（优先级从低到高）：
- 内置默认值
- --config 配置文件（.yaml/.yml/.json）
- REACT_INTL_LINT_* 环境变量（键中的 . 换成 _，如 REACT_INTL_LINT_RULES_ZOMBIEKEYS=error）
- 命令行参数

输出（--format）：
- text：对齐的结果表 + 汇总（默认）
- ndjson/json/yaml：meta、error、result、fix、summary 事件

error 事件：
- code/category/path/detail
- next_action（下一步）
- fix_example（示例命令）
- doc_key（稳定键）
- recoverable（是否可恢复）

退出码：
- 0 通过
- 1 规则未通过
- 2 参数错误
- 3 输入错误（没有匹配到源码文件，或没有可用的语言文件）
- 4 配置错误
- 5 内部错误
`)
}

func rootExampleHelp() string {
	return strings.TrimSpace(`
  # 检查 src 下的 ts/tsx 与 i18n 目录中的语言文件
  react-intl-lint -p "./src/**/*.{ts,tsx}" -l "./src/i18n/*.json"

  # 本地 + 远程语言文件，远程请求带鉴权头
  react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/en.json,https://cdn.example.com/i18n/fr.json" \
    --fetch-header "Authorization=Bearer $TOKEN"

  # 打开拼写检查，并把僵尸键提升为 error
  react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json" --misprint-keys warning --zombie-keys error

  # 删除本地语言文件中的僵尸键
  react-intl-lint -p "./src/**/*.tsx" -l "./src/i18n/*.json" --fix-zombies-keys

  # 使用配置文件，输出 NDJSON 给 CI
  react-intl-lint --config ./react-intl-lint.yaml --format ndjson
`)
}
