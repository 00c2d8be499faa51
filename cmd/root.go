package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"react-intl-lint/internal/app"
	"react-intl-lint/internal/config"
	"react-intl-lint/internal/logger"
	"react-intl-lint/internal/metrics"
	"react-intl-lint/internal/output"
	"react-intl-lint/internal/result"
)

type commonFlags struct {
	Config         string
	Format         string
	Jobs           int
	MaxFileSize    string
	LogLevel       string
	LogFormat      string
	MetricsFile    string
	NoColor        bool
	ShowVersion    bool
	CustomPatterns []string
	FetchHeaders   []string
}

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if !errors.As(err, &ee) {
		ee = &ExitError{Code: ExitInternal, Msg: err.Error(), Reason: "run_failed"}
	}
	if ee.Msg != "" {
		if f := detectFormatFromArgs(args); f != "" && ee.Reason != "" {
			writeCLIError(stdout, f, args, ee.Reason, ee.category(), "", ee.Msg, ee.Code)
		} else {
			fmt.Fprintln(stderr, ee.Msg)
		}
	}
	return ee.Code
}

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &commonFlags{}
	root := &cobra.Command{
		Use:           "react-intl-lint",
		Short:         "对比源码中引用的翻译键与语言文件，找出缺失、僵尸、空值和拼写错误的键",
		Long:          rootLongHelp(),
		Example:       rootExampleHelp(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ShowVersion {
				printVersion(stdout)
				return nil
			}
			return runCheck(cmd, stdout, stderr, flags, args)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitArg, Msg: err.Error(), Reason: "arg_invalid"}
	})
	bindCommon(root, flags)
	bindRules(root)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(stdout)
		},
	}
	root.AddCommand(versionCmd)
	return root
}

func bindCommon(cmd *cobra.Command, flags *commonFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.Config, "config", "c", "", "配置文件路径（.yaml/.yml/.json），支持 ${ENV:-默认值}")
	f.StringVar(&flags.Format, "format", output.FormatText, "输出格式：text/ndjson/json/yaml")
	f.IntVar(&flags.Jobs, "jobs", app.DefaultJobs(), "并发任务数（默认 min(8, CPU核数)）")
	f.StringVar(&flags.MaxFileSize, "max-file-size", "10MB", "单个源码文件最大处理大小，超出则跳过（如 10MB）")
	f.StringVar(&flags.LogLevel, "log-level", "warn", "日志级别：debug/info/warn/error（日志写 stderr）")
	f.StringVar(&flags.LogFormat, "log-format", logger.FormatJSON, "日志格式：json/console")
	f.StringVar(&flags.MetricsFile, "metrics-file", "", "运行结束后把 Prometheus 指标写到该文件（textfile 格式）")
	f.BoolVar(&flags.NoColor, "no-color", false, "text 输出不使用颜色")
	f.StringArrayVar(&flags.CustomPatterns, "custom-pattern", nil, "自定义查找键的正则，第 1 个捕获组为键（可重复）")
	f.StringArrayVar(&flags.FetchHeaders, "fetch-header", nil, "拉取远程语言文件时附加的请求头 Name=Value（可重复）")
	f.BoolVarP(&flags.ShowVersion, "version", "v", false, "显示版本信息")
}

// bindRules 这些参数不绑定变量，由 config.Load 通过 viper 读取；
// 默认值留空，真正的默认值在 config 中统一设置。
func bindRules(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("project", "p", "", "项目源码 glob，如 \"./src/**/*.{ts,tsx}\"（花括号内逗号不拆分）")
	f.StringP("languages", "l", "", "语言文件 glob 或 http(s) URL，逗号分隔")
	f.StringP("ignore", "i", "", "忽略的 glob，逗号分隔")
	f.String("keys-on-views", "", "源码引用但语言文件缺失的键：disable/warning/error（默认 error）")
	f.String("zombie-keys", "", "僵尸键：disable/warning/error（默认 warning）")
	f.String("empty-keys", "", "空值键：disable/warning/error（默认 warning）")
	f.String("misprint-keys", "", "疑似拼写错误的键：disable/warning/error（默认 disable）")
	f.String("deep-search", "", "逐键深度搜索动态拼接的键：disable/enable（默认 disable，较慢）")
	f.Int("max-warning", 0, "允许的最多警告数（默认 1）")
	f.Float64("misprint-coefficient", 0, "拼写错误相似度阈值 0~1（默认 0.9）")
	f.StringSlice("ignored-keys", nil, "忽略的键（支持 glob，如 legacy.*）")
	f.StringSlice("ignored-misprint-keys", nil, "不参与拼写检查的键（支持 glob）")
	f.Bool("fix-zombies-keys", false, "从本地语言文件中删除僵尸键")
	f.Int("fetch-timeout-ms", 0, "远程语言文件单次请求超时，毫秒（默认 10000）")
	f.Int("fetch-retries", 0, "远程语言文件失败重试次数（默认 2）")
}

func runCheck(cmd *cobra.Command, stdout, stderr io.Writer, flags *commonFlags, args []string) error {
	if len(args) > 0 {
		return &ExitError{Code: ExitArg, Msg: fmt.Sprintf("不接受位置参数：%s（请用 --project）", strings.Join(args, " ")), Reason: "arg_unexpected"}
	}
	format, err := output.ValidateFormat(flags.Format)
	if err != nil {
		return &ExitError{Code: ExitArg, Msg: err.Error(), Reason: "invalid_output_format"}
	}
	maxBytes, err := config.ParseSizeToBytes(flags.MaxFileSize)
	if err != nil {
		return &ExitError{Code: ExitArg, Msg: "--max-file-size 参数无效：" + flags.MaxFileSize, Reason: "invalid_max_file_size"}
	}
	log, _, err := logger.New(flags.LogLevel, flags.LogFormat)
	if err != nil {
		return &ExitError{Code: ExitArg, Msg: err.Error(), Reason: "invalid_log_option"}
	}
	defer func() { _ = log.Sync() }()

	settings, err := config.Load(config.LoadOptions{
		ConfigPath:     flags.Config,
		Flags:          cmd.Flags(),
		CustomPatterns: flags.CustomPatterns,
		FetchHeaders:   flags.FetchHeaders,
	})
	if err != nil {
		return &ExitError{Code: ExitConfig, Msg: err.Error(), Reason: "config_invalid"}
	}
	if settings.Project == "" || len(settings.Languages) == 0 {
		if !output.Machine(format) {
			_ = cmd.Help()
		}
		return &ExitError{Code: ExitArg, Msg: "需要同时提供 --project 和 --languages（或在配置文件中设置）", Reason: "arg_missing_inputs"}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return &ExitError{Code: ExitInternal, Msg: "读取当前目录失败", Reason: "cwd_failed"}
	}

	var rec *metrics.Recorder
	if flags.MetricsFile != "" {
		rec = metrics.New()
	}
	res, err := app.Run(cmd.Context(), app.Options{
		Project:          settings.Project,
		Languages:        settings.Languages,
		Ignore:           settings.Ignore,
		CWD:              cwd,
		Rules:            settings.Rules,
		Fetch:            settings.Fetch,
		FixZombies:       settings.FixZombiesKeys,
		Jobs:             flags.Jobs,
		MaxFileSizeBytes: maxBytes,
		ConfigPath:       settings.ConfigPath,
		Format:           format,
		Version:          Version,
		Args:             os.Args[1:],
		Logger:           log,
		Metrics:          rec,
	})
	if err != nil {
		var argErr *app.ArgErr
		var cfgErr *app.ConfigErr
		switch {
		case errors.As(err, &argErr):
			return &ExitError{Code: ExitArg, Msg: err.Error(), Reason: "arg_missing_inputs"}
		case errors.As(err, &cfgErr):
			return &ExitError{Code: ExitConfig, Msg: err.Error(), Reason: "config_invalid"}
		default:
			return &ExitError{Code: ExitInternal, Msg: err.Error(), Reason: "run_failed"}
		}
	}

	if output.Machine(format) {
		err = output.Write(stdout, format, res.Events)
	} else {
		err = writeText(stdout, stderr, res, flags.NoColor, cwd)
	}
	if err != nil {
		return &ExitError{Code: ExitInternal, Msg: fmt.Sprintf("输出结果失败：%v", err), Reason: "output_write_failed"}
	}
	if err := rec.WriteTextfile(flags.MetricsFile); err != nil {
		log.Warn("write metrics textfile failed", zap.String("path", flags.MetricsFile), zap.Error(err))
	}
	if code := res.ExitCode(); code != ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

// writeText 诊断写 stderr，清理记录与结果表写 stdout。
func writeText(stdout, stderr io.Writer, res app.Result, noColor bool, cwd string) error {
	for _, d := range res.Diagnostics {
		path := d.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(stderr, "[%s] %s：%s\n", d.Code, path, d.Detail)
	}
	for _, f := range res.Fixes {
		if _, err := fmt.Fprintf(stdout, "已清理 %d 个僵尸键：%s\n", len(f.Removed), f.File); err != nil {
			return err
		}
	}
	return result.WriteText(stdout, res.Model, result.TextOptions{NoColor: noColor, BaseDir: cwd})
}
