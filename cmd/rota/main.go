// rota 排班命令行工具
//
// 用法:
//
//	rota collect roster.yaml --workers 5 --days 7 --shifts 2
//	rota check roster.yaml
//	rota solve roster.yaml --format text
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paiban/shiftsat/internal/config"
	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// options 全局选项
type options struct {
	envFile string
	verbose bool
	cfg     *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode 按错误码区分退出码
func exitCode(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.CodeValidationFail, apperrors.CodeConfiguration, apperrors.CodeInvalidInput, apperrors.CodeNotFound:
		return 2
	case apperrors.CodeCanceled:
		return 130
	default:
		return 1
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "rota",
		Short:         "每周排班优化工具",
		Long:          "按每个时段的人数要求、每天最多一班与负荷上下限排班，并尽量避开员工不希望的时段。",
		Version:       fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if opts.envFile != "" {
				files = append(files, opts.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return apperrors.Wrap(err, apperrors.CodeConfiguration, "加载配置失败")
			}
			opts.cfg = cfg

			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logger.Init(logger.Config{Level: level, Format: "console", Output: "stderr"})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "环境变量文件 (默认 .env)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newSolveCmd(opts),
		newCheckCmd(opts),
		newCollectCmd(opts),
	)
	return root
}
