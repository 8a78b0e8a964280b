package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/paiban/shiftsat/internal/input"
	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/report"
	"github.com/paiban/shiftsat/pkg/scheduler"
)

type solveOptions struct {
	format     string
	timeBudget time.Duration
	output     string
}

func newSolveCmd(opts *options) *cobra.Command {
	so := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve ROSTER",
		Short: "求解名册并输出排班报告",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts, so, args[0])
		},
	}
	cmd.Flags().StringVarP(&so.format, "format", "f", "text", "输出格式: text|json")
	cmd.Flags().DurationVar(&so.timeBudget, "time-budget", -1, "求解时间预算，默认取 SCHEDULER_TIME_BUDGET")
	cmd.Flags().StringVarP(&so.output, "output", "o", "", "输出文件，默认标准输出")
	return cmd
}

func runSolve(cmd *cobra.Command, opts *options, so *solveOptions, path string) error {
	if so.format != "text" && so.format != "json" {
		return apperrors.InvalidInput("format", "只支持 text 或 json")
	}

	roster, err := input.Load(path)
	if err != nil {
		return err
	}
	workers, params, err := roster.Resolve()
	if err != nil {
		return err
	}

	budget := so.timeBudget
	if budget < 0 {
		budget = opts.cfg.Scheduler.TimeBudget
	}
	engine := scheduler.NewEngine(scheduler.WithTimeBudget(budget))

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := engine.Run(ctx, workers, params)
	if err != nil {
		return err
	}
	rep, err := report.FromOutcome(out)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if so.output != "" {
		f, err := os.Create(so.output)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "创建输出文件失败")
		}
		defer f.Close()
		w = f
	}

	if so.format == "json" {
		err = rep.WriteJSON(w)
	} else {
		err = rep.WriteText(w)
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "写入报告失败")
	}
	if so.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "报告已写入 %s\n", so.output)
	}
	if !out.Feasible() {
		return apperrors.Newf(apperrors.CodeUnknown, "未找到可行排班 (状态: %s)", out.Status)
	}
	return nil
}
