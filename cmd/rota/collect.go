package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paiban/shiftsat/internal/collect"
	"github.com/paiban/shiftsat/internal/input"
	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/model"
)

type collectOptions struct {
	workers        int
	days           int
	shifts         int
	coverage       int
	minShifts      int
	maxShifts      int
	oneShiftPerDay bool
	fair           bool
}

func newCollectCmd(_ *options) *cobra.Command {
	co := &collectOptions{}
	cmd := &cobra.Command{
		Use:   "collect ROSTER",
		Short: "逐个录入员工偏好并追加到名册",
		Long: "依次为每名员工打开勾选表单，勾选不希望上班的时段。每录入一人即写回名册文件。\n" +
			"名册不存在时按参数创建；已存在时沿用文件中的排班参数。",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, co, args[0])
		},
	}
	cmd.Flags().IntVarP(&co.workers, "workers", "n", 1, "本次录入的员工数")
	cmd.Flags().IntVar(&co.days, "days", 7, "天数")
	cmd.Flags().IntVar(&co.shifts, "shifts", 2, "每天班次数")
	cmd.Flags().IntVar(&co.coverage, "coverage", 1, "每个时段的人数")
	cmd.Flags().IntVar(&co.minShifts, "min", 0, "每人最少班次")
	cmd.Flags().IntVar(&co.maxShifts, "max", -1, "每人最多班次，负数表示不限")
	cmd.Flags().BoolVar(&co.oneShiftPerDay, "one-shift-per-day", false, "每人每天最多一班")
	cmd.Flags().BoolVar(&co.fair, "fair", false, "按人数平均推导负荷上下限")
	return cmd
}

// defaults 新名册的排班参数
func (co *collectOptions) defaults() model.ScheduleParameters {
	p := model.ScheduleParameters{
		NumDays:            co.days,
		NumShiftsPerDay:    co.shifts,
		CoveragePerSlot:    co.coverage,
		MinShiftsPerWorker: co.minShifts,
		OneShiftPerDay:     co.oneShiftPerDay,
	}
	if co.maxShifts >= 0 {
		p.MaxShiftsPerWorker = model.IntPtr(co.maxShifts)
	}
	return p
}

func runCollect(cmd *cobra.Command, co *collectOptions, path string) error {
	if co.workers < 1 {
		return apperrors.InvalidInput("workers", "至少录入 1 名员工")
	}

	roster, err := input.LoadOrNew(path, co.defaults())
	if err != nil {
		return err
	}
	if len(roster.Workers) == 0 {
		roster.Fair = co.fair
	}
	if err := model.ValidateStruct(&roster.Params); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := 0; i < co.workers; i++ {
		spec, err := collect.Run(roster.Params, len(roster.Workers))
		if err != nil {
			if apperrors.Is(err, apperrors.CodeCanceled) {
				fmt.Fprintf(out, "已录入 %d 人，名册保存在 %s\n", i, path)
			}
			return err
		}

		replaced := roster.AddWorker(spec)
		if err := roster.Save(path); err != nil {
			return err
		}
		logger.Debug().Str("worker", spec.Name).Int("unwanted", len(spec.UnwantedSlots)).Bool("replaced", replaced).Msg("员工已录入")
		if replaced {
			fmt.Fprintf(out, "已更新员工 %s（不希望 %d 个时段）\n", spec.Name, len(spec.UnwantedSlots))
		} else {
			fmt.Fprintf(out, "已添加员工 %s（不希望 %d 个时段）\n", spec.Name, len(spec.UnwantedSlots))
		}
	}

	fmt.Fprintf(out, "名册 %s 共 %d 名员工\n", path, len(roster.Workers))
	return nil
}
