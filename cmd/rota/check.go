package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/paiban/shiftsat/internal/constraints"
	"github.com/paiban/shiftsat/internal/input"
	"github.com/paiban/shiftsat/pkg/model"
)

func newCheckCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check ROSTER",
		Short: "检查名册与排班参数，不求解",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args[0])
		},
	}
}

func runCheck(w io.Writer, path string) error {
	roster, err := input.Load(path)
	if err != nil {
		return err
	}
	workers, params, err := roster.Resolve()
	if err != nil {
		return err
	}
	if err := params.CheckCapacity(len(workers)); err != nil {
		return err
	}

	maxLoad := "不限"
	if params.HasMax() {
		maxLoad = fmt.Sprint(*params.MaxShiftsPerWorker)
	}
	oneShift := "否"
	if params.OneShiftPerDay {
		oneShift = "是"
	}

	fmt.Fprintf(w, "名册: %s\n", path)
	fmt.Fprintf(w, "员工: %d 人\n", len(workers))
	fmt.Fprintf(w, "周期: %d 天 x %d 班, 每时段 %d 人\n", params.NumDays, params.NumShiftsPerDay, params.CoveragePerSlot)
	fmt.Fprintf(w, "负荷: 最少 %d, 最多 %s, 每天最多一班: %s\n", params.MinShiftsPerWorker, maxLoad, oneShift)
	fmt.Fprintf(w, "需求: %d 人次, 容量: %d 人次, 最少分配: %d 人次\n",
		params.Demand(), len(workers)*params.EffectiveMax(), len(workers)*params.MinShiftsPerWorker)

	fmt.Fprintln(w, "约束:")
	for _, c := range constraints.ActiveFor(params) {
		display := c.Name
		if def, ok := constraints.Find(c.Type); ok {
			display = def.DisplayName
		}
		fmt.Fprintf(w, "  - %s (%s, %s)\n", display, c.Type, c.Category)
	}

	fmt.Fprintln(w, "偏好:")
	for _, wk := range workers {
		fmt.Fprintf(w, "  - %-12s 不希望 %d 个时段\n", wk.Name(), wk.UnwantedCount())
	}
	if unwantedEverywhere(workers, params) {
		fmt.Fprintln(w, "注意: 存在所有员工都不希望的时段，最优解的不希望分配数不为 0")
	}
	fmt.Fprintln(w, "检查通过")
	return nil
}

// unwantedEverywhere 是否存在所有员工都标记为不希望的时段
func unwantedEverywhere(workers []*model.Worker, params *model.ScheduleParameters) bool {
	for d := 0; d < params.NumDays; d++ {
		for s := 0; s < params.NumShiftsPerDay; s++ {
			all := true
			for _, wk := range workers {
				if !wk.Unwanted(d, s) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
	}
	return false
}
