package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/logger"
	"github.com/paiban/shiftsat/pkg/model"
)

const defaultParallelism = 4

// Job 批量运行中的一个任务
type Job struct {
	Name    string                    `json:"name"`
	Workers []*model.Worker           `json:"workers"`
	Params  *model.ScheduleParameters `json:"params"`
}

// JobResult 单个任务的结果，Err 与 Outcome 二选一
type JobResult struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	Outcome *Outcome `json:"outcome,omitempty"`
	Err     error    `json:"-"`
}

// RunBatch 并行执行多个互不相关的排班任务
//
// 结果按输入顺序返回。单个任务失败不影响其它任务；只有 ctx 被取消时
// 尚未开始的任务才会以取消错误结束。
func (e *Engine) RunBatch(ctx context.Context, jobs []Job, parallelism int) []JobResult {
	if len(jobs) == 0 {
		return nil
	}
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, job := range jobs {
		i, job := i, job
		results[i] = JobResult{Index: i, Name: job.Name}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = apperrors.Wrap(err, apperrors.CodeCanceled, "批量任务被取消")
				return nil
			}
			results[i].Outcome, results[i].Err = e.Run(gctx, job.Workers, job.Params)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info().
		Int("jobs", len(jobs)).
		Int("failed", failed).
		Int("parallelism", parallelism).
		Msg("批量排班完成")

	return results
}
