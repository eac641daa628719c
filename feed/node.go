package feed

import (
	"context"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pipeline"
)

// SchedulerNode 把 Scheduler 适配成 Recall Node，供配置化 Pipeline 使用。
// 排除集合从 sctx.Params["excluded"] 读取（map[core.Key]struct{}）。
type SchedulerNode struct {
	Scheduler *Scheduler
}

func (n *SchedulerNode) Name() string        { return "recall.feed" }
func (n *SchedulerNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *SchedulerNode) Process(
	ctx context.Context,
	sctx *core.SessionContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.Scheduler == nil {
		return nil, nil
	}
	return n.Scheduler.FetchNextBatch(ctx, sctx.Excluded())
}
