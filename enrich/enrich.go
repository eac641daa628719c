// Package enrich 提供候选补全 Node：渠道信息、热度统计等
// 在召回后按需补全的字段。补全是尽力而为的，单个补全器失败不影响整体流程。
package enrich

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pipeline"
)

// Enricher 对候选集做原地补全。
// 约定：不同补全器只写各自负责的字段，Node 并发执行它们时互不冲突。
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, sctx *core.SessionContext, candidates []*core.Candidate) error
}

// Node 是补全 Node：并发执行多个补全器，支持超时、限流。
// 补全器错误只记日志，不中断流水线。
type Node struct {
	Enrichers     []Enricher
	Timeout       time.Duration // 每个补全器的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	Logger        zerolog.Logger
}

func (n *Node) Name() string        { return "postprocess.enrich" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *Node) Process(
	ctx context.Context,
	sctx *core.SessionContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(n.Enrichers) == 0 || len(candidates) == 0 {
		return candidates, nil
	}

	eg, _ := errgroup.WithContext(ctx)

	// 限流：使用 semaphore 控制并发数；非正值一律视为无限制
	maxConcurrent := n.MaxConcurrent
	if maxConcurrent < 0 {
		maxConcurrent = 0
	}
	sem := make(chan struct{}, maxConcurrent)
	if maxConcurrent == 0 {
		close(sem) // 无限制时直接关闭，避免阻塞
	}

	for _, e := range n.Enrichers {
		enricher := e
		eg.Go(func() error {
			if maxConcurrent > 0 {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			enrichCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				enrichCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			if err := enricher.Enrich(enrichCtx, sctx, candidates); err != nil {
				// 补全失败不中断其他补全器
				n.Logger.Warn().
					Err(err).
					Str("enricher", enricher.Name()).
					Msg("enrich failed")
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}
