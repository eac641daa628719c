package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/deckit/core"
)

// ProviderEnricher 为缺失渠道信息的候选补全观看渠道。
// 目录客户端是逐条接口，这里做有限并发的扇出。
type ProviderEnricher struct {
	Catalog       core.CatalogClient
	MaxConcurrent int // 最大并发数（<=0 时用默认 4）
}

func (e *ProviderEnricher) Name() string { return "enrich.providers" }

func (e *ProviderEnricher) Enrich(
	ctx context.Context,
	_ *core.SessionContext,
	candidates []*core.Candidate,
) error {
	if e.Catalog == nil {
		return nil
	}

	maxConcurrent := e.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrent)

	for _, c := range candidates {
		if c == nil || len(c.Providers) > 0 {
			continue
		}
		cand := c
		eg.Go(func() error {
			providers, err := e.Catalog.FetchProviders(egCtx, cand.Key())
			if err != nil {
				// 单条失败不影响其他候选
				return nil
			}
			cand.Providers = providers
			return nil
		})
	}

	return eg.Wait()
}

var _ Enricher = (*ProviderEnricher)(nil)
