package enrich

import (
	"context"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/feast"
)

// 媒体统计特征名（Feast 特征视图 media_stats）
const (
	FeatureVoteCount   = "media_stats:vote_count"
	FeatureVoteAverage = "media_stats:vote_average"
)

// PopularityEnricher 从 Feast 在线特征补全候选的热度统计字段。
// 只填缺失值（VoteCount/Rating 为零），已有数据不覆盖。
type PopularityEnricher struct {
	Client feast.Client

	// Project Feast 项目名，空时用客户端默认。
	Project string
}

func (e *PopularityEnricher) Name() string { return "enrich.popularity" }

func (e *PopularityEnricher) Enrich(
	ctx context.Context,
	_ *core.SessionContext,
	candidates []*core.Candidate,
) error {
	if e.Client == nil {
		return nil
	}

	// 只为缺字段的候选发请求
	missing := make([]*core.Candidate, 0, len(candidates))
	entityRows := make([]map[string]interface{}, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || (c.VoteCount > 0 && c.Rating > 0) {
			continue
		}
		missing = append(missing, c)
		entityRows = append(entityRows, map[string]interface{}{
			"media_id":   c.ID,
			"media_kind": c.Kind.String(),
		})
	}
	if len(missing) == 0 {
		return nil
	}

	resp, err := e.Client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   []string{FeatureVoteCount, FeatureVoteAverage},
		EntityRows: entityRows,
		Project:    e.Project,
	})
	if err != nil {
		return err
	}
	if len(resp.FeatureVectors) != len(missing) {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInternalError, "feature vector count mismatch")
	}

	for i, c := range missing {
		values := resp.FeatureVectors[i].Values
		if c.VoteCount == 0 {
			if v, ok := values[FeatureVoteCount].(float64); ok && v > 0 {
				c.VoteCount = int(v)
			}
		}
		if c.Rating == 0 {
			if v, ok := values[FeatureVoteAverage].(float64); ok && v > 0 {
				c.Rating = v
			}
		}
	}
	return nil
}

var _ Enricher = (*PopularityEnricher)(nil)
