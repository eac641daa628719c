package filter

import (
	"context"

	"github.com/rushteam/deckit/core"
)

// FacetFilter 按筛选条件值对象（类型/渠道/题材）过滤候选。
type FacetFilter struct {
	Filters core.Filters
}

func (f *FacetFilter) Name() string {
	return "filter.facets"
}

func (f *FacetFilter) ShouldFilter(
	_ context.Context,
	_ *core.SessionContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}
	return !f.Filters.Matches(c), nil
}
