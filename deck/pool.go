package deck

import (
	"sort"

	"github.com/rushteam/deckit/core"
)

// Pool 是本次会话见过的候选全集：只增不减、按 Key 去重、保留准入顺序。
// 牌堆永远是 Pool 的一个有序子集视图，筛选调和时从这里重建。
type Pool struct {
	items []*core.Candidate
	index map[core.Key]*core.Candidate
}

func NewPool() *Pool {
	return &Pool{index: make(map[core.Key]*core.Candidate)}
}

// Add 把候选并入池子，返回真正新增的条目（已存在的 Key 被忽略）。
func (p *Pool) Add(candidates []*core.Candidate) []*core.Candidate {
	added := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		k := c.Key()
		if _, ok := p.index[k]; ok {
			continue
		}
		p.index[k] = c
		p.items = append(p.items, c)
		added = append(added, c)
	}
	return added
}

// Get 按 Key 查找池内候选。
func (p *Pool) Get(key core.Key) (*core.Candidate, bool) {
	c, ok := p.index[key]
	return c, ok
}

// Contains 判断 Key 是否已入池。
func (p *Pool) Contains(key core.Key) bool {
	_, ok := p.index[key]
	return ok
}

// Len 返回池内条目数。
func (p *Pool) Len() int {
	return len(p.items)
}

// Items 按准入顺序返回池内全部条目（调用方不得修改返回的切片）。
func (p *Pool) Items() []*core.Candidate {
	return p.items
}

// Reset 清空池子（刷新时调用）。
func (p *Pool) Reset() {
	p.items = nil
	p.index = make(map[core.Key]*core.Candidate)
}

// Providers 返回池内出现过的全部渠道名，排序去重。
// 筛选面板的可选项从这里派生，随池子单调增长。
func (p *Pool) Providers() []string {
	set := make(map[string]struct{})
	for _, c := range p.items {
		for _, pl := range c.Providers {
			if pl.Name != "" {
				set[pl.Name] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// Genres 返回池内出现过的全部题材名，排序去重。
func (p *Pool) Genres() []string {
	set := make(map[string]struct{})
	for _, c := range p.items {
		for _, g := range c.Genres {
			if g != "" {
				set[g] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
