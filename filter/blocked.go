package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/deckit/core"
)

// BlockedFilter 过滤掉排除集合（seen ∪ skipped ∪ liked）中的候选，保证永不复现。
// 集合一律按 (ID, Kind) 二元组判断：共享同一数字 ID 的电影与剧集互不影响。
type BlockedFilter struct {
	// Blocked 是内存中的排除集合。
	Blocked map[core.Key]struct{}

	// BlockedFn 动态提供排除集合（优先于 Blocked），控制器用它暴露实时状态。
	BlockedFn func() map[core.Key]struct{}

	// Store 用于从存储中读取持久化的排除集合（可选）。
	Store BlockedStore

	// StoreKey 是 Store 中的排除集合 key（可选）。
	StoreKey string
}

// BlockedStore 是排除集合存储接口。
type BlockedStore interface {
	// GetBlocked 获取持久化的排除 Key 集合
	GetBlocked(ctx context.Context, key string) ([]core.Key, error)
}

func (f *BlockedFilter) Name() string {
	return "filter.blocked"
}

func (f *BlockedFilter) ShouldFilter(
	ctx context.Context,
	_ *core.SessionContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}
	key := c.Key()

	blocked := f.Blocked
	if f.BlockedFn != nil {
		blocked = f.BlockedFn()
	}
	if _, ok := blocked[key]; ok {
		return true, nil
	}

	if f.Store != nil && f.StoreKey != "" {
		keys, err := f.Store.GetBlocked(ctx, f.StoreKey)
		if err == nil {
			for _, k := range keys {
				if k == key {
					return true, nil
				}
			}
		}
		// 存储读取失败时放行：排除是尽力而为的优化，不是安全边界
	}

	return false, nil
}

// StoreAdapter 将 core.Store 适配为 BlockedStore：值为 Key 列表的 JSON。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlocked 从 Store 读取排除集合。
func (a *StoreAdapter) GetBlocked(ctx context.Context, key string) ([]core.Key, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	keys := make([]core.Key, 0, len(raw))
	for _, s := range raw {
		k, err := core.ParseKey(s)
		if err != nil {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}
