package core

import "context"

// LibraryStore 是用户媒体库的持久化接口（领域层定义，基础设施层实现）。
//
// 通知语义：这些调用是"请求持久化"而非事务，牌堆控制器以 fire-and-forget
// 方式触发，绝不在命令路径上等待完成；失败只记日志，不回滚内存状态。
type LibraryStore interface {
	// Like 收藏一个候选（幂等）。
	Like(ctx context.Context, c *Candidate) error

	// Unlike 取消收藏。
	Unlike(ctx context.Context, key Key) error

	// MarkSkipped 记录左滑跳过。
	MarkSkipped(ctx context.Context, key Key) error

	// MarkSeen 记录曝光。
	MarkSeen(ctx context.Context, key Key) error

	// Rate 记录评分（1-5 星）。
	Rate(ctx context.Context, key Key, stars int) error
}

// NopLibrary 是空实现，用于不需要持久化的场景与测试。
type NopLibrary struct{}

func (NopLibrary) Like(context.Context, *Candidate) error { return nil }
func (NopLibrary) Unlike(context.Context, Key) error      { return nil }
func (NopLibrary) MarkSkipped(context.Context, Key) error { return nil }
func (NopLibrary) MarkSeen(context.Context, Key) error    { return nil }
func (NopLibrary) Rate(context.Context, Key, int) error   { return nil }

var _ LibraryStore = NopLibrary{}
