package deck

import (
	"context"
	"time"

	"github.com/rushteam/deckit/core"
)

// SwipeEvent 是一次滑动的通知载荷。
type SwipeEvent struct {
	Key   core.Key
	Liked bool
	At    time.Time
}

// Syncer 接收滑动事件通知（fire-and-forget）。
// 控制器在命令路径之外异步调用，实现方不应长时间阻塞。
type Syncer interface {
	SwipeRecorded(ctx context.Context, ev SwipeEvent)
}

// NopSyncer 是空实现。
type NopSyncer struct{}

func (NopSyncer) SwipeRecorded(context.Context, SwipeEvent) {}

var _ Syncer = NopSyncer{}
