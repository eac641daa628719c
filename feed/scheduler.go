// Package feed 实现多路信息流的轮转拉取：每路信息流拥有独立的页游标，
// 调度器按固定顺序轮转，单次调用返回第一批非空的新鲜候选。
package feed

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pkg/utils"
)

// rotationFactor 限定单次调用最多轮转几圈，整圈落空时调用方必须停下而不是空转。
const rotationFactor = 3

// Scheduler 是信息流轮转调度器。
//
// 并发模型：单写者。所有方法都应从同一个逻辑执行上下文调用
// （牌堆控制器的命令路径），因此内部不加锁。
type Scheduler struct {
	// Catalog 是媒体目录客户端（必填）。
	Catalog core.CatalogClient

	// Feeds 是参与轮转的信息流，默认 core.AllFeeds()，顺序即轮转顺序。
	Feeds []core.Feed

	// Logger 默认 Nop；feed 级局部错误只记 warn，不中断轮转。
	Logger zerolog.Logger

	// Rand 可注入的随机源，用于批次洗牌；为 nil 时使用全局随机源。
	// 测试中注入固定种子以获得确定性。
	Rand *rand.Rand

	kind     core.KindFilter
	cursors  map[core.Feed]int
	rotation int
	cycleErr string
}

// NewScheduler 创建一个使用默认 8 路信息流的调度器。
func NewScheduler(catalog core.CatalogClient) *Scheduler {
	return &Scheduler{
		Catalog: catalog,
		Feeds:   core.AllFeeds(),
		Logger:  zerolog.Nop(),
		cursors: make(map[core.Feed]int),
	}
}

// SetKind 设置当前生效的内容类型筛选。
// 纯电影流在 TV 筛选下整路跳过（反之亦然），trending 流始终参与。
func (s *Scheduler) SetKind(k core.KindFilter) {
	s.kind = k
}

// Page 返回某路信息流的当前页游标（从 1 开始），用于观测与测试。
func (s *Scheduler) Page(f core.Feed) int {
	if p, ok := s.cursors[f]; ok {
		return p
	}
	return 1
}

// ResetCursors 把所有页游标重置为 1、轮转索引重置为 0（刷新时调用）。
func (s *Scheduler) ResetCursors() {
	s.cursors = make(map[core.Feed]int)
	s.rotation = 0
	s.cycleErr = ""
}

// CycleError 返回最近一次 FetchNextBatch 期间记录的首个 feed 级错误消息。
// 空串表示该轮没有错误。取消不会被记录为错误。
func (s *Scheduler) CycleError() string {
	return s.cycleErr
}

// FetchNextBatch 从当前轮转位置开始拉取下一批候选。
//
// 算法：逐路轮转；被类型筛选跳过的信息流同样推进其页游标；允许的信息流
// 请求当前页并推进游标，解码后剔除 excluded 中已知的 Key，得到第一批
// 非空结果时洗牌（避免同源聚集）并立即返回。
//
// 错误语义：
//   - feed 级错误记录首条消息后继续轮转，不会让调用失败
//   - 取消立即中止并返回 ctx.Err()
//   - 整轮（len(Feeds)×3 次尝试）落空时返回 (nil, nil)，调用方必须停止
func (s *Scheduler) FetchNextBatch(ctx context.Context, excluded map[core.Key]struct{}) ([]*core.Candidate, error) {
	if s.Catalog == nil {
		return nil, core.NewDomainError(core.ModuleFeed, core.ErrorCodeInvalidInput, "feed: catalog client is required")
	}
	if len(s.Feeds) == 0 {
		return nil, nil
	}
	if s.cursors == nil {
		s.cursors = make(map[core.Feed]int)
	}

	s.cycleErr = ""
	maxAttempts := len(s.Feeds) * rotationFactor

	for attempt := 0; attempt < maxAttempts; attempt++ {
		// 取消检查放在每次轮转尝试的开头：被取代的加载在批次之间中止，绝不中途提交半批
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f := s.Feeds[s.rotation%len(s.Feeds)]
		s.rotation = (s.rotation + 1) % len(s.Feeds)
		page := s.Page(f)

		if !f.AllowedBy(s.kind) {
			// 跳过的信息流同样推进游标，保证恢复筛选后不重复消费旧页
			s.cursors[f] = page + 1
			continue
		}

		raws, err := s.Catalog.FetchPage(ctx, f, page)
		if err != nil {
			if ctx.Err() != nil {
				// 取消的请求不推进游标：本页尚未被消费
				return nil, ctx.Err()
			}
			s.cursors[f] = page + 1
			if s.cycleErr == "" {
				s.cycleErr = err.Error() // 每轮只保留首个错误
			}
			s.Logger.Warn().Err(err).Str("feed", string(f)).Int("page", page).Msg("feed fetch failed, rotation continues")
			continue
		}
		s.cursors[f] = page + 1 // 无论本页是否产出可用条目都推进

		batch := s.decode(f, raws, excluded)
		if len(batch) == 0 {
			continue
		}

		s.shuffle(batch)
		s.Logger.Debug().Str("feed", string(f)).Int("page", page).Int("count", len(batch)).Msg("batch fetched")
		return batch, nil
	}

	return nil, nil
}

// decode 把一页原始记录映射为候选，剔除 excluded 与页内重复。
func (s *Scheduler) decode(f core.Feed, raws []core.RawCandidate, excluded map[core.Key]struct{}) []*core.Candidate {
	batch := make([]*core.Candidate, 0, len(raws))
	seen := make(map[core.Key]struct{}, len(raws))
	for _, r := range raws {
		c := r.Decode(f.MediaKind())
		key := c.Key()
		if _, ok := excluded[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		c.PutLabel("recall_source", utils.Label{Value: string(f), Source: "recall"})
		batch = append(batch, c)
	}
	return batch
}

// shuffle 打乱批次顺序，避免可见顺序出现同源聚集。
func (s *Scheduler) shuffle(batch []*core.Candidate) {
	swap := func(i, j int) { batch[i], batch[j] = batch[j], batch[i] }
	if s.Rand != nil {
		s.Rand.Shuffle(len(batch), swap)
		return
	}
	rand.Shuffle(len(batch), swap)
}
