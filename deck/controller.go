package deck

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/feed"
)

// State 是控制器的生命周期状态。
type State int8

const (
	// StateCold 尚未加载过任何内容。
	StateCold State = iota
	// StatePriming 首次填充进行中。
	StatePriming
	// StatePrimed 首批内容就绪。
	StatePrimed
	// StateSteady 进入日常滑动/补货循环。
	StateSteady
)

func (s State) String() string {
	switch s {
	case StateCold:
		return "cold"
	case StatePriming:
		return "priming"
	case StatePrimed:
		return "primed"
	case StateSteady:
		return "steady"
	}
	return "unknown"
}

// asyncOpTimeout 是 fire-and-forget 持久化调用的兜底超时。
const asyncOpTimeout = 5 * time.Second

// Controller 是滑卡牌堆的控制器。
//
// 牌堆方向约定：deck 切片的末元素是正面朝上的牌（用户即将看到的一张），
// 信息流补货从切片头部（牌堆底部）进入。
//
// 并发模型：单写者。所有状态变更都在 mu 之下完成；后台加载通过
// 代数（loadGen）+ 取消实现"至多一个活跃加载"，被取代的加载整批放弃，
// 绝不提交半批。持久化与事件通知是 fire-and-forget，失败只记日志。
type Controller struct {
	mu sync.Mutex

	cfg       Config
	scheduler *feed.Scheduler
	catalog   core.CatalogClient
	library   core.LibraryStore
	syncer    Syncer
	logger    zerolog.Logger

	pool    *Pool
	deck    []*core.Candidate
	filters core.Filters
	// pin 是跨筛选调和保持在牌堆顶部的卡；滑动时清除。
	pin *core.Key

	liked      map[core.Key]struct{}
	likedOrder []*core.Candidate
	skipped    map[core.Key]struct{}
	seen       map[core.Key]struct{}

	state   State
	loading bool
	errMsg  string

	loadGen    uint64
	loadCancel context.CancelFunc

	// fetchMu 串行化对调度器的访问：新加载先取消旧加载的 ctx，
	// 再在这里等旧的拉取调用返回。
	fetchMu sync.Mutex
}

// Option 是控制器的可选配置。
type Option func(*Controller)

// WithConfig 设置行为参数。
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg.normalized() }
}

// WithLibrary 设置用户资料库持久化（默认 NopLibrary）。
func WithLibrary(lib core.LibraryStore) Option {
	return func(c *Controller) {
		if lib != nil {
			c.library = lib
		}
	}
}

// WithSyncer 设置滑动事件接收方（默认 NopSyncer）。
func WithSyncer(s Syncer) Option {
	return func(c *Controller) {
		if s != nil {
			c.syncer = s
		}
	}
}

// WithLogger 设置日志（默认 Nop）。
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController 创建牌堆控制器。
func NewController(scheduler *feed.Scheduler, catalog core.CatalogClient, opts ...Option) *Controller {
	c := &Controller{
		cfg:       DefaultConfig(),
		scheduler: scheduler,
		catalog:   catalog,
		library:   core.NopLibrary{},
		syncer:    NopSyncer{},
		logger:    zerolog.Nop(),
		pool:      NewPool(),
		filters:   core.NewFilters(),
		liked:     make(map[core.Key]struct{}),
		skipped:   make(map[core.Key]struct{}),
		seen:      make(map[core.Key]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh 丢弃全部会话状态并重新冷启动填充。
// 进行中的加载被取消；填充目标为 2×PrefetchThreshold，
// 调度器整轮落空时提前结束。成功后置顶卡设为当前正面卡。
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	gen, loadCtx := c.beginLoadLocked(ctx)
	c.pool.Reset()
	c.deck = nil
	c.pin = nil
	c.errMsg = ""
	c.state = StatePriming
	kind := c.filters.Kind
	c.mu.Unlock()

	// 调度器是单写者：等被取代的拉取退场（fetchMu 排空）后再重置游标
	c.fetchMu.Lock()
	c.scheduler.ResetCursors()
	c.scheduler.SetKind(kind)
	c.fetchMu.Unlock()

	err := c.drive(loadCtx, gen, 2*c.cfg.PrefetchThreshold)
	c.finishLoad(gen, true)
	return err
}

// LoadMore 在现有会话上继续补货，目标为 PrefetchThreshold 张合格新卡。
// 启动新加载会取代进行中的旧加载。
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	gen, loadCtx := c.beginLoadLocked(ctx)
	kind := c.filters.Kind
	c.mu.Unlock()

	c.fetchMu.Lock()
	c.scheduler.SetKind(kind)
	c.fetchMu.Unlock()

	err := c.drive(loadCtx, gen, c.cfg.PrefetchThreshold)
	c.finishLoad(gen, false)
	return err
}

// beginLoadLocked 开启新一代加载：取消旧加载并派生可取消的子 ctx。
func (c *Controller) beginLoadLocked(parent context.Context) (uint64, context.Context) {
	c.loadGen++
	if c.loadCancel != nil {
		c.loadCancel()
	}
	loadCtx, cancel := context.WithCancel(parent)
	c.loadCancel = cancel
	c.loading = true
	return c.loadGen, loadCtx
}

// drive 反复驱动调度器直到凑够 target 张合格新卡或调度器整轮落空。
// 每个批次在锁内整批提交；代数过期的批次整批放弃。
func (c *Controller) drive(ctx context.Context, gen uint64, target int) error {
	admitted := 0
	for admitted < target {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.mu.Lock()
		if gen != c.loadGen {
			c.mu.Unlock()
			return context.Canceled
		}
		excluded := c.excludedLocked()
		c.mu.Unlock()

		c.fetchMu.Lock()
		batch, err := c.scheduler.FetchNextBatch(ctx, excluded)
		cycleErr := c.scheduler.CycleError()
		c.fetchMu.Unlock()
		if err != nil {
			return err
		}

		if len(batch) == 0 {
			// 调度器整轮落空：带错误时保留首条消息，否则就是真没货了
			if cycleErr != "" {
				c.mu.Lock()
				if gen == c.loadGen && c.errMsg == "" {
					c.errMsg = cycleErr
				}
				c.mu.Unlock()
			}
			return nil
		}

		c.mu.Lock()
		if gen != c.loadGen {
			c.mu.Unlock()
			return context.Canceled
		}
		added := c.pool.Add(batch)
		eligible := make([]*core.Candidate, 0, len(added))
		for _, cand := range added {
			if c.eligibleLocked(cand) {
				eligible = append(eligible, cand)
			}
		}
		c.admitBottomLocked(eligible)
		c.errMsg = "" // 成功批次清除保留的错误消息
		c.mu.Unlock()

		admitted += len(eligible)
	}
	return nil
}

// finishLoad 收尾一代加载；被取代的加载不做任何状态变更。
func (c *Controller) finishLoad(gen uint64, refresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		return
	}
	c.loading = false
	if c.loadCancel != nil {
		c.loadCancel()
		c.loadCancel = nil
	}
	if refresh {
		c.state = StatePrimed
		if top, ok := c.topLocked(); ok {
			k := top.Key()
			c.pin = &k
		}
		return
	}
	if c.state == StatePrimed {
		c.state = StateSteady
	}
}

// ApplyFilters 切换筛选条件并调和牌堆：
// 不合格的牌被驱逐（置顶卡豁免），池中缺失的合格条目按准入顺序补到底部，
// 调和后仍低于预取阈值时触发后台补货。与现有条件相同是无操作。
func (c *Controller) ApplyFilters(f core.Filters) {
	c.mu.Lock()
	if c.filters.Equal(f) {
		c.mu.Unlock()
		return
	}
	c.filters = f
	// 调度器的类型筛选不在这里改：下一次 Refresh/LoadMore
	// 会在 fetchMu 之下生效，避免与进行中的拉取竞争

	// 驱逐：置顶卡即使不合格也留在原位
	kept := make([]*core.Candidate, 0, len(c.deck))
	present := make(map[core.Key]struct{}, len(c.deck))
	for _, cand := range c.deck {
		k := cand.Key()
		if c.eligibleLocked(cand) || (c.pin != nil && *c.pin == k) {
			kept = append(kept, cand)
			present[k] = struct{}{}
		}
	}
	c.deck = kept

	// 补入：池内合格但不在牌堆的条目，按池的准入顺序补到底部
	missing := make([]*core.Candidate, 0)
	for _, cand := range c.pool.Items() {
		k := cand.Key()
		if _, ok := present[k]; ok {
			continue
		}
		if c.eligibleLocked(cand) {
			missing = append(missing, cand)
		}
	}
	c.admitBottomLocked(missing)

	c.maybePrefetchLocked()
	c.mu.Unlock()
}

// Swipe 处理一次滑动：右滑收藏、左滑跳过，两者都记曝光并把该卡移出牌堆。
// 持久化与事件通知在命令路径之外异步完成。
func (c *Controller) Swipe(item *core.Candidate, liked bool) {
	if item == nil {
		return
	}
	key := item.Key()

	c.mu.Lock()
	c.pin = nil
	if liked {
		if _, ok := c.liked[key]; !ok {
			c.liked[key] = struct{}{}
			c.likedOrder = append(c.likedOrder, item)
		}
	} else {
		c.skipped[key] = struct{}{}
	}
	c.seen[key] = struct{}{}

	// 按更新后的屏蔽集重新推导牌堆（同 Key 残留一并清除）
	kept := make([]*core.Candidate, 0, len(c.deck))
	for _, cand := range c.deck {
		if c.blockedLocked(cand.Key()) {
			continue
		}
		kept = append(kept, cand)
	}
	c.deck = kept

	if c.state == StatePrimed {
		c.state = StateSteady
	}
	c.maybePrefetchLocked()
	lib := c.library
	syncer := c.syncer
	c.mu.Unlock()

	c.async("swipe", func(ctx context.Context) error {
		if liked {
			if err := lib.Like(ctx, item); err != nil {
				return err
			}
		} else {
			if err := lib.MarkSkipped(ctx, key); err != nil {
				return err
			}
		}
		if err := lib.MarkSeen(ctx, key); err != nil {
			return err
		}
		syncer.SwipeRecorded(ctx, SwipeEvent{Key: key, Liked: liked, At: time.Now()})
		return nil
	})
}

// Unlike 取消收藏，并把该 Key 从收藏屏蔽集中移除。
// 与滑动一样算一次用户动作：解除置顶卡的豁免。
func (c *Controller) Unlike(key core.Key) {
	c.mu.Lock()
	c.pin = nil
	if _, ok := c.liked[key]; ok {
		delete(c.liked, key)
		kept := make([]*core.Candidate, 0, len(c.likedOrder))
		for _, cand := range c.likedOrder {
			if cand.Key() == key {
				continue
			}
			kept = append(kept, cand)
		}
		c.likedOrder = kept
	}
	lib := c.library
	c.mu.Unlock()

	c.async("unlike", func(ctx context.Context) error {
		return lib.Unlike(ctx, key)
	})
}

// Rate 记录评分；满星（5）额外触发相似内容注入。
func (c *Controller) Rate(item *core.Candidate, stars int) {
	if item == nil || stars < 1 || stars > 5 {
		return
	}
	key := item.Key()
	c.mu.Lock()
	lib := c.library
	c.mu.Unlock()

	c.async("rate", func(ctx context.Context) error {
		return lib.Rate(ctx, key, stars)
	})

	if stars == 5 {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), asyncOpTimeout)
			defer cancel()
			if err := c.InjectSimilar(ctx, item); err != nil {
				c.logger.Warn().Err(err).Stringer("key", key).Msg("inject similar failed")
			}
		}()
	}
}

// InjectSimilar 拉取与 item 相似的内容，取前 SimilarLimit 条未看过且
// 合格的候选并入池子，放到牌堆顶部（第一条相似内容成为新的正面卡）。
// 不触碰信息流页游标。
func (c *Controller) InjectSimilar(ctx context.Context, item *core.Candidate) error {
	if item == nil || c.catalog == nil {
		return nil
	}
	similar, err := c.catalog.FetchSimilar(ctx, item.Key())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	inDeck := make(map[core.Key]struct{}, len(c.deck))
	for _, cand := range c.deck {
		inDeck[cand.Key()] = struct{}{}
	}

	picked := make([]*core.Candidate, 0, c.cfg.SimilarLimit)
	for _, s := range similar {
		if s == nil {
			continue
		}
		k := s.Key()
		if _, ok := inDeck[k]; ok {
			continue
		}
		if !c.eligibleLocked(s) {
			continue
		}
		inDeck[k] = struct{}{}
		picked = append(picked, s)
		if len(picked) == c.cfg.SimilarLimit {
			break
		}
	}
	c.pool.Add(picked)

	// 倒序追加到切片尾部，使 picked[0] 成为新的正面卡
	for i := len(picked) - 1; i >= 0; i-- {
		c.deck = append(c.deck, picked[i])
	}
	return nil
}

// SeedExclusions 预置曝光屏蔽集（会话恢复时从资料库读回）。
func (c *Controller) SeedExclusions(keys map[core.Key]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range keys {
		c.seen[k] = struct{}{}
	}
}

// SeedLiked 预置收藏（会话恢复），不触发持久化。
func (c *Controller) SeedLiked(items []*core.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		if item == nil {
			continue
		}
		k := item.Key()
		if _, ok := c.liked[k]; ok {
			continue
		}
		c.liked[k] = struct{}{}
		c.likedOrder = append(c.likedOrder, item)
	}
}

// ---- 观测面 ----

// CurrentDeck 返回牌堆快照，末元素为正面朝上的牌。
func (c *Controller) CurrentDeck() []*core.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*core.Candidate, len(c.deck))
	copy(out, c.deck)
	return out
}

// TopCard 返回当前正面卡。
func (c *Controller) TopCard() (*core.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topLocked()
}

// Liked 按收藏顺序返回收藏列表快照。
func (c *Controller) Liked() []*core.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*core.Candidate, len(c.likedOrder))
	copy(out, c.likedOrder)
	return out
}

// AvailableProviders 返回可选渠道（池内出现过的，排序去重）。
func (c *Controller) AvailableProviders() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool.Providers()
}

// AvailableGenres 返回可选题材。
func (c *Controller) AvailableGenres() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool.Genres()
}

// Filters 返回当前生效的筛选条件。
func (c *Controller) Filters() core.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// IsLoading 返回是否有加载进行中。
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ErrMessage 返回保留的加载错误消息（每轮加载首条；下个成功批次清除）。
func (c *Controller) ErrMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// State 返回当前生命周期状态。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPrimed 返回首批内容是否已就绪。
func (c *Controller) IsPrimed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StatePrimed || c.state == StateSteady
}

// ---- 内部 ----

func (c *Controller) topLocked() (*core.Candidate, bool) {
	if len(c.deck) == 0 {
		return nil, false
	}
	return c.deck[len(c.deck)-1], true
}

// blockedLocked 判断 Key 是否被屏蔽（收藏/跳过/曝光任一命中）。
// 屏蔽以 (ID, Kind) 对为键：同 ID 的电影与剧集互不影响。
func (c *Controller) blockedLocked(k core.Key) bool {
	if _, ok := c.liked[k]; ok {
		return true
	}
	if _, ok := c.skipped[k]; ok {
		return true
	}
	if _, ok := c.seen[k]; ok {
		return true
	}
	return false
}

// eligibleLocked 判断候选是否可进入牌堆：未屏蔽且匹配当前筛选。
func (c *Controller) eligibleLocked(cand *core.Candidate) bool {
	if cand == nil {
		return false
	}
	if c.blockedLocked(cand.Key()) {
		return false
	}
	return c.filters.Matches(cand)
}

// excludedLocked 汇总调度器的排除集：池内全部 Key 加上三类屏蔽集。
func (c *Controller) excludedLocked() map[core.Key]struct{} {
	out := make(map[core.Key]struct{}, c.pool.Len()+len(c.liked)+len(c.skipped)+len(c.seen))
	for _, cand := range c.pool.Items() {
		out[cand.Key()] = struct{}{}
	}
	for k := range c.liked {
		out[k] = struct{}{}
	}
	for k := range c.skipped {
		out[k] = struct{}{}
	}
	for k := range c.seen {
		out[k] = struct{}{}
	}
	return out
}

// admitBottomLocked 把一批卡按给定遭遇顺序放入牌堆底部：
// batch[0] 是现有牌滑完后最先遇到的一张。
func (c *Controller) admitBottomLocked(batch []*core.Candidate) {
	if len(batch) == 0 {
		return
	}
	bottom := make([]*core.Candidate, 0, len(batch)+len(c.deck))
	for i := len(batch) - 1; i >= 0; i-- {
		bottom = append(bottom, batch[i])
	}
	c.deck = append(bottom, c.deck...)
}

// maybePrefetchLocked 牌堆低于阈值且当前空闲时触发后台补货。
func (c *Controller) maybePrefetchLocked() {
	if c.state == StateCold || c.loading {
		return
	}
	if len(c.deck) >= c.cfg.PrefetchThreshold {
		return
	}
	go func() {
		if err := c.LoadMore(context.Background()); err != nil {
			c.logger.Debug().Err(err).Msg("background prefetch aborted")
		}
	}()
}

// async 执行 fire-and-forget 的持久化/通知调用。
func (c *Controller) async(op string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncOpTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			c.logger.Warn().Err(err).Str("op", op).Msg("library sync failed")
		}
	}()
}
