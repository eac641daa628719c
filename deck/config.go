// Package deck 实现滑卡牌堆的状态机：候选池、可见牌堆、置顶卡、
// 筛选调和、预取与滑动反馈。
package deck

// Config 是牌堆控制器的行为参数。
type Config struct {
	// PrefetchThreshold 牌堆低于该数量时触发后台补货。
	// 冷启动填充目标为该值的两倍。
	PrefetchThreshold int

	// SimilarLimit 注入相似内容时的条数上限。
	SimilarLimit int
}

// DefaultConfig 返回默认参数。
func DefaultConfig() Config {
	return Config{
		PrefetchThreshold: 6,
		SimilarLimit:      10,
	}
}

// normalized 补齐非法/零值参数。
func (c Config) normalized() Config {
	if c.PrefetchThreshold <= 0 {
		c.PrefetchThreshold = 6
	}
	if c.SimilarLimit <= 0 {
		c.SimilarLimit = 10
	}
	return c
}
