package core

// KindFilter 是内容类型筛选：All / Movie / TV。
type KindFilter int8

const (
	KindAll KindFilter = iota
	KindMovie
	KindTV
)

func (k KindFilter) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindTV:
		return "tv"
	default:
		return "all"
	}
}

// Allows 判断一个媒体类型是否通过类型筛选。
// MediaUnknown 只在 KindAll 下通过：类型未知的候选不应混进明确的电影/剧集视图。
func (k KindFilter) Allows(m MediaKind) bool {
	switch k {
	case KindMovie:
		return m == MediaMovie
	case KindTV:
		return m == MediaTV
	default:
		return true
	}
}

// Filters 是筛选条件的值对象：内容类型 + 渠道集合 + 题材集合。
// 整体替换、按 Equal 判断是否触发重新筛选，不支持部分更新。
type Filters struct {
	Kind      KindFilter
	Providers map[string]struct{}
	Genres    map[string]struct{}
}

// NewFilters 返回空筛选（全部通过）。
func NewFilters() Filters {
	return Filters{
		Kind:      KindAll,
		Providers: make(map[string]struct{}),
		Genres:    make(map[string]struct{}),
	}
}

// WithKind 返回替换了内容类型的拷贝（值对象惯用法）。
func (f Filters) WithKind(k KindFilter) Filters {
	out := f
	out.Kind = k
	return out
}

// Matches 判断候选是否满足筛选条件。
// Providers/Genres 为空集时视为不限制；非空时要求至少命中一个。
func (f Filters) Matches(c *Candidate) bool {
	if c == nil {
		return false
	}
	if !f.Kind.Allows(c.Kind) {
		return false
	}
	if len(f.Providers) > 0 {
		hit := false
		for _, p := range c.Providers {
			if _, ok := f.Providers[p.Name]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if len(f.Genres) > 0 {
		hit := false
		for _, g := range c.Genres {
			if _, ok := f.Genres[g]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Equal 判断两个筛选条件是否等价（集合按内容比较）。
func (f Filters) Equal(o Filters) bool {
	if f.Kind != o.Kind {
		return false
	}
	if !setEqual(f.Providers, o.Providers) {
		return false
	}
	return setEqual(f.Genres, o.Genres)
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
