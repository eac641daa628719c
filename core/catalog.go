package core

import "context"

// Feed 是一路命名的上游查询（信息流），各自拥有独立的页游标。
type Feed string

const (
	FeedTrendingWeek  Feed = "trending-week"
	FeedTrendingDay   Feed = "trending-day"
	FeedPopularMovie  Feed = "popular-movie"
	FeedPopularTV     Feed = "popular-tv"
	FeedTopMovie      Feed = "top-movie"
	FeedTopTV         Feed = "top-tv"
	FeedDiscoverMovie Feed = "discover-movie"
	FeedDiscoverTV    Feed = "discover-tv"
)

// AllFeeds 返回全部信息流，顺序即轮转顺序。
func AllFeeds() []Feed {
	return []Feed{
		FeedTrendingWeek,
		FeedTrendingDay,
		FeedPopularMovie,
		FeedPopularTV,
		FeedTopMovie,
		FeedTopTV,
		FeedDiscoverMovie,
		FeedDiscoverTV,
	}
}

// MediaKind 返回该信息流固有的媒体类型。
// trending 两路是混合流，返回 MediaUnknown（由单条记录的 media_type 决定）。
func (f Feed) MediaKind() MediaKind {
	switch f {
	case FeedPopularMovie, FeedTopMovie, FeedDiscoverMovie:
		return MediaMovie
	case FeedPopularTV, FeedTopTV, FeedDiscoverTV:
		return MediaTV
	default:
		return MediaUnknown
	}
}

// AllowedBy 判断该信息流在给定的内容类型筛选下是否允许被请求。
// trending 流与类型无关，始终允许；纯电影流在 TV 筛选下跳过，反之亦然。
func (f Feed) AllowedBy(k KindFilter) bool {
	switch f.MediaKind() {
	case MediaMovie:
		return k != KindTV
	case MediaTV:
		return k != KindMovie
	default:
		return true
	}
}

// RawCandidate 是目录客户端返回的原始记录。
// 电影类记录用 Title/ReleaseDate，剧集类记录用 Name/FirstAirDate，混合流两者都可能出现。
type RawCandidate struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title,omitempty"`
	Name         string   `json:"name,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	FirstAirDate string   `json:"first_air_date,omitempty"`
	MediaType    string   `json:"media_type,omitempty"`
	GenreNames   []string `json:"genre_names,omitempty"`
	VoteAverage  float64  `json:"vote_average,omitempty"`
	VoteCount    int      `json:"vote_count,omitempty"`
}

// Decode 把原始记录映射为候选。有损解码：
//   - media_type 缺失时回退到 fallback（信息流固有类型）；仍无法识别则为 Unknown
//   - 可选字段缺失一律取零值，绝不报错
func (r RawCandidate) Decode(fallback MediaKind) *Candidate {
	kind := ParseMediaKind(r.MediaType)
	if kind == MediaUnknown {
		kind = fallback
	}

	name := r.Title
	if name == "" {
		name = r.Name
	}
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	year := ""
	if len(date) >= 4 {
		year = date[:4]
	}

	c := NewCandidate(r.ID, kind)
	c.Name = name
	c.Year = year
	c.Overview = r.Overview
	c.PosterRef = r.PosterPath
	c.Genres = r.GenreNames
	c.Rating = r.VoteAverage
	c.VoteCount = r.VoteCount
	return c
}

// CatalogClient 是媒体目录的客户端接口（领域层定义，基础设施层实现）。
//
// 错误语义：
//   - FetchPage 的任何错误都按单路信息流的局部失败处理，轮转继续
//   - 唯一的例外是取消（ctx.Err()），调用方应立即中止整个轮转
//   - 超时与重试/退避策略由实现方负责，核心不做兜底
type CatalogClient interface {
	// FetchPage 拉取某路信息流的指定页（页码从 1 开始）。
	FetchPage(ctx context.Context, feed Feed, page int) ([]RawCandidate, error)

	// FetchSimilar 拉取与给定候选相似的条目（用于高分评价后的同类注入）。
	FetchSimilar(ctx context.Context, key Key) ([]*Candidate, error)

	// FetchProviders 拉取候选的观看渠道（旁路补全，受并发上限约束）。
	FetchProviders(ctx context.Context, key Key) ([]ProviderLink, error)
}
