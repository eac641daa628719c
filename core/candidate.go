package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/deckit/pkg/utils"
)

// MediaKind 是媒体类型的封闭枚举：Movie / TV / Unknown。
// 上游返回无法识别的类型字符串时统一降级为 Unknown，解码永不失败。
type MediaKind int8

const (
	MediaUnknown MediaKind = iota
	MediaMovie
	MediaTV
)

func (k MediaKind) String() string {
	switch k {
	case MediaMovie:
		return "movie"
	case MediaTV:
		return "tv"
	default:
		return "unknown"
	}
}

// ParseMediaKind 解析上游的媒体类型字符串。
// 不认识的输入返回 MediaUnknown，永不报错（有损解码是契约的一部分）。
func ParseMediaKind(s string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return MediaMovie
	case "tv":
		return MediaTV
	default:
		return MediaUnknown
	}
}

// Key 是候选的规范身份：(ID, Kind) 二元组。
// 裸数字 ID 在不同媒体类型之间不保证唯一（同一个目录 ID 可能既是电影又是剧集），
// 所以曝光/跳过/收藏等全部集合一律按 Key 存取。
type Key struct {
	ID   int64
	Kind MediaKind
}

func (k Key) String() string {
	return k.Kind.String() + ":" + strconv.FormatInt(k.ID, 10)
}

// ParseKey 解析 Key.String() 的输出（"movie:603" 形式），用于存储层的字段名还原。
func ParseKey(s string) (Key, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("core: invalid key %q", s)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("core: invalid key %q: %w", s, err)
	}
	return Key{ID: n, Kind: ParseMediaKind(kind)}, nil
}

// ProviderLink 是一条观看渠道信息（流媒体平台名 + 渠道类型）。
type ProviderLink struct {
	Name string `json:"name"`
	Type string `json:"type"` // flatrate / rent / buy ...
}

// Candidate 是推荐链路中的统一承载结构：展示元信息、筛选维度、排序信号、标签。
// Labels 用于解释与观测；VoteCount/Rating 用于排序决策。
type Candidate struct {
	ID        int64                  `json:"id"`
	Kind      MediaKind              `json:"kind"`
	Name      string                 `json:"name"`
	Year      string                 `json:"year,omitempty"` // 四位年份，缺失时为空
	Overview  string                 `json:"overview,omitempty"`
	PosterRef string                 `json:"poster_ref,omitempty"`
	Genres    []string               `json:"genres,omitempty"`
	Providers []ProviderLink         `json:"providers,omitempty"`
	Rating    float64                `json:"rating,omitempty"`
	VoteCount int                    `json:"vote_count,omitempty"`
	Labels    map[string]utils.Label `json:"labels,omitempty"`
}

func NewCandidate(id int64, kind MediaKind) *Candidate {
	return &Candidate{
		ID:     id,
		Kind:   kind,
		Labels: make(map[string]utils.Label),
	}
}

// Key 返回候选的规范身份。
func (c *Candidate) Key() Key {
	return Key{ID: c.ID, Kind: c.Kind}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}
