package store

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/rushteam/deckit/core"
)

// DefaultLibraryPrefix 是用户资料库在 KV 存储里的键前缀。
const DefaultLibraryPrefix = "deckit:library"

// Library 基于 KeyValueStore 的 hash 结构持久化用户媒体库。
//
// 键布局（每个用户四个 hash）：
//
//	{prefix}:{user}:liked    field=Key → 候选 JSON
//	{prefix}:{user}:skipped  field=Key → 记录时间戳（秒）
//	{prefix}:{user}:seen     field=Key → 记录时间戳（秒）
//	{prefix}:{user}:ratings  field=Key → 星级
//
// 所有写入都是幂等的：重复 Like/MarkSeen 只是覆盖同一个 field。
type Library struct {
	Store     core.KeyValueStore
	UserID    string
	KeyPrefix string
}

func NewLibrary(kv core.KeyValueStore, userID string) *Library {
	return &Library{
		Store:     kv,
		UserID:    userID,
		KeyPrefix: DefaultLibraryPrefix,
	}
}

var _ core.LibraryStore = (*Library)(nil)

func (l *Library) hashKey(bucket string) string {
	prefix := l.KeyPrefix
	if prefix == "" {
		prefix = DefaultLibraryPrefix
	}
	return prefix + ":" + l.UserID + ":" + bucket
}

func (l *Library) Like(ctx context.Context, c *core.Candidate) error {
	if c == nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "nil candidate")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return l.Store.HSet(ctx, l.hashKey("liked"), c.Key().String(), data)
}

func (l *Library) Unlike(ctx context.Context, key core.Key) error {
	return l.Store.HDel(ctx, l.hashKey("liked"), key.String())
}

func (l *Library) MarkSkipped(ctx context.Context, key core.Key) error {
	return l.stamp(ctx, "skipped", key)
}

func (l *Library) MarkSeen(ctx context.Context, key core.Key) error {
	return l.stamp(ctx, "seen", key)
}

func (l *Library) Rate(ctx context.Context, key core.Key, stars int) error {
	if stars < 1 || stars > 5 {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "stars out of range")
	}
	return l.Store.HSet(ctx, l.hashKey("ratings"), key.String(), []byte(strconv.Itoa(stars)))
}

func (l *Library) stamp(ctx context.Context, bucket string, key core.Key) error {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return l.Store.HSet(ctx, l.hashKey(bucket), key.String(), []byte(ts))
}

// Liked 读回全部收藏的候选，按归一化 Key 排序保证确定性。
func (l *Library) Liked(ctx context.Context) ([]*core.Candidate, error) {
	fields, err := l.Store.HGetAll(ctx, l.hashKey("liked"))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*core.Candidate, 0, len(keys))
	for _, k := range keys {
		var c core.Candidate
		if err := json.Unmarshal(fields[k], &c); err != nil {
			// 坏数据跳过，不让单条脏记录拖垮整个读回
			continue
		}
		out = append(out, &c)
	}
	return out, nil
}

// SkippedKeys 读回全部跳过记录的 Key 集合。
func (l *Library) SkippedKeys(ctx context.Context) (map[core.Key]struct{}, error) {
	return l.keySet(ctx, "skipped")
}

// SeenKeys 读回全部曝光记录的 Key 集合。
func (l *Library) SeenKeys(ctx context.Context) (map[core.Key]struct{}, error) {
	return l.keySet(ctx, "seen")
}

// LikedKeys 读回全部收藏的 Key 集合。
func (l *Library) LikedKeys(ctx context.Context) (map[core.Key]struct{}, error) {
	return l.keySet(ctx, "liked")
}

// Ratings 读回全部评分。
func (l *Library) Ratings(ctx context.Context) (map[core.Key]int, error) {
	fields, err := l.Store.HGetAll(ctx, l.hashKey("ratings"))
	if err != nil {
		return nil, err
	}
	out := make(map[core.Key]int, len(fields))
	for f, v := range fields {
		key, err := core.ParseKey(f)
		if err != nil {
			continue
		}
		stars, err := strconv.Atoi(string(v))
		if err != nil {
			continue
		}
		out[key] = stars
	}
	return out, nil
}

func (l *Library) keySet(ctx context.Context, bucket string) (map[core.Key]struct{}, error) {
	fields, err := l.Store.HGetAll(ctx, l.hashKey(bucket))
	if err != nil {
		return nil, err
	}
	out := make(map[core.Key]struct{}, len(fields))
	for f := range fields {
		key, err := core.ParseKey(f)
		if err != nil {
			continue
		}
		out[key] = struct{}{}
	}
	return out, nil
}
