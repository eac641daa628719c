package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/deckit/core"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	ms := NewMemoryStore()
	t.Cleanup(func() { _ = ms.Close() })
	return NewLibrary(ms, "u1")
}

func likedCandidate(id int64, name string) *core.Candidate {
	c := core.NewCandidate(id, core.MediaMovie)
	c.Name = name
	c.Year = "2020"
	return c
}

func TestLibrary_LikeRoundtrip(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	require.NoError(t, lib.Like(ctx, likedCandidate(2, "Beta")))
	require.NoError(t, lib.Like(ctx, likedCandidate(1, "Alpha")))
	// 重复收藏幂等
	require.NoError(t, lib.Like(ctx, likedCandidate(1, "Alpha")))

	got, err := lib.Liked(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// 读回按 Key 排序，保证确定性
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Beta", got[1].Name)
	assert.Equal(t, core.Key{ID: 1, Kind: core.MediaMovie}, got[0].Key())
}

func TestLibrary_Unlike(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	c := likedCandidate(1, "Alpha")
	require.NoError(t, lib.Like(ctx, c))
	require.NoError(t, lib.Unlike(ctx, c.Key()))

	got, err := lib.Liked(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// 取消不存在的收藏也不报错
	require.NoError(t, lib.Unlike(ctx, core.Key{ID: 99, Kind: core.MediaTV}))
}

func TestLibrary_SkippedAndSeenKeySets(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	k1 := core.Key{ID: 1, Kind: core.MediaMovie}
	k2 := core.Key{ID: 1, Kind: core.MediaTV} // 同 ID 不同类型分开记
	require.NoError(t, lib.MarkSkipped(ctx, k1))
	require.NoError(t, lib.MarkSeen(ctx, k1))
	require.NoError(t, lib.MarkSeen(ctx, k2))

	skipped, err := lib.SkippedKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[core.Key]struct{}{k1: {}}, skipped)

	seen, err := lib.SeenKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, k2)
}

func TestLibrary_Ratings(t *testing.T) {
	lib := newTestLibrary(t)
	ctx := context.Background()

	k := core.Key{ID: 603, Kind: core.MediaMovie}
	require.NoError(t, lib.Rate(ctx, k, 5))

	ratings, err := lib.Ratings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[core.Key]int{k: 5}, ratings)

	// 星级越界拒绝
	err = lib.Rate(ctx, k, 0)
	assert.Error(t, err)
	err = lib.Rate(ctx, k, 6)
	assert.Error(t, err)
}

func TestLibrary_UsersIsolated(t *testing.T) {
	ms := NewMemoryStore()
	t.Cleanup(func() { _ = ms.Close() })
	ctx := context.Background()

	u1 := NewLibrary(ms, "u1")
	u2 := NewLibrary(ms, "u2")

	require.NoError(t, u1.Like(ctx, likedCandidate(1, "Alpha")))

	got, err := u2.Liked(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
