package feed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/deckit/core"
)

// fakeCatalog 按 feed+page 返回预置页，记录调用序列。
type fakeCatalog struct {
	pages map[core.Feed]map[int][]core.RawCandidate
	errs  map[core.Feed]error
	calls []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		pages: make(map[core.Feed]map[int][]core.RawCandidate),
		errs:  make(map[core.Feed]error),
	}
}

func (f *fakeCatalog) addPage(feed core.Feed, page int, raws ...core.RawCandidate) {
	if f.pages[feed] == nil {
		f.pages[feed] = make(map[int][]core.RawCandidate)
	}
	f.pages[feed][page] = raws
}

func (f *fakeCatalog) FetchPage(_ context.Context, feed core.Feed, page int) ([]core.RawCandidate, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%d", feed, page))
	if err := f.errs[feed]; err != nil {
		return nil, err
	}
	return f.pages[feed][page], nil
}

func (f *fakeCatalog) FetchSimilar(context.Context, core.Key) ([]*core.Candidate, error) {
	return nil, nil
}

func (f *fakeCatalog) FetchProviders(context.Context, core.Key) ([]core.ProviderLink, error) {
	return nil, nil
}

func raw(id int64, title string) core.RawCandidate {
	return core.RawCandidate{ID: id, Title: title, ReleaseDate: "2020-01-01"}
}

func testScheduler(catalog core.CatalogClient, feeds ...core.Feed) *Scheduler {
	s := NewScheduler(catalog)
	if len(feeds) > 0 {
		s.Feeds = feeds
	}
	return s
}

func TestScheduler_RoundRobinAdvancesPerFeed(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addPage(core.FeedPopularMovie, 1, raw(1, "M1"))
	catalog.addPage(core.FeedPopularTV, 1, raw(2, "T1"))
	catalog.addPage(core.FeedPopularMovie, 2, raw(3, "M2"))

	s := testScheduler(catalog, core.FeedPopularMovie, core.FeedPopularTV)
	excluded := map[core.Key]struct{}{}

	batch, err := s.FetchNextBatch(context.Background(), excluded)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "M1", batch[0].Name)

	batch, err = s.FetchNextBatch(context.Background(), excluded)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "T1", batch[0].Name)

	// 第三次调用回到电影流，消费其第二页
	batch, err = s.FetchNextBatch(context.Background(), excluded)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "M2", batch[0].Name)
	assert.Equal(t, 3, s.Page(core.FeedPopularMovie))
}

func TestScheduler_SkippedFeedAdvancesCursor(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addPage(core.FeedPopularTV, 1, raw(1, "T1"))

	s := testScheduler(catalog, core.FeedPopularMovie, core.FeedPopularTV)
	s.SetKind(core.KindTV)

	batch, err := s.FetchNextBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "T1", batch[0].Name)

	// 电影流被类型筛选跳过，但游标照常推进，目录没有收到它的请求
	assert.Equal(t, 2, s.Page(core.FeedPopularMovie))
	assert.Equal(t, []string{"popular-tv:1"}, catalog.calls)
}

func TestScheduler_BoundedRotationThenStops(t *testing.T) {
	catalog := newFakeCatalog() // 所有页都是空的

	s := testScheduler(catalog, core.FeedPopularMovie, core.FeedPopularTV)
	batch, err := s.FetchNextBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, batch)
	// 整轮上限 len(feeds)×3 次尝试
	assert.Len(t, catalog.calls, 6)
}

func TestScheduler_CancellationAbortsImmediately(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addPage(core.FeedPopularMovie, 1, raw(1, "M1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := testScheduler(catalog, core.FeedPopularMovie)
	batch, err := s.FetchNextBatch(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, batch)
	assert.Empty(t, catalog.calls)
}

// cancellingCatalog 在页请求进行中取消 ctx，模拟请求被中途取代。
type cancellingCatalog struct {
	cancel context.CancelFunc
	calls  []string
}

func (c *cancellingCatalog) FetchPage(ctx context.Context, feed core.Feed, page int) ([]core.RawCandidate, error) {
	c.calls = append(c.calls, fmt.Sprintf("%s:%d", feed, page))
	c.cancel()
	return nil, ctx.Err()
}

func (c *cancellingCatalog) FetchSimilar(context.Context, core.Key) ([]*core.Candidate, error) {
	return nil, nil
}

func (c *cancellingCatalog) FetchProviders(context.Context, core.Key) ([]core.ProviderLink, error) {
	return nil, nil
}

func TestScheduler_CancelledFetchKeepsCursor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	catalog := &cancellingCatalog{cancel: cancel}

	s := testScheduler(catalog, core.FeedPopularMovie)
	batch, err := s.FetchNextBatch(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, batch)

	// 被取消的请求不消费本页：游标停在原地，恢复后从同一页重试
	assert.Equal(t, 1, s.Page(core.FeedPopularMovie))
	assert.Equal(t, []string{"popular-movie:1"}, catalog.calls)
}

func TestScheduler_FirstFeedErrorRetainedRotationContinues(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.errs[core.FeedPopularMovie] = errors.New("upstream 503")
	catalog.addPage(core.FeedPopularTV, 1, raw(1, "T1"))

	s := testScheduler(catalog, core.FeedPopularMovie, core.FeedPopularTV)
	batch, err := s.FetchNextBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "T1", batch[0].Name)
	assert.Equal(t, "upstream 503", s.CycleError())
}

func TestScheduler_FirstErrorWinsAcrossCycle(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.errs[core.FeedPopularMovie] = errors.New("boom-movie")
	catalog.errs[core.FeedPopularTV] = errors.New("boom-tv")

	s := testScheduler(catalog, core.FeedPopularMovie, core.FeedPopularTV)
	batch, err := s.FetchNextBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.Equal(t, "boom-movie", s.CycleError())
}

func TestScheduler_ExcludedAndDuplicatesDropped(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addPage(core.FeedPopularMovie, 1,
		raw(1, "Seen"),
		raw(2, "Fresh"),
		raw(2, "Fresh Duplicate"),
	)

	s := testScheduler(catalog, core.FeedPopularMovie)
	excluded := map[core.Key]struct{}{
		{ID: 1, Kind: core.MediaMovie}: {},
	}

	batch, err := s.FetchNextBatch(context.Background(), excluded)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, int64(2), batch[0].ID)
}

func TestScheduler_SeededShuffleDeterministic(t *testing.T) {
	page := []core.RawCandidate{
		raw(1, "A"), raw(2, "B"), raw(3, "C"), raw(4, "D"), raw(5, "E"),
	}

	run := func() []int64 {
		catalog := newFakeCatalog()
		catalog.addPage(core.FeedPopularMovie, 1, page...)
		s := testScheduler(catalog, core.FeedPopularMovie)
		s.Rand = rand.New(rand.NewSource(42))
		batch, err := s.FetchNextBatch(context.Background(), nil)
		require.NoError(t, err)
		ids := make([]int64, 0, len(batch))
		for _, c := range batch {
			ids = append(ids, c.ID)
		}
		return ids
	}

	assert.Equal(t, run(), run())
}

func TestScheduler_ResetCursors(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addPage(core.FeedPopularMovie, 1, raw(1, "M1"))

	s := testScheduler(catalog, core.FeedPopularMovie)
	_, err := s.FetchNextBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, s.Page(core.FeedPopularMovie))

	s.ResetCursors()
	assert.Equal(t, 1, s.Page(core.FeedPopularMovie))
	assert.Empty(t, s.CycleError())
}

func TestScheduler_TrendingDecodesPerRecordKind(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addPage(core.FeedTrendingWeek, 1,
		core.RawCandidate{ID: 1, Title: "A Movie", MediaType: "movie"},
		core.RawCandidate{ID: 2, Name: "A Show", MediaType: "tv"},
		core.RawCandidate{ID: 3, Title: "Mystery"},
	)

	s := testScheduler(catalog, core.FeedTrendingWeek)
	s.Rand = rand.New(rand.NewSource(1))
	batch, err := s.FetchNextBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	kinds := map[int64]core.MediaKind{}
	for _, c := range batch {
		kinds[c.ID] = c.Kind
	}
	assert.Equal(t, core.MediaMovie, kinds[1])
	assert.Equal(t, core.MediaTV, kinds[2])
	assert.Equal(t, core.MediaUnknown, kinds[3])
}
