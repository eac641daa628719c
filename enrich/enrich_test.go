package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/feast"
)

type fakeEnricher struct {
	name string
	err  error
	fn   func(candidates []*core.Candidate)

	mu    sync.Mutex
	calls int
}

func (e *fakeEnricher) Name() string { return e.name }

func (e *fakeEnricher) Enrich(_ context.Context, _ *core.SessionContext, candidates []*core.Candidate) error {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.fn != nil {
		e.fn(candidates)
	}
	return e.err
}

func (e *fakeEnricher) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func enrichCandidate(id int64) *core.Candidate {
	c := core.NewCandidate(id, core.MediaMovie)
	c.Name = "Item"
	return c
}

func TestNode_RunsAllEnrichers(t *testing.T) {
	genre := &fakeEnricher{name: "a", fn: func(cs []*core.Candidate) {
		cs[0].Genres = []string{"Drama"}
	}}
	year := &fakeEnricher{name: "b", fn: func(cs []*core.Candidate) {
		cs[0].Year = "1999"
	}}
	node := &Node{Enrichers: []Enricher{genre, year}}

	in := []*core.Candidate{enrichCandidate(1)}
	out, err := node.Process(context.Background(), nil, in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"Drama"}, out[0].Genres)
	assert.Equal(t, "1999", out[0].Year)
}

func TestNode_EnricherFailureDoesNotAbort(t *testing.T) {
	bad := &fakeEnricher{name: "bad", err: errors.New("upstream down")}
	good := &fakeEnricher{name: "good"}
	node := &Node{Enrichers: []Enricher{bad, good}}

	out, err := node.Process(context.Background(), nil, []*core.Candidate{enrichCandidate(1)})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, good.callCount())
}

func TestNode_MaxConcurrentLimitsFanout(t *testing.T) {
	var mu sync.Mutex
	running, peak := 0, 0

	enrichers := make([]Enricher, 0, 8)
	for i := 0; i < 8; i++ {
		enrichers = append(enrichers, &fakeEnricher{name: "e", fn: func([]*core.Candidate) {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			mu.Lock()
			running--
			mu.Unlock()
		}})
	}
	node := &Node{Enrichers: enrichers, MaxConcurrent: 2}

	_, err := node.Process(context.Background(), nil, []*core.Candidate{enrichCandidate(1)})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, 2)
}

func TestNode_NegativeMaxConcurrentMeansUnlimited(t *testing.T) {
	e := &fakeEnricher{name: "e", fn: func(cs []*core.Candidate) {
		cs[0].Year = "2020"
	}}
	node := &Node{Enrichers: []Enricher{e}, MaxConcurrent: -1}

	in := []*core.Candidate{enrichCandidate(1)}
	out, err := node.Process(context.Background(), nil, in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2020", out[0].Year)
}

type fakeProviderCatalog struct {
	mu    sync.Mutex
	calls []core.Key
	err   error
}

func (f *fakeProviderCatalog) FetchPage(context.Context, core.Feed, int) ([]core.RawCandidate, error) {
	return nil, nil
}

func (f *fakeProviderCatalog) FetchSimilar(context.Context, core.Key) ([]*core.Candidate, error) {
	return nil, nil
}

func (f *fakeProviderCatalog) FetchProviders(_ context.Context, key core.Key) ([]core.ProviderLink, error) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []core.ProviderLink{{Name: "Netflix", Type: "flatrate"}}, nil
}

func TestProviderEnricher_FillsOnlyMissing(t *testing.T) {
	catalog := &fakeProviderCatalog{}
	e := &ProviderEnricher{Catalog: catalog}

	has := enrichCandidate(1)
	has.Providers = []core.ProviderLink{{Name: "Hulu", Type: "flatrate"}}
	missing := enrichCandidate(2)

	err := e.Enrich(context.Background(), nil, []*core.Candidate{has, missing, nil})
	require.NoError(t, err)

	assert.Equal(t, "Hulu", has.Providers[0].Name, "existing providers must not be overwritten")
	require.Len(t, missing.Providers, 1)
	assert.Equal(t, "Netflix", missing.Providers[0].Name)
	assert.Equal(t, []core.Key{missing.Key()}, catalog.calls)
}

func TestProviderEnricher_PerItemFailureIgnored(t *testing.T) {
	e := &ProviderEnricher{Catalog: &fakeProviderCatalog{err: errors.New("404")}}

	missing := enrichCandidate(1)
	err := e.Enrich(context.Background(), nil, []*core.Candidate{missing})
	require.NoError(t, err)
	assert.Empty(t, missing.Providers)
}

type fakeFeastClient struct {
	resp *feast.GetOnlineFeaturesResponse
	err  error

	gotReq *feast.GetOnlineFeaturesRequest
}

func (f *fakeFeastClient) GetOnlineFeatures(_ context.Context, req *feast.GetOnlineFeaturesRequest) (*feast.GetOnlineFeaturesResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func (f *fakeFeastClient) Close() error { return nil }

func TestPopularityEnricher_FillsOnlyMissing(t *testing.T) {
	full := enrichCandidate(1)
	full.VoteCount = 500
	full.Rating = 7.5
	missing := enrichCandidate(2)

	client := &fakeFeastClient{resp: &feast.GetOnlineFeaturesResponse{
		FeatureVectors: []feast.FeatureVector{
			{Values: map[string]interface{}{
				FeatureVoteCount:   float64(12345),
				FeatureVoteAverage: 8.1,
			}},
		},
	}}
	e := &PopularityEnricher{Client: client, Project: "media"}

	err := e.Enrich(context.Background(), nil, []*core.Candidate{full, missing})
	require.NoError(t, err)

	// 只有缺数据的候选进入请求
	require.NotNil(t, client.gotReq)
	require.Len(t, client.gotReq.EntityRows, 1)
	assert.Equal(t, missing.ID, client.gotReq.EntityRows[0]["media_id"])
	assert.Equal(t, "movie", client.gotReq.EntityRows[0]["media_kind"])
	assert.Equal(t, "media", client.gotReq.Project)

	assert.Equal(t, 12345, missing.VoteCount)
	assert.InDelta(t, 8.1, missing.Rating, 1e-9)
	assert.Equal(t, 500, full.VoteCount, "existing stats must not be overwritten")
}

func TestPopularityEnricher_VectorCountMismatch(t *testing.T) {
	client := &fakeFeastClient{resp: &feast.GetOnlineFeaturesResponse{}}
	e := &PopularityEnricher{Client: client}

	err := e.Enrich(context.Background(), nil, []*core.Candidate{enrichCandidate(1)})
	require.Error(t, err)
	var derr *core.DomainError
	assert.ErrorAs(t, err, &derr)
}

func TestPopularityEnricher_NoMissingNoRequest(t *testing.T) {
	client := &fakeFeastClient{}
	e := &PopularityEnricher{Client: client}

	full := enrichCandidate(1)
	full.VoteCount = 500
	full.Rating = 7.5

	require.NoError(t, e.Enrich(context.Background(), nil, []*core.Candidate{full}))
	assert.Nil(t, client.gotReq)
}
