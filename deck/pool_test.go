package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/deckit/core"
)

func TestPool_AddDeduplicatesByKey(t *testing.T) {
	p := NewPool()

	movie := core.NewCandidate(1, core.MediaMovie)
	movieDup := core.NewCandidate(1, core.MediaMovie)
	show := core.NewCandidate(1, core.MediaTV) // 同 ID 不同类型是不同条目

	added := p.Add([]*core.Candidate{movie, movieDup, show, nil})
	require.Len(t, added, 2)
	assert.Equal(t, 2, p.Len())
	assert.True(t, p.Contains(movie.Key()))
	assert.True(t, p.Contains(show.Key()))

	// 再次加入已有条目不产生新增
	assert.Empty(t, p.Add([]*core.Candidate{movie}))
}

func TestPool_FacetsSortedAndDeduplicated(t *testing.T) {
	a := core.NewCandidate(1, core.MediaMovie)
	a.Genres = []string{"Drama", "Action"}
	a.Providers = []core.ProviderLink{{Name: "Netflix", Type: "flatrate"}}
	b := core.NewCandidate(2, core.MediaMovie)
	b.Genres = []string{"Action"}
	b.Providers = []core.ProviderLink{{Name: "Hulu"}, {Name: "Netflix", Type: "rent"}}

	p := NewPool()
	p.Add([]*core.Candidate{a, b})

	assert.Equal(t, []string{"Action", "Drama"}, p.Genres())
	assert.Equal(t, []string{"Hulu", "Netflix"}, p.Providers())
}

func TestPool_ResetClearsEverything(t *testing.T) {
	p := NewPool()
	p.Add([]*core.Candidate{core.NewCandidate(1, core.MediaMovie)})
	require.Equal(t, 1, p.Len())

	p.Reset()
	assert.Equal(t, 0, p.Len())
	assert.Empty(t, p.Genres())
	assert.False(t, p.Contains(core.Key{ID: 1, Kind: core.MediaMovie}))
}
