package config_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rushteam/deckit/config"
	_ "github.com/rushteam/deckit/config/builders"
	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pipeline"
)

func TestSupportedTypesIncludesBuiltins(t *testing.T) {
	types := config.SupportedTypes()
	for _, want := range []string{"filter", "rank.fuzzy", "rerank.dedup", "rerank.topn"} {
		found := false
		for _, got := range types {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("SupportedTypes() = %v, missing %q", types, want)
		}
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: search
  nodes:
    - type: filter
      config:
        kind: movie
    - type: rank.fuzzy
`))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig: %v", err)
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "rank.magic"})
	err = config.ValidatePipelineConfig(cfg)
	if err == nil {
		t.Fatal("unsupported node type should fail validation")
	}
	if !strings.Contains(err.Error(), "rank.magic") {
		t.Errorf("error should name the offending type: %v", err)
	}

	if err := config.ValidatePipelineConfig(nil); err != nil {
		t.Errorf("nil config should validate: %v", err)
	}
}

func TestDefaultFactoryBuildsConfiguredPipeline(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: search
  nodes:
    - type: filter
      config:
        kind: movie
        expr: 'candidate.rating >= 6.0'
    - type: rank.fuzzy
      config:
        limit: 5
        min_results: 2
    - type: rerank.topn
      config:
        n: 3
`))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}

	mk := func(id int64, kind core.MediaKind, name string, rating float64, votes int) *core.Candidate {
		c := core.NewCandidate(id, kind)
		c.Name = name
		c.Rating = rating
		c.VoteCount = votes
		return c
	}
	in := []*core.Candidate{
		mk(1, core.MediaMovie, "The Matrix", 8.2, 20000),
		mk(2, core.MediaTV, "The Matrix Show", 8.0, 5000), // 类型被过滤
		mk(3, core.MediaMovie, "Matrix Reloaded", 5.5, 9000), // 评分被过滤
		mk(4, core.MediaMovie, "Unrelated Saga", 7.0, 1000),
	}
	sctx := &core.SessionContext{
		Scene:  "search",
		Params: map[string]any{"query": "matrix"},
	}

	out, err := p.Run(context.Background(), sctx, in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		ids := make([]int64, 0, len(out))
		for _, c := range out {
			ids = append(ids, c.ID)
		}
		t.Fatalf("out ids = %v, want [1]", ids)
	}
}

func TestRegisterIgnoresInvalid(t *testing.T) {
	before := len(config.SupportedTypes())
	config.Register("", func(map[string]interface{}) (pipeline.Node, error) { return nil, nil })
	config.Register("nil.builder", nil)
	if got := len(config.SupportedTypes()); got != before {
		t.Errorf("registry size changed from %d to %d", before, got)
	}
}
