package search

import (
	"sort"
	"strings"

	"github.com/rushteam/deckit/core"
)

// Rescue 在主排序结果为空或过稀时做兜底匹配：
// 只看精确（100）/前缀（90）/子串（80）三档整串关系，不做分词打分，
// 把尚未出现在 ranked 里的命中排在前面，ranked 的既有顺序保持不变。
func Rescue(query string, candidates, ranked []*core.Candidate, limit int) []*core.Candidate {
	if limit <= 0 {
		return nil
	}

	qn := Normalize(query)
	if qn == "" {
		return truncate(ranked, limit)
	}

	seen := make(map[core.Key]struct{}, len(ranked))
	for _, c := range ranked {
		if c == nil {
			continue
		}
		seen[c.Key()] = struct{}{}
	}

	type rescued struct {
		c        *core.Candidate
		score    int
		nameNorm string
	}
	hits := make([]rescued, 0, 8)
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if _, dup := seen[c.Key()]; dup {
			continue
		}
		nameNorm := Normalize(c.Name)
		if nameNorm == "" {
			continue
		}
		var score int
		switch {
		case nameNorm == qn:
			score = 100
		case strings.HasPrefix(nameNorm, qn):
			score = 90
		case strings.Contains(nameNorm, qn):
			score = 80
		default:
			continue
		}
		seen[c.Key()] = struct{}{}
		hits = append(hits, rescued{c: c, score: score, nameNorm: nameNorm})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].nameNorm < hits[j].nameNorm
	})

	out := make([]*core.Candidate, 0, len(hits)+len(ranked))
	for _, h := range hits {
		out = append(out, h.c)
	}
	for _, c := range ranked {
		if c == nil {
			continue
		}
		out = append(out, c)
	}
	return truncate(out, limit)
}

func truncate(items []*core.Candidate, limit int) []*core.Candidate {
	if limit <= 0 {
		return nil
	}
	out := make([]*core.Candidate, 0, min(limit, len(items)))
	for _, c := range items {
		if c == nil {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}
