package search

import (
	"math"
	"sort"
	"strings"

	"github.com/rushteam/deckit/core"
)

const (
	// DefaultThreshold 是偏召回的低门槛：宁可多出弱相关结果也不漏掉拼错的查询。
	DefaultThreshold = 25
	// DefaultMaxCandidates 是单次排序的扇入上限，超出部分直接截断。
	DefaultMaxCandidates = 500
	// maxEdits 是容错匹配允许的最大编辑距离。
	maxEdits = 2
	// earlyExitScore 某个变体已近满分时跳过其余变体。
	earlyExitScore = 98
)

// Ranker 对候选集做模糊搜索排序。零值不可用，请用 NewRanker 创建。
//
// 打分由分词 Jaccard 相似度打底，叠加整串匹配加成、编辑距离容错加成、
// 年份命中加成与热度加成，总分截断在 [0,100]。
type Ranker struct {
	// Threshold 准入门槛，低于该分数的候选不进入结果。
	Threshold int
	// MaxCandidates 扇入上限，<=0 表示不限制。
	MaxCandidates int
}

func NewRanker() *Ranker {
	return &Ranker{
		Threshold:     DefaultThreshold,
		MaxCandidates: DefaultMaxCandidates,
	}
}

type scoredCandidate struct {
	c     *core.Candidate
	score int
}

// Rank 按查询词对候选集排序并截断到 limit。
//
// 空查询退化为恒等：原序返回前 limit 个候选。相同输入保证相同输出：
// 排序键为 (分数, 票数, 评分, 归一化标题) 四级，不依赖 map 遍历顺序。
// 结果按 Key 去重，保留首个出现。
func (r *Ranker) Rank(query string, candidates []*core.Candidate, limit int) []*core.Candidate {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	// 空查询恒等路径先于候选数上限：上限只约束打分成本
	qn := Normalize(query)
	if qn == "" {
		out := make([]*core.Candidate, 0, min(limit, len(candidates)))
		for _, c := range candidates {
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

	cands := candidates
	if r.MaxCandidates > 0 && len(cands) > r.MaxCandidates {
		cands = cands[:r.MaxCandidates]
	}

	variants := queryVariants(qn)
	variantTokens := make([][]string, len(variants))
	for i, v := range variants {
		variantTokens[i] = Tokenize(v)
	}
	qYear := yearToken(qn)

	results := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		if c == nil {
			continue
		}
		// 每个候选只归一化/分词一次，跨变体复用
		nameNorm := Normalize(c.Name)
		nameTokens := Tokenize(nameNorm)

		best := 0
		for i, v := range variants {
			s := scoreOne(v, variantTokens[i], nameNorm, nameTokens, qYear, c)
			if s > best {
				best = s
			}
			if best >= earlyExitScore {
				break
			}
		}
		if best >= r.Threshold {
			results = append(results, scoredCandidate{c: c, score: best})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.c.VoteCount != b.c.VoteCount {
			return a.c.VoteCount > b.c.VoteCount
		}
		if a.c.Rating != b.c.Rating {
			return a.c.Rating > b.c.Rating
		}
		return strings.ToLower(a.c.Name) < strings.ToLower(b.c.Name)
	})

	out := make([]*core.Candidate, 0, min(limit, len(results)))
	seen := make(map[core.Key]struct{}, len(results))
	for _, s := range results {
		k := s.c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s.c)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Score 返回单个候选对查询词的得分，取所有查询变体的最高值。
func (r *Ranker) Score(query string, c *core.Candidate) int {
	if c == nil {
		return 0
	}
	qn := Normalize(query)
	if qn == "" {
		return 0
	}

	variants := queryVariants(qn)
	qYear := yearToken(qn)
	nameNorm := Normalize(c.Name)
	nameTokens := Tokenize(nameNorm)

	best := 0
	for _, v := range variants {
		s := scoreOne(v, Tokenize(v), nameNorm, nameTokens, qYear, c)
		if s > best {
			best = s
		}
		if best >= earlyExitScore {
			break
		}
	}
	return best
}

// scoreOne 对单个查询变体打分。
func scoreOne(qv string, qTokens []string, nameNorm string, nameTokens []string, qYear string, c *core.Candidate) int {
	if qv == "" || nameNorm == "" {
		return 0
	}

	total := int(jaccard(qTokens, nameTokens) * 100)

	// 整串匹配加成按强度取最高一档
	switch {
	case nameNorm == qv:
		total += 50
	case hasWordPrefix(nameNorm, qv):
		total += 30
	case containsWord(nameNorm, qv):
		total += 20
	case strings.Contains(nameNorm, qv):
		total += 15
	}

	// 容错匹配：只对长度适中的查询开启，避免短查询误伤
	if n := len([]rune(qv)); n >= 3 && n <= 32 {
		if d := boundedDistance(qv, nameNorm, maxEdits); d <= maxEdits {
			total += (maxEdits - d + 1) * 8
		}
	}

	if qYear != "" && qYear == c.Year {
		total += 8
	}

	// 热度只做同分附近的排序微调，完全不相关的候选保持零分
	if total > 0 {
		total += popularityBonus(c.VoteCount)
	}

	if total > 100 {
		total = 100
	}
	return total
}

// jaccard 计算两个 token 集合的 Jaccard 相似度（交集/并集）。
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	inter := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// hasWordPrefix 判断 name 是否在词边界上以 q 开头。
func hasWordPrefix(name, q string) bool {
	if !strings.HasPrefix(name, q) {
		return false
	}
	return len(name) == len(q) || name[len(q)] == ' '
}

// containsWord 判断 name 是否在词边界上包含 q。
func containsWord(name, q string) bool {
	return strings.Contains(" "+name+" ", " "+q+" ")
}

// popularityBonus 把票数映射到 [0,20] 的对数刻度加成：
// 10 票约 +5，1000 票约 +15，十万票以上封顶 +20。
func popularityBonus(votes int) int {
	if votes <= 0 {
		return 0
	}
	b := int(math.Log10(float64(votes)+1) * 5)
	if b > 20 {
		b = 20
	}
	return b
}
