// Package search 实现纯函数式的模糊搜索排序：归一化、分词相似度、
// 有界编辑距离、热度加权，以及排序结果过稀时的兜底匹配。
// 所有入口都是可重入的纯函数，无共享可变状态，可从任意 goroutine 并发调用。
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain 去掉变音符号：NFKD 分解后剔除 Mn（组合记号），再组合回 NFC。
var foldChain = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize 把标题/查询词归一化：Unicode 折叠大小写与变音符号，
// 非字母数字的连续段压成单个空格，去掉首尾空白。
func Normalize(s string) string {
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// stopwords 是英文功能词的封闭清单，分词时剔除。
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"is": {}, "it": {}, "its": {}, "by": {}, "as": {}, "be": {},
	"was": {}, "are": {}, "from": {},
}

// Tokenize 对归一化后的字符串按空格分词并剔除停用词。
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// stripStopwords 返回剔除停用词后重新拼接的查询串；全是停用词时返回空串。
func stripStopwords(s string) string {
	return strings.Join(Tokenize(s), " ")
}

// disambiguations 是极小的标题消歧例外表。
// 这是 app 专属的补丁清单而不是通用机制：个别标题在目录里带地区后缀，
// 用户输入的裸标题需要补一个变体才能命中精确匹配。
var disambiguations = map[string][]string{
	"the office": {"the office us"},
	"shameless":  {"shameless us"},
}

// queryVariants 派生查询变体：原查询、去停用词版本、消歧例外。
func queryVariants(qn string) []string {
	out := []string{qn}
	if stripped := stripStopwords(qn); stripped != "" && stripped != qn {
		out = append(out, stripped)
	}
	if extra, ok := disambiguations[qn]; ok {
		out = append(out, extra...)
	}
	return out
}

// yearToken 返回查询中的四位年份 token，不存在时为空串。
func yearToken(qn string) string {
	for _, f := range strings.Fields(qn) {
		if len(f) != 4 {
			continue
		}
		digits := true
		for i := 0; i < 4; i++ {
			if f[i] < '0' || f[i] > '9' {
				digits = false
				break
			}
		}
		if digits {
			return f
		}
	}
	return ""
}
