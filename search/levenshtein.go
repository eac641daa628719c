package search

// boundedDistance 计算限带 Levenshtein 编辑距离。
// 返回值 > maxDist 表示超限（统一返回 maxDist+1），调用方不需要精确值。
//
// 复杂度 O(len(a) × (2×maxDist+1))：每行只计算对角带内的格子，
// 当前行最小值一旦超过上限就提前放弃。
func boundedDistance(a, b string, maxDist int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 || lb == 0 {
		d := la + lb
		if d > maxDist {
			return maxDist + 1
		}
		return d
	}
	// 长度差超过上限时不可能在限内
	if la-lb > maxDist || lb-la > maxDist {
		return maxDist + 1
	}

	const inf = 1 << 30

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		if j <= maxDist {
			prev[j] = j
		} else {
			prev[j] = inf
		}
	}

	for i := 1; i <= la; i++ {
		lo := max(1, i-maxDist)
		hi := min(lb, i+maxDist)

		cur[0] = inf
		if i <= maxDist {
			cur[0] = i
		}
		// 带外边界置为 inf，避免读到上上行的残值
		if lo > 1 {
			cur[lo-1] = inf
		}
		if hi < lb {
			cur[hi+1] = inf
		}

		rowMin := cur[0]
		for j := lo; j <= hi; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			v := min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			cur[j] = v
			if v < rowMin {
				rowMin = v
			}
		}
		if rowMin > maxDist {
			return maxDist + 1 // 提前放弃
		}

		prev, cur = cur, prev
	}

	if prev[lb] > maxDist {
		return maxDist + 1
	}
	return prev[lb]
}
