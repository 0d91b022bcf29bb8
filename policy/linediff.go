package policy

// lineDiff returns an ndiff-style delta between a and b: "- " prefixed
// lines are present only in a, "+ " prefixed lines are present only in b,
// equal runs are omitted. Computed via a classic LCS table, since the
// teacher's set-based Differ has no notion of line order and
// file_contexts diffing needs one (spec.md §4.8).
func lineDiff(a, b []string) []string {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var delta []string
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			delta = append(delta, "- "+a[i])
			i++
		default:
			delta = append(delta, "+ "+b[j])
			j++
		}
	}
	for ; i < n; i++ {
		delta = append(delta, "- "+a[i])
	}
	for ; j < m; j++ {
		delta = append(delta, "+ "+b[j])
	}

	return delta
}
