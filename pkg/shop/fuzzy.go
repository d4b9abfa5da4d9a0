package shop

// matchCutoff is the minimum edit similarity for an approximate match.
const matchCutoff = 0.6

// Resolve maps a free-text product name to a catalog entry. The query is
// normalized (trimmed, lowercased) and matched exactly first; failing that,
// the catalog key with the highest edit similarity wins, provided it clears
// the cutoff. Ties keep the key encountered first in catalog order.
func (c *Catalog) Resolve(query string) (string, Product, bool) {
	q := normalizeKey(query)
	if q == "" {
		return "", Product{}, false
	}

	if p, ok := c.products[q]; ok {
		return q, p, true
	}

	bestKey := ""
	bestScore := 0.0
	for _, key := range c.keys {
		score := similarity(q, key)
		if score >= matchCutoff && score > bestScore {
			bestKey = key
			bestScore = score
		}
	}
	if bestKey == "" {
		return "", Product{}, false
	}
	return bestKey, c.products[bestKey], true
}

// similarity is a ratio in [0,1] based on Levenshtein edit distance:
// 1 - distance/max(len(a), len(b)).
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	rows := len(s1) + 1
	cols := len(s2) + 1
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[rows-1][cols-1]
}
