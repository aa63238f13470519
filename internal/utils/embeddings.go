package utils

import (
	"errors"
	"math"
	"sort"
)

var (
	ErrEmptyVector       = errors.New("vectors cannot be empty")
	ErrDimensionMismatch = errors.New("vectors must have the same dimension")
)

// CosineSimilarity returns the cosine of the angle between a and b. A zero
// vector has similarity 0 with everything.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyVector
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, sumA, sumB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		sumA += float64(a[i]) * float64(a[i])
		sumB += float64(b[i]) * float64(b[i])
	}
	if sumA == 0 || sumB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(sumA) * math.Sqrt(sumB))), nil
}

type Scored struct {
	Index int
	Score float32
}

// RankBySimilarity orders candidates by similarity to query, most similar
// first. Candidates that cannot be compared (missing or mismatched
// embeddings) are kept after the scored ones in their original order.
func RankBySimilarity(query []float32, candidates [][]float32) []Scored {
	scored := make([]Scored, 0, len(candidates))
	var unscored []Scored
	for i, c := range candidates {
		s, err := CosineSimilarity(query, c)
		if err != nil {
			unscored = append(unscored, Scored{Index: i})
			continue
		}
		scored = append(scored, Scored{Index: i, Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return append(scored, unscored...)
}
