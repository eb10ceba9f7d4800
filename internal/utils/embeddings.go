package utils

import (
	"errors"
	"math"
)

var (
	ErrEmptyVector       = errors.New("vectors cannot be empty")
	ErrDimensionMismatch = errors.New("vectors must have the same dimension")
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Sums are accumulated in float64. A zero-magnitude vector scores 0.
func CosineSimilarity(vec1, vec2 []float32) (float32, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, ErrEmptyVector
	}
	if len(vec1) != len(vec2) {
		return 0, ErrDimensionMismatch
	}

	var dot, sq1, sq2 float64
	for i := range vec1 {
		a, b := float64(vec1[i]), float64(vec2[i])
		dot += a * b
		sq1 += a * a
		sq2 += b * b
	}
	if sq1 == 0 || sq2 == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(sq1) * math.Sqrt(sq2))), nil
}
