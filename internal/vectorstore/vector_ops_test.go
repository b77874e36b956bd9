package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorSerializationRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"empty", []float32{}},
		{"single", []float32{3.14}},
		{"typical", []float32{0.1, -0.5, 2.25, 0, 1e-9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := SerializeVector(tt.vector)
			assert.Len(t, blob, len(tt.vector)*4)
			got := DeserializeVector(blob)
			assert.Equal(t, tt.vector, got)
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
		{"dimension mismatch", []float32{1}, []float32{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float32{0.3, 0.7, -0.2}
	scaled := []float32{0.6, 1.4, -0.4}
	assert.InDelta(t, 1.0, CosineSimilarity(a, scaled), 1e-6)
}
