package vectorindex

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeVector_RoundTrip(t *testing.T) {
	in := []float32{0.25, -1, 3.5}

	blob, err := EncodeVector(in)
	require.NoError(t, err)
	assert.Len(t, blob, 4+3*4)

	out, err := DecodeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{2, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSimilarityScore_MonotonicInRange(t *testing.T) {
	assert.Equal(t, 1.0, SimilarityScore(0))
	assert.InDelta(t, 0.5, SimilarityScore(1), 1e-12)
	assert.InDelta(t, 1.0/3.0, SimilarityScore(2), 1e-12)

	prev := math.Inf(1)
	for d := 0.0; d <= 2.0; d += 0.1 {
		s := SimilarityScore(d)
		assert.Greater(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.Less(t, s, prev)
		prev = s
	}
}

// --- ERROR PATH TESTS ---

func TestEncodeVector_Empty_ReturnsError(t *testing.T) {
	_, err := EncodeVector(nil)
	assert.Error(t, err)
}

func TestEncodeVector_NaN_ReturnsError(t *testing.T) {
	_, err := EncodeVector([]float32{float32(math.NaN())})
	assert.Error(t, err)
}

func TestDecodeVector_Truncated_ReturnsError(t *testing.T) {
	blob, err := EncodeVector([]float32{1, 2})
	require.NoError(t, err)

	_, err = DecodeVector(blob[:len(blob)-1])
	assert.Error(t, err)
}

func TestDecodeVector_NonFiniteValue_ReturnsError(t *testing.T) {
	blob, err := EncodeVector([]float32{1, 2})
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(blob[8:12], math.Float32bits(float32(math.Inf(1))))

	_, err = DecodeVector(blob)
	assert.ErrorContains(t, err, "invalid value at index 1")
}

func TestDecodeVector_ZeroDimension_ReturnsError(t *testing.T) {
	_, err := DecodeVector([]byte{0, 0, 0, 0})
	assert.ErrorContains(t, err, "invalid vector dimension")
}

func TestDecodeVector_HugeDimensionHeader_ReturnsError(t *testing.T) {
	blob := make([]byte, 8)
	binary.LittleEndian.PutUint32(blob[:4], math.MaxUint32)

	_, err := DecodeVector(blob)
	assert.Error(t, err)
}

func TestCosineDistance_DimensionMismatch_ReturnsError(t *testing.T) {
	_, err := CosineDistance([]float32{1}, []float32{1, 2})
	assert.Error(t, err)
}
