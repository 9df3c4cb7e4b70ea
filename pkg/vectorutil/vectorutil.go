// Package vectorutil packs and scores the float32 embedding vectors stored
// as raw bytes in the doc:{doc_id} hash's embedding field.
package vectorutil

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PackFloat32 serializes a vector as little-endian float32 bytes, the wire
// format embeddings are stored and transmitted in.
func PackFloat32(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// UnpackFloat32 is the exact inverse of PackFloat32: PackFloat32(UnpackFloat32(b)) == b
// for any b whose length is divisible by 4.
func UnpackFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vectorutil: byte length %d not divisible by 4", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// NormalizeEmbedding truncates vec to exactly dim entries. A length
// below dim is a deficit that callers must treat as fatal, since there
// is no principled way to synthesize the missing components.
func NormalizeEmbedding(vec []float32, dim int) ([]float32, error) {
	if len(vec) < dim {
		return nil, fmt.Errorf("vectorutil: embedding dimension deficit: got %d, need %d", len(vec), dim)
	}
	return vec[:dim], nil
}

// CosineSimilarity computes the cosine similarity of a and b. Vectors of
// mismatched length are treated as dissimilar (0) rather than erroring,
// since callers in hybrid scoring skip dim-mismatched candidates anyway.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
