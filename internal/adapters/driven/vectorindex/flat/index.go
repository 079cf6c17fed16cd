// Package flat provides the per-persona vector index: a flat exact
// nearest-neighbour structure over chunk embeddings with an atomic
// snapshot file per persona. It mirrors a flat L2 index: no native
// deletion, rebuilds happen by Reset and re-add.
package flat

import (
	"fmt"
	"sort"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Index is a flat exact-search vector index. Vectors are kept in
// insertion order; searches scan all of them. It is not safe for
// concurrent use on its own; the Provider serialises access.
type Index struct {
	dim  int
	ids  []string
	vecs [][]float32
}

// NewIndex creates an empty index. The dimension is fixed by the
// first vector added or restored.
func NewIndex() *Index {
	return &Index{}
}

// Add inserts a vector for the given chunk ID.
func (ix *Index) Add(chunkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("flat: empty embedding for chunk %s", chunkID)
	}
	if ix.dim == 0 {
		ix.dim = len(embedding)
	}
	if len(embedding) != ix.dim {
		return fmt.Errorf("flat: dimension mismatch: index %d, vector %d", ix.dim, len(embedding))
	}
	ix.ids = append(ix.ids, chunkID)
	ix.vecs = append(ix.vecs, embedding)
	return nil
}

// Search returns up to k nearest neighbours by squared L2 distance,
// ascending. Equal distances keep insertion order.
func (ix *Index) Search(query []float32, k int) []driven.VectorHit {
	if k <= 0 || len(ix.ids) == 0 {
		return nil
	}

	hits := make([]driven.VectorHit, len(ix.ids))
	for i, vec := range ix.vecs {
		hits[i] = driven.VectorHit{ChunkID: ix.ids[i], Distance: squaredL2(query, vec)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// IsEmpty reports whether the index holds no vectors.
func (ix *Index) IsEmpty() bool {
	return len(ix.ids) == 0
}

// Reset discards all vectors and the fixed dimension.
func (ix *Index) Reset() {
	ix.dim = 0
	ix.ids = nil
	ix.vecs = nil
}

// squaredL2 computes the squared Euclidean distance. Extra components
// of the longer vector are ignored.
func squaredL2(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
