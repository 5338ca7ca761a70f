// Package embedding defines the feature vector produced by the embedding model
// and the metric used to compare vectors.
package embedding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch reports vectors of different lengths.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrEmpty reports a vector with no components.
var ErrEmpty = errors.New("empty embedding")

// Vector is a fixed-length embedding. Vectors are never mutated after creation.
type Vector []float32

// Dim returns the dimensionality.
func (v Vector) Dim() int { return len(v) }

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Equal reports bit-identical components.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if math.Float32bits(v[i]) != math.Float32bits(other[i]) {
			return false
		}
	}
	return true
}

// Validate rejects empty vectors, non-finite components and, when want is
// positive, vectors whose length differs from want.
func (v Vector) Validate(want int) error {
	if len(v) == 0 {
		return ErrEmpty
	}
	if want > 0 && len(v) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), want)
	}
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("embedding component %d is not finite", i)
		}
	}
	return nil
}

// Distance returns the Euclidean distance between a and b. Vectors of unequal
// length are infinitely far apart.
func Distance(a, b Vector) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// FromFloat64 narrows a decoded JSON array into a Vector.
func FromFloat64(values []float64) Vector {
	out := make(Vector, len(values))
	for i, x := range values {
		out[i] = float32(x)
	}
	return out
}

// MarshalBinary encodes the vector as little-endian float32 values.
func (v Vector) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf, nil
}

// UnmarshalBinary decodes little-endian float32 values.
func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data)%4 != 0 {
		return fmt.Errorf("embedding blob length %d is not a multiple of 4", len(data))
	}
	out := make(Vector, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	*v = out
	return nil
}
