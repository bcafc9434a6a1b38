package myrand

import "math/rand"

type Rander interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

type RealRander struct{}

func (r RealRander) Intn(n int) int {
	return rand.Intn(n)
}

func (r RealRander) Float64() float64 {
	return rand.Float64()
}

// FixedRander always returns the configured values so tests are deterministic.
type FixedRander struct {
	IntnValue    int
	Float64Value float64
}

func (r FixedRander) Intn(n int) int {
	if r.IntnValue >= n {
		return n - 1
	}
	return r.IntnValue
}

func (r FixedRander) Float64() float64 {
	return r.Float64Value
}
