// Package opt provides benchmarks for optimizers.
package opt

import (
	"math/rand"
	"testing"
)

// fillRandom fills a slice with random values.
func fillRandom(slice []float64) {
	for i := range slice {
		slice[i] = rand.Float64()
	}
}

func benchParams(n int) []Param {
	p := Param{Value: make([]float64, n), Grad: make([]float64, n)}
	fillRandom(p.Value)
	fillRandom(p.Grad)
	return []Param{p}
}

// BenchmarkSGDStep benchmarks SGD Step method.
func BenchmarkSGDStep(b *testing.B) {
	sgd := NewSGD(benchParams(1000), 0.01)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sgd.Step()
	}
}

// BenchmarkAdamStep benchmarks Adam Step over a layer-sized parameter.
func BenchmarkAdamStep(b *testing.B) {
	adam := NewAdam(benchParams(784*256), 0.001)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		adam.Step()
	}
}
