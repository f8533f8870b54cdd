package regression

import (
	"fmt"
	"testing"
)

// BenchmarkFit benchmarks a three-predictor fit across dataset sizes.
func BenchmarkFit(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	spec := Spec{Response: "y", Predictors: []string{"x1", "x2", "x3"}}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Rows_%d", size), func(b *testing.B) {
			ds := linearDataset(b, size, 1, 1)
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := Fit(ds, spec, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
