package ports

import "context"

// SampleSource produces discrete Gaussian samples for validation runs.
// Implementations are the samplers under test (hardware readouts, reference
// implementations, lattice library samplers).
type SampleSource interface {
	// Name identifies the sampler in reports and logs.
	Name() string

	// Univariate draws n integer samples from the sampler configured with
	// the given center and standard deviation.
	Univariate(ctx context.Context, center, sigma float64, n int) ([]int64, error)

	// Multivariate draws n vectors of the given dimension from the sampler
	// configured with standard deviation sigma and center zero.
	Multivariate(ctx context.Context, sigma float64, n, dim int) ([][]float64, error)
}
