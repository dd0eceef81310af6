package gaussian

// Config carries the tunable constants of the validation engine.
// Every validator takes a Config explicitly so test suites can exercise
// edge cases (tiny bucket thresholds, strict cutoffs) without touching
// process-wide state.
type Config struct {
	// TailCut is the multiple of sigma beyond which the discrete Gaussian's
	// probability mass is truncated to zero.
	TailCut float64 `json:"tail_cut"`
	// ChiSquareBucket is the minimum expected count per bucket for a valid
	// chi-square test. Must be >= 5; 10 is the recommended value.
	ChiSquareBucket int `json:"chi_square_bucket"`
	// MinPValue is the p-value below which a test rejects the null.
	MinPValue float64 `json:"min_p_value"`
}

// DefaultConfig returns the engine defaults: tail cut 14, bucket minimum 10,
// p-value floor 0.001.
func DefaultConfig() Config {
	return Config{
		TailCut:         14,
		ChiSquareBucket: 10,
		MinPValue:       0.001,
	}
}
