package srs

// Params defines all configurable parameters for the SM-2 scheduling
// algorithm.
type Params struct {
	// Ease factor limits. MinEaseFactor is the classic SM-2 floor of 1.3;
	// MaxEaseFactor caps growth for Easy-heavy grading runs.
	MinEaseFactor float64
	MaxEaseFactor float64

	// Fixed intervals for the first two qualifying repetitions, in days.
	FirstInterval  int
	SecondInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the corresponding default.
type ParamsConfig struct {
	MinEaseFactor  float64
	MaxEaseFactor  float64
	FirstInterval  int
	SecondInterval int
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// values: a 1.3 ease floor and 1/6 day intervals for the first two
// repetitions.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  1.3,
		MaxEaseFactor:  2.5,
		FirstInterval:  1,
		SecondInterval: 6,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}

	return params
}
