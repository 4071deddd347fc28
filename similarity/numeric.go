package similarity

import "math"

// NumericTolerance config, shaped after the Config/Metrics split in
// other_examples/jamesainslie-go-sat__metrics.go (tolerance-windowed
// boundary matching): instead of a hit/miss tolerance window, Stickler
// needs a continuous [0,1] score, so the window is used as the distance
// at which similarity decays to zero rather than as a hard cutoff.
type ToleranceConfig struct {
	// Absolute is the absolute difference at which similarity reaches 0.
	// Zero means "use Relative instead".
	Absolute float64
	// Relative is the fraction of max(|gt|,|pred|) at which similarity
	// reaches 0. Used when Absolute is zero. Zero Relative with zero
	// Absolute falls back to a 1e-9 default tolerance (treats the pair
	// as equal only when numerically indistinguishable).
	Relative float64
}

// DefaultToleranceConfig matches common ML-extraction evaluation practice:
// scores decay to 0 over a 1% relative band.
func DefaultToleranceConfig() ToleranceConfig {
	return ToleranceConfig{Relative: 0.01}
}

// NewNumericTolerance builds a Func per §4.5 ("Numeric tolerance
// comparators MAY accept absolute/relative tolerance from their own
// configuration; the engine does not interpret them"). Non-numeric input
// on either side is a type mismatch (§4.4) and scores 0.0.
func NewNumericTolerance(cfg ToleranceConfig) Func {
	return func(gt, pred any) (float64, error) {
		gf, gok := asFloat(gt)
		pf, pok := asFloat(pred)
		if !gok || !pok {
			return 0.0, nil
		}
		diff := math.Abs(gf - pf)
		if diff == 0 {
			return 1.0, nil
		}
		window := cfg.Absolute
		if window <= 0 {
			rel := cfg.Relative
			if rel <= 0 {
				return boolToScore(diff < 1e-9), nil
			}
			base := math.Max(math.Abs(gf), math.Abs(pf))
			if base == 0 {
				base = 1
			}
			window = rel * base
		}
		if window <= 0 {
			return boolToScore(diff == 0), nil
		}
		score := 1 - diff/window
		if score < 0 {
			score = 0
		}
		return score, nil
	}
}

// NumericTolerance is the default numeric comparator (§4.3), using
// DefaultToleranceConfig.
var NumericTolerance = NewNumericTolerance(DefaultToleranceConfig())

func boolToScore(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
