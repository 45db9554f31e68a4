package propbench

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrValidation wraps failures of call-time parameter checks: probabilities
// outside [0,1], non-positive granularity, malformed comparators. Surfaced
// immediately, never retried.
var ErrValidation = errors.New("invalid parameter")

// Verdict is the outcome of one sequential test.
type Verdict string

const (
	VerdictTrue         Verdict = "TRUE"         // satisfied proportion exceeds the target, at the requested confidence
	VerdictFalse        Verdict = "FALSE"        // satisfied proportion does not exceed the target, at the requested confidence
	VerdictInconclusive Verdict = "INCONCLUSIVE" // data ran out before the confidence target was reached
)

// Conclusive reports whether the verdict decided the property either way.
func (v Verdict) Conclusive() bool {
	return v == VerdictTrue || v == VerdictFalse
}

// verdictOf converts a provisional lean into a final verdict.
func verdictOf(lean bool) Verdict {
	if lean {
		return VerdictTrue
	}
	return VerdictFalse
}

// TestConfig controls one sequential test.
type TestConfig struct {
	Proportion float64 // satisfied-proportion the population must exceed, in [0,1]
	Confidence float64 // statistical confidence to reach before stopping, in [0,1]
	Continuous bool    // keep consuming after the target is reached, for comparable runs
}

// DefaultTestConfig returns the conventional 90/90 test: at least 90% of
// samples satisfy, decided to 90% confidence.
func DefaultTestConfig() TestConfig {
	return TestConfig{Proportion: 0.9, Confidence: 0.9}
}

// SMCResult is the immutable outcome of one sequential test run.
type SMCResult struct {
	Verdict         Verdict
	Confidence      float64   // exact confidence reached when the run stopped
	Trials          int       // samples consumed by completed checks
	SatisfiedTrials int       // how many of them satisfied the property
	ConfidenceTrace []float64 // confidence after each trial
	LeanTrace       []bool    // provisional verdict after each trial
}

// SatisfiedFraction returns the observed satisfied proportion p̂.
func (r SMCResult) SatisfiedFraction() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.SatisfiedTrials) / float64(r.Trials)
}

// String renders a one-line summary of the run.
func (r SMCResult) String() string {
	return fmt.Sprintf("%s (confidence %.4f, %d/%d trials satisfied)",
		r.Verdict, r.Confidence, r.SatisfiedTrials, r.Trials)
}

// RunSequentialTest decides whether the proportion of samples satisfying
// prop exceeds cfg.Proportion, to confidence cfg.Confidence, consuming as
// few samples as the exact bound allows.
//
// Each iteration extracts one sample, checks it, and recomputes an exact
// Clopper–Pearson confidence for the sub-interval on the far side of the
// observed proportion p̂ = satisfied/n: (a,b) = (0, Proportion) when
// p̂ < Proportion, else (Proportion, 1). With s = satisfied:
//
//	s = 0: conf = (1-a)^n - (1-b)^n
//	s = n: conf = b^n - a^n
//	else:  conf = BetaCDF(b; s+1, n-s) - BetaCDF(a; s, n-s+1)
//
// The run stops as soon as conf reaches cfg.Confidence, unless
// cfg.Continuous is set, in which case it consumes the whole source so that
// repeated runs at different thresholds judge an identical sample prefix.
// If the source runs out first, the verdict is VerdictInconclusive when the
// target was never reached and the final lean otherwise.
//
// The verdict error is bounded by 1 - Confidence by construction of the
// exact bound, not by a pre-fixed sample count: sampling stops the moment
// stopping is statistically justified.
func RunSequentialTest[D, V any](data D, prop Property[D, V], cfg TestConfig) (SMCResult, error) {
	if err := prop.VerifyData(data); err != nil {
		return SMCResult{}, err
	}
	if err := validateProbability("Proportion", cfg.Proportion); err != nil {
		return SMCResult{}, err
	}
	if err := validateProbability("Confidence", cfg.Confidence); err != nil {
		return SMCResult{}, err
	}

	var (
		trials    int
		satisfied int
		conf      float64
		confTrace []float64
		leanTrace []bool
		lean      bool
	)

	rest := data
sampling:
	for cfg.Continuous || conf < cfg.Confidence {
		var sat bool
		// Consume samples until the check reaches a determinate outcome.
		for {
			value, next, err := prop.ExtractValue(rest)
			if errors.Is(err, ErrOutOfData) {
				break sampling
			}
			if err != nil {
				return SMCResult{}, err
			}
			rest = next
			sat, err = prop.CheckSampleSatisfy(value)
			if errors.Is(err, ErrUndetermined) {
				continue
			}
			if err != nil {
				return SMCResult{}, err
			}
			break
		}

		trials++
		if sat {
			satisfied++
		}
		conf = clopperPearson(satisfied, trials, cfg.Proportion)
		lean = float64(satisfied)/float64(trials) > cfg.Proportion
		confTrace = append(confTrace, conf)
		leanTrace = append(leanTrace, lean)
	}

	verdict := VerdictInconclusive
	if trials > 0 && conf >= cfg.Confidence {
		verdict = verdictOf(lean)
	}
	return SMCResult{
		Verdict:         verdict,
		Confidence:      conf,
		Trials:          trials,
		SatisfiedTrials: satisfied,
		ConfidenceTrace: confTrace,
		LeanTrace:       leanTrace,
	}, nil
}

// clopperPearson computes the exact confidence that the true satisfied
// proportion lies in the sub-interval (a, b) on the far side of the
// observed proportion. Closed forms cover the unanimous cases, where the
// beta parameters would degenerate.
func clopperPearson(satisfied, trials int, proportion float64) float64 {
	a, b := 0.0, proportion
	if float64(satisfied)/float64(trials) >= proportion {
		a, b = proportion, 1
	}
	n := float64(trials)
	s := float64(satisfied)
	switch satisfied {
	case 0:
		return math.Pow(1-a, n) - math.Pow(1-b, n)
	case trials:
		return math.Pow(b, n) - math.Pow(a, n)
	default:
		upper := distuv.Beta{Alpha: s + 1, Beta: n - s}
		lower := distuv.Beta{Alpha: s, Beta: n - s + 1}
		return upper.CDF(b) - lower.CDF(a)
	}
}

// MinSamples returns the fewest trials that let a unanimous run of samples
// reach the requested confidence whichever way the samples lean. A run of
// n unsatisfied samples reaches conf = 1-(1-p)^n and a run of n satisfied
// samples reaches conf = 1-p^n, so the bound is the smallest n with both
//
//	n ≥ ln(1-confidence) / ln(1-proportion)
//	n ≥ ln(1-confidence) / ln(proportion)
//
// A source smaller than this can run dry before the slower of the two
// verdicts becomes reachable, so use it as a data-sufficiency check before
// measuring.
func MinSamples(proportion, confidence float64) (int, error) {
	if math.IsNaN(proportion) || proportion <= 0 || proportion >= 1 {
		return 0, fmt.Errorf("%w: Proportion %v must be strictly inside (0, 1) for a sample bound",
			ErrValidation, proportion)
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence >= 1 {
		return 0, fmt.Errorf("%w: Confidence %v must be in [0, 1) for a sample bound",
			ErrValidation, confidence)
	}
	target := math.Log(1 - confidence)
	nUnsatisfied := target / math.Log(1-proportion)
	nSatisfied := target / math.Log(proportion)
	return int(math.Ceil(math.Max(nUnsatisfied, nSatisfied))), nil
}

// validateProbability range-checks a probability-valued parameter.
func validateProbability(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %v outside [0, 1]", ErrValidation, name, v)
	}
	return nil
}
