package propbench

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrSearchExhausted wraps interval searches that hit IterationLimit before
// a direction reached its goal verdict, which almost always means the data
// cannot support the requested confidence.
var ErrSearchExhausted = errors.New("search exhausted")

// defaultIterationLimit caps each search direction when SearchConfig leaves
// IterationLimit unset.
const defaultIterationLimit = 1000

// SearchConfig controls one interval search.
type SearchConfig struct {
	Proportion     float64 // satisfied-proportion target handed to each sequential test, in [0,1]
	Confidence     float64 // confidence target handed to each sequential test, in [0,1]
	IterationLimit int     // max engine runs per search direction; <= 0 means 1000
	Granularity    float64 // threshold step; 0 derives one from the start point magnitude
	StartPoint     float64 // first threshold to probe; NaN asks the property for an estimate
}

// DefaultSearchConfig returns a 90/90 search that estimates its own start
// point and step size.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Proportion:     0.9,
		Confidence:     0.9,
		IterationLimit: defaultIterationLimit,
		StartPoint:     math.NaN(),
	}
}

// ConfidenceInterval brackets the threshold at which the property's verdict
// flips. The critical value lies between Low and High at the confidence the
// search was run with.
type ConfidenceInterval struct {
	Low  float64
	High float64
}

// Contains reports whether v lies within the interval, endpoints included.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return ci.Low <= v && v <= ci.High
}

// Width returns the spread between the bracketing thresholds.
func (ci ConfidenceInterval) Width() float64 {
	return ci.High - ci.Low
}

// String renders the interval as [low, high].
func (ci ConfidenceInterval) String() string {
	return fmt.Sprintf("[%g, %g]", ci.Low, ci.High)
}

// ThresholdResult pairs one probed threshold with the engine run it produced.
type ThresholdResult struct {
	Threshold float64
	Result    SMCResult
}

// SPAResult is the immutable outcome of an interval search: every engine
// run made, sorted by threshold, and the bracketing interval they pin down.
type SPAResult struct {
	Interval ConfidenceInterval
	Results  []ThresholdResult
}

// At returns the engine run recorded for the given threshold.
func (r SPAResult) At(threshold float64) (SMCResult, bool) {
	for _, tr := range r.Results {
		if tr.Threshold == threshold {
			return tr.Result, true
		}
	}
	return SMCResult{}, false
}

// RunIntervalSearch locates the critical threshold of prop over data: the
// value at which the sequential test's verdict flips. It probes thresholds
// in both directions from a start point, one granularity step at a time,
// running the engine in continuous mode at each so every probe judges the
// identical sample prefix.
//
// The upward sweep stops at the verdict a high threshold produces for this
// property, the downward sweep at its negation, and the tightest pair of
// opposing thresholds becomes the returned interval. Every engine run made
// along the way is kept in Results, sorted by threshold, so callers can
// inspect how confident each probe was.
//
// The start point falls back to prop.StartPointEstimate when
// cfg.StartPoint is NaN, and the step to a power of ten three orders below
// the start point when cfg.Granularity is 0. A direction that reaches
// cfg.IterationLimit without its goal verdict aborts the whole search with
// ErrSearchExhausted.
func RunIntervalSearch[D, V any](data D, prop SearchableProperty[D, V], cfg SearchConfig) (SPAResult, error) {
	if err := prop.VerifyData(data); err != nil {
		return SPAResult{}, err
	}
	if err := validateProbability("Proportion", cfg.Proportion); err != nil {
		return SPAResult{}, err
	}
	if err := validateProbability("Confidence", cfg.Confidence); err != nil {
		return SPAResult{}, err
	}
	if math.IsNaN(cfg.Granularity) || cfg.Granularity < 0 || math.IsInf(cfg.Granularity, 1) {
		return SPAResult{}, fmt.Errorf("%w: Granularity %v must be a finite step > 0, or 0 to derive one from the start point",
			ErrValidation, cfg.Granularity)
	}
	limit := cfg.IterationLimit
	if limit <= 0 {
		limit = defaultIterationLimit
	}

	start := cfg.StartPoint
	if math.IsNaN(start) {
		var err error
		start, err = prop.StartPointEstimate(data, cfg.Proportion)
		if err != nil {
			return SPAResult{}, err
		}
	}
	if math.IsNaN(start) || math.IsInf(start, 0) {
		return SPAResult{}, fmt.Errorf("%w: start point %v is not a usable threshold\n"+
			"  Action: supply a finite StartPoint", ErrValidation, start)
	}

	gran := cfg.Granularity
	if gran == 0 {
		gran = deriveGranularity(start)
		if gran == 0 || math.IsNaN(gran) || math.IsInf(gran, 0) {
			return SPAResult{}, fmt.Errorf("%w: cannot derive a search step from start point %g\n"+
				"  Action: set Granularity explicitly", ErrValidation, start)
		}
	}

	tc := TestConfig{Proportion: cfg.Proportion, Confidence: cfg.Confidence, Continuous: true}
	goalUp := verdictOf(prop.HighThresholdOutcome())
	goalDown := verdictOf(!prop.HighThresholdOutcome())

	up, err := linearSearch(data, prop, tc, roundTo(start, gran), gran, goalUp, limit)
	if err != nil {
		return SPAResult{}, err
	}
	down, err := linearSearch(data, prop, tc, roundTo(start-gran, gran), -gran, goalDown, limit)
	if err != nil {
		return SPAResult{}, err
	}

	results := append(up, down...)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Threshold < results[j].Threshold
	})
	return SPAResult{
		Interval: bracketInterval(results, goalUp, goalDown),
		Results:  results,
	}, nil
}

// linearSearch runs the engine at successive thresholds, stepping from the
// given one, until a run returns the goal verdict. It returns every run
// made, goal included, or ErrSearchExhausted after limit runs.
func linearSearch[D, V any](data D, prop SearchableProperty[D, V], tc TestConfig,
	from, step float64, goal Verdict, limit int) ([]ThresholdResult, error) {

	var results []ThresholdResult
	threshold := from
	for i := 0; i < limit; i++ {
		prop.SetThreshold(threshold)
		res, err := RunSequentialTest(data, prop, tc)
		if err != nil {
			return nil, err
		}
		results = append(results, ThresholdResult{Threshold: threshold, Result: res})
		if res.Verdict == goal {
			return results, nil
		}
		threshold = roundTo(threshold+step, step)
	}
	return nil, fmt.Errorf("%w: no %s verdict within %d thresholds stepping %g from %g\n"+
		"  1. Check data sufficiency: compare the sample count against MinSamples\n"+
		"  2. Raise IterationLimit\n"+
		"  3. Supply a StartPoint closer to the critical threshold",
		ErrSearchExhausted, goal, limit, step, from)
}

// bracketInterval narrows the searched thresholds to the tightest pair that
// flips the verdict: the highest threshold still deciding like the low side
// and the lowest threshold deciding like the high side.
func bracketInterval(results []ThresholdResult, goalUp, goalDown Verdict) ConfidenceInterval {
	low, high := math.Inf(-1), math.Inf(1)
	for _, r := range results {
		switch r.Result.Verdict {
		case goalDown:
			low = math.Max(low, r.Threshold)
		case goalUp:
			high = math.Min(high, r.Threshold)
		}
	}
	return ConfidenceInterval{Low: low, High: high}
}

// deriveGranularity picks a threshold step three orders of magnitude below
// the start point, snapped to a power of ten.
func deriveGranularity(start float64) float64 {
	return math.Pow(10, math.Ceil(math.Log10(math.Abs(start)/1000)))
}

// roundTo snaps v onto the grid of multiples of granularity.
func roundTo(v, granularity float64) float64 {
	return math.Round(v/granularity) * granularity
}
