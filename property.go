package propbench

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrOutOfData signals that a data source has no further complete unit
	// to extract. It plays the role io.EOF plays for readers: the sequential
	// engine consumes it as the end-of-stream condition and never returns it
	// to callers.
	ErrOutOfData = errors.New("out of data")

	// ErrUndetermined signals that a satisfaction check cannot decide from
	// the sample it was given. The sequential engine reacts by extracting
	// the next sample and re-checking, without counting a trial. None of the
	// shipped property variants return it; the sentinel exists so future
	// variants can ask for another sample.
	ErrUndetermined = errors.New("sample undetermined")

	// ErrThresholdUnset is returned by satisfaction checks invoked before
	// the property's threshold (or pair of thresholds) has been set.
	ErrThresholdUnset = errors.New("threshold not set")

	// ErrDataFormat wraps VerifyData failures: the data source does not have
	// the shape the property variant expects.
	ErrDataFormat = errors.New("malformed data")
)

// Property is the capability contract a measurement type implements so the
// sequential engine and the interval search can consume its samples without
// knowing how they are parsed.
//
// D is the data-source type the property reads: a flat series, a pair of
// series, a tagged event trace. V is the value one satisfaction check
// consumes: a single number for plain threshold properties, a pair for
// ratio or implication properties, a value list for recurrence properties.
//
// The engine calls the operations in a fixed order: VerifyData once, then
// ExtractValue and CheckSampleSatisfy in a loop until the data runs out or
// the confidence target is reached. StartPointEstimate and
// HighThresholdOutcome serve the interval search only.
type Property[D, V any] interface {
	// VerifyData reports whether the source matches the shape this variant
	// expects. Failures wrap ErrDataFormat. Runs once, before sampling.
	VerifyData(data D) error

	// ExtractValue pops the next complete unit and returns the remaining
	// view of the source. The input is never mutated; callers continue from
	// rest. Returns ErrOutOfData when no further complete unit exists,
	// including when a unit needs several paired events and only a partial
	// group remains.
	ExtractValue(data D) (value V, rest D, err error)

	// CheckSampleSatisfy evaluates one extracted value against the current
	// threshold(s). Pure: no data access, no state changes. Returns
	// ErrThresholdUnset when called before thresholds are configured, and
	// may return ErrUndetermined to request another sample.
	CheckSampleSatisfy(value V) (bool, error)

	// StartPointEstimate returns a cheap quantile-style guess of where the
	// property's verdict boundary lies, used only to seed the interval
	// search. proportion is the search's target satisfied-proportion; it
	// does not need to be consistent with the reduction ExtractValue
	// performs, just close enough to keep the search short.
	StartPointEstimate(data D, proportion float64) (float64, error)

	// HighThresholdOutcome reports the verdict an arbitrarily high threshold
	// setting would produce: false for greater-than comparisons, true for
	// less-than. The interval search derives its directional goal verdicts
	// from it.
	HighThresholdOutcome() bool
}

// SearchableProperty is a Property whose threshold the interval search can
// move between engine runs. Variants with a single movable bound implement
// it; the dual-threshold variants (band containment, conditional
// implication) deliberately do not, which keeps them out of
// RunIntervalSearch at compile time instead of failing mid-search.
type SearchableProperty[D, V any] interface {
	Property[D, V]

	// SetThreshold replaces the current bound. The interval search calls it
	// once per tested threshold; a property instance must not be shared by
	// concurrently running searches.
	SetThreshold(threshold float64)
}

// empiricalQuantile returns the q-quantile of values under the empirical
// CDF. gonum's stat.Quantile requires sorted input, so it sorts a copy.
// Callers guarantee values is non-empty.
func empiricalQuantile(q float64, values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}
