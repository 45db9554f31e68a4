package propbench

import (
	"fmt"
)

// Comparator selects the direction of a threshold comparison.
type Comparator string

const (
	// Greater satisfies samples strictly above the threshold.
	Greater Comparator = ">"
	// Less satisfies samples strictly below the threshold.
	Less Comparator = "<"
)

// Compare reports whether value satisfies the comparison against bound.
func (c Comparator) Compare(value, bound float64) (bool, error) {
	switch c {
	case Greater:
		return value > bound, nil
	case Less:
		return value < bound, nil
	default:
		return false, fmt.Errorf("%w: comparator must be %q or %q, got %q",
			ErrValidation, Greater, Less, c)
	}
}

// HighThresholdOutcome reports the verdict implied by raising the bound
// arbitrarily high: a greater-than comparison eventually rejects every
// sample (false), a less-than comparison eventually accepts every sample
// (true).
func (c Comparator) HighThresholdOutcome() bool {
	return c == Less
}

// Threshold is the movable bound shared by the single-bound property
// variants: a comparison direction plus an optional numeric value. The zero
// value is unset; Satisfied fails with ErrThresholdUnset until SetThreshold
// is called. During an interval search the search driver owns the bound and
// moves it between engine runs.
type Threshold struct {
	Cmp   Comparator
	value float64
	set   bool
}

// NewThreshold returns an unset bound with the given direction.
func NewThreshold(cmp Comparator) Threshold {
	return Threshold{Cmp: cmp}
}

// SetThreshold replaces the bound's numeric value.
func (t *Threshold) SetThreshold(v float64) {
	t.value = v
	t.set = true
}

// Satisfied compares one sample against the current bound.
func (t *Threshold) Satisfied(sample float64) (bool, error) {
	if !t.set {
		return false, fmt.Errorf(
			"%w: call SetThreshold before checking samples (the interval search sets it for you)",
			ErrThresholdUnset)
	}
	return t.Cmp.Compare(sample, t.value)
}

// HighThresholdOutcome derives the search goal direction from the comparator.
func (t *Threshold) HighThresholdOutcome() bool {
	return t.Cmp.HighThresholdOutcome()
}

// ThresholdProperty checks a flat numeric series sample by sample against a
// single movable bound. It is the plainest property variant: one measured
// value per satisfaction check.
//
// The data source is a []float64 with at least one element. Extraction
// walks the slice front to back, returning subslice views and never
// mutating the caller's buffer, so several searches can start from the same
// series.
type ThresholdProperty struct {
	Threshold
}

var _ SearchableProperty[[]float64, float64] = (*ThresholdProperty)(nil)

// NewThresholdProperty returns a property with the given comparison
// direction and no bound set. Call SetThreshold before direct engine runs;
// the interval search sets the bound itself.
func NewThresholdProperty(cmp Comparator) *ThresholdProperty {
	return &ThresholdProperty{Threshold: NewThreshold(cmp)}
}

// VerifyData requires a non-empty series.
func (p *ThresholdProperty) VerifyData(data []float64) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: need a non-empty numeric series", ErrDataFormat)
	}
	return nil
}

// ExtractValue pops the next sample and returns the rest of the series.
func (p *ThresholdProperty) ExtractValue(data []float64) (float64, []float64, error) {
	if len(data) == 0 {
		return 0, nil, ErrOutOfData
	}
	return data[0], data[1:], nil
}

// CheckSampleSatisfy compares one sample against the bound.
func (p *ThresholdProperty) CheckSampleSatisfy(value float64) (bool, error) {
	return p.Satisfied(value)
}

// StartPointEstimate returns the empirical (1-proportion)-quantile of the
// series: for a greater-than property, the bound that roughly a proportion
// of the samples exceed.
func (p *ThresholdProperty) StartPointEstimate(data []float64, proportion float64) (float64, error) {
	if err := p.VerifyData(data); err != nil {
		return 0, err
	}
	return empiricalQuantile(1-proportion, data), nil
}
