package propbench

import "fmt"

// ThresholdPair is the movable pair of bounds shared by the dual-threshold
// property variants. The zero value is unset; checks fail with
// ErrThresholdUnset until SetThresholds is called. Pair variants are not
// searchable (the interval search moves one bound), so they run only
// through RunSequentialTest.
type ThresholdPair struct {
	first  float64
	second float64
	set    bool
}

// SetThresholds replaces both bounds.
func (t *ThresholdPair) SetThresholds(first, second float64) {
	t.first, t.second = first, second
	t.set = true
}

// thresholds returns both bounds, failing while unset.
func (t *ThresholdPair) thresholds() (first, second float64, err error) {
	if !t.set {
		return 0, 0, fmt.Errorf("%w: call SetThresholds before checking samples",
			ErrThresholdUnset)
	}
	return t.first, t.second, nil
}

// HighThresholdOutcome is false for the pair variants: arbitrarily high
// bounds leave no sample accepted.
func (t *ThresholdPair) HighThresholdOutcome() bool {
	return false
}

// BandProperty checks tagged values against an open interval: a sample
// satisfies when first < value < second. Useful for "stays within
// tolerance" properties, cycle counts that must sit inside an expected
// band. Extraction walks matching events across the whole trace, one event
// per check.
type BandProperty struct {
	ThresholdPair
	Tag string // event marker carrying the checked values
}

var _ Property[Trace, float64] = (*BandProperty)(nil)

// NewBandProperty returns a band property over the given marker with no
// bounds set.
func NewBandProperty(tag string) *BandProperty {
	return &BandProperty{Tag: tag}
}

// VerifyData requires at least one matching event.
func (p *BandProperty) VerifyData(data Trace) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty trace", ErrDataFormat)
	}
	if _, ok := data.firstTag(p.Tag); !ok {
		return fmt.Errorf("%w: trace has no %q events", ErrDataFormat, p.Tag)
	}
	return nil
}

// ExtractValue pops the next matching event's value.
func (p *BandProperty) ExtractValue(data Trace) (float64, Trace, error) {
	for i, ev := range data {
		if ev.Tag == p.Tag {
			return ev.Value, data[i+1:], nil
		}
	}
	return 0, nil, ErrOutOfData
}

// CheckSampleSatisfy reports whether the value lies strictly inside the
// band.
func (p *BandProperty) CheckSampleSatisfy(value float64) (bool, error) {
	lo, hi, err := p.thresholds()
	if err != nil {
		return false, err
	}
	return value > lo && value < hi, nil
}

// StartPointEstimate returns the empirical (1-proportion)-quantile of the
// matching values.
func (p *BandProperty) StartPointEstimate(data Trace, proportion float64) (float64, error) {
	if err := p.VerifyData(data); err != nil {
		return 0, err
	}
	return empiricalQuantile(1-proportion, data.tagValues(p.Tag)), nil
}

// ConditionalProperty checks a per-run conditional response: when the run's
// trigger value exceeds the first bound, its response value must exceed the
// second. Each run contributes the pair (first trigger value, first
// response value). A run whose trigger stays at or below the first bound
// counts as unsatisfied, so the property measures how often the conditional
// response actually occurs rather than treating an idle trigger as vacuous
// success.
type ConditionalProperty struct {
	ThresholdPair
	TriggerTag  string // event whose value arms the condition
	ResponseTag string // event whose value must respond
}

var _ Property[Trace, [2]float64] = (*ConditionalProperty)(nil)

// NewConditionalProperty returns a conditional property over the given
// markers with no bounds set.
func NewConditionalProperty(triggerTag, responseTag string) *ConditionalProperty {
	return &ConditionalProperty{TriggerTag: triggerTag, ResponseTag: responseTag}
}

// runPair collects the run's trigger and response values.
func (p *ConditionalProperty) runPair(run Trace) ([2]float64, error) {
	trigger, ok := run.firstTag(p.TriggerTag)
	if !ok {
		return [2]float64{}, fmt.Errorf("%w: run %d has no %q event",
			ErrDataFormat, run[0].Run, p.TriggerTag)
	}
	response, ok := run.firstTag(p.ResponseTag)
	if !ok {
		return [2]float64{}, fmt.Errorf("%w: run %d has no %q event",
			ErrDataFormat, run[0].Run, p.ResponseTag)
	}
	return [2]float64{trigger, response}, nil
}

// VerifyData requires every run to carry both markers.
func (p *ConditionalProperty) VerifyData(data Trace) error {
	return verifyRuns(data, func(run Trace) error {
		_, err := p.runPair(run)
		return err
	})
}

// ExtractValue pops the leading run's trigger/response pair.
func (p *ConditionalProperty) ExtractValue(data Trace) ([2]float64, Trace, error) {
	if len(data) == 0 {
		return [2]float64{}, nil, ErrOutOfData
	}
	run, rest := data.leadingRun()
	pair, err := p.runPair(run)
	return pair, rest, err
}

// CheckSampleSatisfy reports whether the armed condition got its response.
func (p *ConditionalProperty) CheckSampleSatisfy(value [2]float64) (bool, error) {
	t1, t2, err := p.thresholds()
	if err != nil {
		return false, err
	}
	if value[0] > t1 {
		return value[1] > t2, nil
	}
	return false, nil
}

// StartPointEstimate returns the empirical (1-proportion)-quantile of the
// per-run trigger values.
func (p *ConditionalProperty) StartPointEstimate(data Trace, proportion float64) (float64, error) {
	if err := p.VerifyData(data); err != nil {
		return 0, err
	}
	triggers, err := reduceRuns(data, func(run Trace) (float64, error) {
		pair, err := p.runPair(run)
		return pair[0], err
	})
	if err != nil {
		return 0, err
	}
	return empiricalQuantile(1-proportion, triggers), nil
}
