package propbench

import "fmt"

// Run boundary markers used by trace properties that relate event timing to
// the whole run. Constructors install these; override the fields on the
// property when a trace uses different markers.
const (
	DefaultRunStartTag = "system start"
	DefaultRunEndTag   = "system end"
)

// SpanShareProperty checks, per run, the share of the run's duration spent
// between paired enter/exit events: the fraction of execution spent between
// a branch mispredict and its recovery, between a GC pause and its end, and
// so on. Each run contributes one sample:
//
//	share = Σ (exit[i] - enter[i]) / (end - start)
//
// where start and end are the run's boundary markers and enter/exit events
// are paired in order of appearance. A trailing enter with no matching exit
// is ignored.
type SpanShareProperty struct {
	Threshold
	EnterTag string // marks entry into the measured state
	ExitTag  string // marks exit from the measured state
	StartTag string // run start marker, DefaultRunStartTag unless overridden
	EndTag   string // run end marker, DefaultRunEndTag unless overridden
}

var _ SearchableProperty[Trace, float64] = (*SpanShareProperty)(nil)

// NewSpanShareProperty returns a span-share property with the given
// comparison direction and enter/exit markers, and no bound set.
func NewSpanShareProperty(cmp Comparator, enterTag, exitTag string) *SpanShareProperty {
	return &SpanShareProperty{
		Threshold: NewThreshold(cmp),
		EnterTag:  enterTag,
		ExitTag:   exitTag,
		StartTag:  DefaultRunStartTag,
		EndTag:    DefaultRunEndTag,
	}
}

// reduceRun turns one run into its span share.
func (p *SpanShareProperty) reduceRun(run Trace) (float64, error) {
	start, ok := run.firstTag(p.StartTag)
	if !ok {
		return 0, fmt.Errorf("%w: run %d has no %q marker",
			ErrDataFormat, run[0].Run, p.StartTag)
	}
	end, ok := run.firstTag(p.EndTag)
	if !ok {
		return 0, fmt.Errorf("%w: run %d has no %q marker",
			ErrDataFormat, run[0].Run, p.EndTag)
	}
	if end <= start {
		return 0, fmt.Errorf("%w: run %d window is empty (%q at %g, %q at %g)",
			ErrDataFormat, run[0].Run, p.StartTag, start, p.EndTag, end)
	}
	enters := run.tagValues(p.EnterTag)
	exits := run.tagValues(p.ExitTag)
	var inside float64
	for i := 0; i < min(len(enters), len(exits)); i++ {
		inside += exits[i] - enters[i]
	}
	return inside / (end - start), nil
}

// VerifyData dry-runs the per-run reduction so marker problems name the
// offending run before sampling starts.
func (p *SpanShareProperty) VerifyData(data Trace) error {
	return verifyRuns(data, func(run Trace) error {
		_, err := p.reduceRun(run)
		return err
	})
}

// ExtractValue pops the leading run and reduces it to its span share.
func (p *SpanShareProperty) ExtractValue(data Trace) (float64, Trace, error) {
	if len(data) == 0 {
		return 0, nil, ErrOutOfData
	}
	run, rest := data.leadingRun()
	v, err := p.reduceRun(run)
	return v, rest, err
}

// CheckSampleSatisfy compares one run's span share against the bound.
func (p *SpanShareProperty) CheckSampleSatisfy(value float64) (bool, error) {
	return p.Satisfied(value)
}

// StartPointEstimate returns the empirical (1-proportion)-quantile of the
// per-run span shares.
func (p *SpanShareProperty) StartPointEstimate(data Trace, proportion float64) (float64, error) {
	if err := p.VerifyData(data); err != nil {
		return 0, err
	}
	shares, err := reduceRuns(data, p.reduceRun)
	if err != nil {
		return 0, err
	}
	return empiricalQuantile(1-proportion, shares), nil
}

// MeanGapProperty checks, per run, the mean gap between consecutive
// occurrences of a recurring event: the average distance between TLB
// misses, cache evictions, GC cycles. Each run with n tagged events
// (n >= 2) contributes the sample
//
//	mean gap = Σ (value[i] - value[i-1]) / (n - 1)
type MeanGapProperty struct {
	Threshold
	Tag string // recurring event marker
}

var _ SearchableProperty[Trace, float64] = (*MeanGapProperty)(nil)

// NewMeanGapProperty returns a mean-gap property with the given comparison
// direction and event marker, and no bound set.
func NewMeanGapProperty(cmp Comparator, tag string) *MeanGapProperty {
	return &MeanGapProperty{Threshold: NewThreshold(cmp), Tag: tag}
}

// reduceRun turns one run into its mean inter-event gap.
func (p *MeanGapProperty) reduceRun(run Trace) (float64, error) {
	vals := run.tagValues(p.Tag)
	if len(vals) < 2 {
		return 0, fmt.Errorf("%w: run %d needs at least two %q events to form a gap, got %d",
			ErrDataFormat, run[0].Run, p.Tag, len(vals))
	}
	var sum float64
	for i := 1; i < len(vals); i++ {
		sum += vals[i] - vals[i-1]
	}
	return sum / float64(len(vals)-1), nil
}

// VerifyData dry-runs the per-run reduction across every run.
func (p *MeanGapProperty) VerifyData(data Trace) error {
	return verifyRuns(data, func(run Trace) error {
		_, err := p.reduceRun(run)
		return err
	})
}

// ExtractValue pops the leading run and reduces it to its mean gap.
func (p *MeanGapProperty) ExtractValue(data Trace) (float64, Trace, error) {
	if len(data) == 0 {
		return 0, nil, ErrOutOfData
	}
	run, rest := data.leadingRun()
	v, err := p.reduceRun(run)
	return v, rest, err
}

// CheckSampleSatisfy compares one run's mean gap against the bound.
func (p *MeanGapProperty) CheckSampleSatisfy(value float64) (bool, error) {
	return p.Satisfied(value)
}

// StartPointEstimate returns the empirical (1-proportion)-quantile of the
// per-run mean gaps.
func (p *MeanGapProperty) StartPointEstimate(data Trace, proportion float64) (float64, error) {
	if err := p.VerifyData(data); err != nil {
		return 0, err
	}
	gaps, err := reduceRuns(data, p.reduceRun)
	if err != nil {
		return 0, err
	}
	return empiricalQuantile(1-proportion, gaps), nil
}

// RecurrenceProperty checks, per run, how often a recurring event repeats
// within a fixed distance. Extraction yields the run's tagged values; the
// check computes the fraction of consecutive gaps no larger than Within and
// asks whether that fraction stays below the bound:
//
//	P[gap <= Within] < threshold
//
// The comparison direction is fixed at Less, so an arbitrarily high bound
// always satisfies and HighThresholdOutcome is true.
type RecurrenceProperty struct {
	Threshold
	Tag    string  // recurring event marker
	Within float64 // maximum gap for a recurrence to count
}

var _ SearchableProperty[Trace, []float64] = (*RecurrenceProperty)(nil)

// NewRecurrenceProperty returns a recurrence property for the given marker
// and recurrence distance, and no bound set.
func NewRecurrenceProperty(tag string, within float64) *RecurrenceProperty {
	return &RecurrenceProperty{Threshold: NewThreshold(Less), Tag: tag, Within: within}
}

// runValues collects the run's tagged values, requiring at least one.
func (p *RecurrenceProperty) runValues(run Trace) ([]float64, error) {
	vals := run.tagValues(p.Tag)
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: run %d has no %q events",
			ErrDataFormat, run[0].Run, p.Tag)
	}
	return vals, nil
}

// VerifyData requires every run to carry the recurring marker.
func (p *RecurrenceProperty) VerifyData(data Trace) error {
	return verifyRuns(data, func(run Trace) error {
		_, err := p.runValues(run)
		return err
	})
}

// ExtractValue pops the leading run and yields its tagged values.
func (p *RecurrenceProperty) ExtractValue(data Trace) ([]float64, Trace, error) {
	if len(data) == 0 {
		return nil, nil, ErrOutOfData
	}
	run, rest := data.leadingRun()
	vals, err := p.runValues(run)
	return vals, rest, err
}

// CheckSampleSatisfy compares the run's recurrence fraction against the
// bound.
func (p *RecurrenceProperty) CheckSampleSatisfy(values []float64) (bool, error) {
	return p.Satisfied(recurrenceFraction(values, p.Within))
}

// StartPointEstimate returns the empirical (1-proportion)-quantile of the
// per-run recurrence fractions, the same quantity the check evaluates.
func (p *RecurrenceProperty) StartPointEstimate(data Trace, proportion float64) (float64, error) {
	if err := p.VerifyData(data); err != nil {
		return 0, err
	}
	fractions, err := reduceRuns(data, func(run Trace) (float64, error) {
		vals, err := p.runValues(run)
		if err != nil {
			return 0, err
		}
		return recurrenceFraction(vals, p.Within), nil
	})
	if err != nil {
		return 0, err
	}
	return empiricalQuantile(1-proportion, fractions), nil
}

// recurrenceFraction is the share of consecutive gaps no larger than within,
// relative to the number of observed events.
func recurrenceFraction(vals []float64, within float64) float64 {
	recurring := 0
	for i := 1; i < len(vals); i++ {
		if vals[i]-vals[i-1] <= within {
			recurring++
		}
	}
	return float64(recurring) / float64(len(vals))
}
