package propbench

import "fmt"

// Event is one tagged counter reading inside a measured run. Value is a
// monotonically increasing counter (cycles, nanoseconds, instructions)
// sampled when the tagged point was reached.
type Event struct {
	Run   int
	Tag   string
	Value float64
}

// Trace is an ordered sequence of events grouped by run: all events of a
// run are contiguous and runs appear in measurement order. Trace-shaped
// properties treat it as an immutable cursor; extraction returns shorter
// views into the same backing array and never reorders or rewrites events,
// so independent searches can start from the same trace.
type Trace []Event

// leadingRun splits off the events of the first run.
func (t Trace) leadingRun() (run, rest Trace) {
	if len(t) == 0 {
		return nil, nil
	}
	r := t[0].Run
	for i, ev := range t {
		if ev.Run != r {
			return t[:i], t[i:]
		}
	}
	return t, nil
}

// tagValues collects the values of every event carrying tag, in order.
func (t Trace) tagValues(tag string) []float64 {
	var vals []float64
	for _, ev := range t {
		if ev.Tag == tag {
			vals = append(vals, ev.Value)
		}
	}
	return vals
}

// firstTag returns the value of the first event carrying tag.
func (t Trace) firstTag(tag string) (float64, bool) {
	for _, ev := range t {
		if ev.Tag == tag {
			return ev.Value, true
		}
	}
	return 0, false
}

// verifyRuns applies a per-run shape check across the whole trace, so
// format problems surface before sampling instead of mid-extraction.
func verifyRuns(t Trace, check func(run Trace) error) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty trace", ErrDataFormat)
	}
	for rest := t; len(rest) > 0; {
		var run Trace
		run, rest = rest.leadingRun()
		if err := check(run); err != nil {
			return err
		}
	}
	return nil
}

// reduceRuns applies a per-run reduction across the whole trace and
// collects the per-run values, for start-point estimation.
func reduceRuns(t Trace, reduce func(run Trace) (float64, error)) ([]float64, error) {
	var vals []float64
	for rest := t; len(rest) > 0; {
		var run Trace
		run, rest = rest.leadingRun()
		v, err := reduce(run)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
