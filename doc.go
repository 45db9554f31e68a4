// Package propbench decides performance properties statistically instead of
// comparing averages.
//
// # Overview
//
// propbench answers questions like "is the new build faster than the old one
// on at least 90% of requests, with 90% confidence?" using a sequential
// hypothesis test with an exact Clopper–Pearson confidence bound. It consumes
// one sample at a time and stops the moment the evidence justifies a verdict,
// so noisy measurements demand more samples and clean ones fewer. A second
// layer searches thresholds to bracket the critical value at which a verdict
// flips, turning "does X hold?" into "up to which threshold does X hold?".
//
// # Architecture
//
// The package components:
//
//   - property.go   - Data-access contract every property implements
//   - smc.go        - Sequential test engine with exact confidence
//   - spa.go        - Threshold interval search
//   - threshold.go  - Scalar series vs. threshold property
//   - ratio.go      - Paired-series ratio property (speedups, overheads)
//   - trace.go      - Tagged event traces
//   - traceprops.go - Span-share, mean-gap and recurrence trace properties
//   - dual.go       - Two-threshold band and conditional properties
//   - assertions.go - Test helpers for statistical properties
//
// # Quick Start
//
// Decide whether most request latencies stay under 250ms:
//
//	prop := propbench.NewThresholdProperty(propbench.Less)
//	prop.SetThreshold(250)
//
//	res, err := propbench.RunSequentialTest(latencies, prop, propbench.DefaultTestConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	switch res.Verdict {
//	case propbench.VerdictTrue:
//	    // > 90% of latencies are under 250ms, at 90% confidence
//	case propbench.VerdictFalse:
//	    // they are not, at 90% confidence
//	case propbench.VerdictInconclusive:
//	    // the data ran out first; collect more samples
//	}
//
// # The Confidence Bound
//
// After n trials with s satisfied, the engine computes the exact probability
// that the true satisfied proportion lies on the far side of the target p,
// using the Clopper–Pearson construction over the interval (a,b) = (0,p)
// when s/n < p and (p,1) otherwise:
//
//	s = 0: conf = (1-a)^n - (1-b)^n
//	s = n: conf = b^n - a^n
//	else:  conf = BetaCDF(b; s+1, n-s) - BetaCDF(a; s, n-s+1)
//
// Sampling stops once conf reaches the configured confidence. Unlike a
// t-test on means, the bound is exact at every n: no normality assumption,
// no minimum sample size, and a verdict error probability of at most
// 1 - Confidence.
//
// The method follows Sections 4-5 of https://doi.org/10.1145/3613424.3623785.
//
// # Finding Critical Thresholds
//
// Instead of fixing a threshold up front, search for the value where the
// verdict flips:
//
//	prop := propbench.NewRatioProperty(propbench.Greater)
//
//	res, err := propbench.RunIntervalSearch(pairedRuns, prop, propbench.DefaultSearchConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// the speedup exceeds res.Interval.Low but not res.Interval.High,
//	// each side at 90% confidence
//	fmt.Println(res.Interval)
//
// The search probes thresholds outward from a start point (estimated from
// the data unless configured), runs the engine in continuous mode at each so
// every probe judges the identical samples, and brackets the flip between
// the tightest opposing verdicts.
//
// # Property Variants
//
// Ready-made properties cover the common measurement shapes:
//
//   - ThresholdProperty:   scalar series vs. a threshold (latency, IPC)
//   - RatioProperty:       paired series, first/second vs. a threshold (speedup)
//   - SpanShareProperty:   fraction of a run spent between two markers
//   - MeanGapProperty:     mean spacing of an event within a run
//   - RecurrenceProperty:  fraction of events recurring within a window
//   - BandProperty:        values inside a two-sided band
//   - ConditionalProperty: response exceeds its threshold when the trigger does
//
// # Writing Your Own Property
//
// A property is the engine's only window onto the data. Implement
// Property[D, V] over your own data shape:
//
//   - VerifyData rejects malformed input before any sampling.
//   - ExtractValue pops one sample and returns the remaining data; return
//     ErrOutOfData when the source is spent. Treat data as immutable: return
//     a re-sliced view, never mutate.
//   - CheckSampleSatisfy judges one sample; return ErrUndetermined to skip a
//     sample that cannot be judged, and the engine extracts another without
//     counting a trial.
//   - StartPointEstimate seeds the interval search, usually with an
//     empirical quantile.
//   - HighThresholdOutcome reports the verdict an extremely high threshold
//     would produce, which orients the search.
//
// Add SetThreshold (embedding Threshold gives it to you) to make the
// property searchable.
//
// # Testing
//
// Use assertions to validate statistical properties in regular Go tests:
//
//	func TestCacheSpeedup(t *testing.T) {
//	    prop := propbench.NewRatioProperty(propbench.Greater)
//	    prop.SetThreshold(1.5)
//
//	    // fails unless >90% of paired runs show >1.5x, at 90% confidence
//	    propbench.AssertSatisfied(t, pairedRuns, prop, propbench.DefaultTestConfig())
//	}
//
// # Philosophy
//
// Traditional benchmark comparisons answer: "Is the mean lower?"
// propbench answers: "How sure are we, and of exactly what?"
//
//   - Verdicts carry an explicit confidence, not a point estimate.
//   - Sample counts adapt to noise instead of being fixed in advance.
//   - Thresholds become measured intervals instead of folklore constants.
//   - Inconclusive is an honest answer when the data cannot support one.
//
// This shifts performance claims from "looks faster" to "satisfies a stated
// property at a stated confidence".
//
// # Concurrency
//
// Engine runs are pure with respect to the data, but properties carry the
// current threshold as state: do not share one property value across
// concurrent searches. Results are immutable snapshots and safe to share.
//
// # See Also
//
//   - examples/ - Working code samples
//   - https://doi.org/10.1145/3613424.3623785 - The underlying statistical method
package propbench
