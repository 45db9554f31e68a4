package propbench

import (
	"testing"
)

// AssertSatisfied runs a sequential test and fails unless it concludes the
// property holds.
//
// Statistical property:
//
//	P(sample satisfies) > cfg.Proportion, at confidence cfg.Confidence
func AssertSatisfied[D, V any](t *testing.T, data D, prop Property[D, V], cfg TestConfig) {
	t.Helper()

	res, err := RunSequentialTest(data, prop, cfg)
	if err != nil {
		t.Fatalf("Failed to run sequential test: %v", err)
	}

	switch res.Verdict {
	case VerdictTrue:
		t.Logf("✓ Property satisfied: %s", res)
	case VerdictFalse:
		t.Errorf("Property not satisfied: %s\n"+
			"More than %.1f%% of samples had to satisfy it and too few did.",
			res, cfg.Proportion*100)
	default:
		t.Errorf("Verdict inconclusive: %s\n"+
			"Data ran out before confidence %.2f was reached. Collect more samples;\n"+
			"MinSamples reports the fewest that could ever conclude.",
			res, cfg.Confidence)
	}
}

// AssertNotSatisfied runs a sequential test and fails unless it concludes
// the property does not hold.
//
// Statistical property:
//
//	P(sample satisfies) <= cfg.Proportion, at confidence cfg.Confidence
func AssertNotSatisfied[D, V any](t *testing.T, data D, prop Property[D, V], cfg TestConfig) {
	t.Helper()

	res, err := RunSequentialTest(data, prop, cfg)
	if err != nil {
		t.Fatalf("Failed to run sequential test: %v", err)
	}

	switch res.Verdict {
	case VerdictFalse:
		t.Logf("✓ Property not satisfied: %s", res)
	case VerdictTrue:
		t.Errorf("Property unexpectedly satisfied: %s\n"+
			"More than %.1f%% of samples satisfied it.",
			res, cfg.Proportion*100)
	default:
		t.Errorf("Verdict inconclusive: %s\n"+
			"Data ran out before confidence %.2f was reached. Collect more samples;\n"+
			"MinSamples reports the fewest that could ever conclude.",
			res, cfg.Confidence)
	}
}

// AssertBrackets fails unless the searched interval contains the expected
// critical threshold.
func AssertBrackets(t *testing.T, result SPAResult, want float64) {
	t.Helper()

	if !result.Interval.Contains(want) {
		t.Errorf("Interval %s does not bracket %g\n"+
			"The verdict flips inside the interval, so either the expectation or the\n"+
			"measured distribution has drifted.", result.Interval, want)
		return
	}

	t.Logf("✓ Interval %s brackets %g (width %g)",
		result.Interval, want, result.Interval.Width())
}

// AssertCriticalThreshold runs an interval search and fails unless the
// located interval brackets the expected critical threshold.
func AssertCriticalThreshold[D, V any](t *testing.T, data D, prop SearchableProperty[D, V], cfg SearchConfig, want float64) {
	t.Helper()

	res, err := RunIntervalSearch(data, prop, cfg)
	if err != nil {
		t.Fatalf("Failed to run interval search: %v", err)
	}

	AssertBrackets(t, res, want)
}

// PrintTestTrace outputs the per-trial evolution of a sequential test to
// the test log.
func PrintTestTrace(t *testing.T, res SMCResult) {
	t.Helper()

	t.Logf("\n=== Sequential Test Trace ===")
	t.Logf("Verdict: %s", res)

	t.Logf("\n  Trial  Confidence  Lean")
	t.Logf("  -----  ----------  -----")
	for i, conf := range res.ConfidenceTrace {
		lean := VerdictFalse
		if res.LeanTrace[i] {
			lean = VerdictTrue
		}
		t.Logf("  %-5d  %10.4f  %-5s", i+1, conf, lean)
	}
}

// PrintSearchTable outputs every threshold probed by an interval search to
// the test log.
func PrintSearchTable(t *testing.T, res SPAResult) {
	t.Helper()

	t.Logf("\n=== Interval Search ===")
	t.Logf("Interval: %s (width %g)", res.Interval, res.Interval.Width())

	t.Logf("\n  Threshold     Verdict       Confidence  Satisfied")
	t.Logf("  ------------  ------------  ----------  ---------")
	for _, tr := range res.Results {
		t.Logf("  %-12g  %-12s  %10.4f  %6d/%d",
			tr.Threshold, tr.Result.Verdict, tr.Result.Confidence,
			tr.Result.SatisfiedTrials, tr.Result.Trials)
	}
}
