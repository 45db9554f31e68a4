package propbench

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestRunIntervalSearch_BracketsEmpiricalQuantile(t *testing.T) {
	// For 1..100 the satisfied share of "x > T" crosses 0.9 between T=9
	// (91 samples above) and T=10 (90 samples), so the interval is [9, 10].
	data := rangeSeries(1, 100)
	prop := NewThresholdProperty(Greater)

	cfg := SearchConfig{
		Proportion:     0.9,
		Confidence:     0.3,
		IterationLimit: 50,
		Granularity:    1,
		StartPoint:     math.NaN(), // estimated from the data: the 0.1-quantile, 10
	}
	res, err := RunIntervalSearch(data, prop, cfg)
	if err != nil {
		t.Fatalf("RunIntervalSearch failed: %v", err)
	}

	if !within(res.Interval.Low, 9, 1e-9) || !within(res.Interval.High, 10, 1e-9) {
		t.Errorf("Expected interval [9, 10], got %s", res.Interval)
	}
	if len(res.Results) != 2 {
		t.Fatalf("Expected 2 probes, got %d", len(res.Results))
	}

	// Probes come back sorted by threshold.
	for i := 1; i < len(res.Results); i++ {
		if res.Results[i-1].Threshold >= res.Results[i].Threshold {
			t.Errorf("Results not sorted: %g before %g",
				res.Results[i-1].Threshold, res.Results[i].Threshold)
		}
	}

	// Continuous mode makes every probe judge the identical samples.
	for _, tr := range res.Results {
		if tr.Result.Trials != len(data) {
			t.Errorf("Threshold %g consumed %d trials, want %d",
				tr.Threshold, tr.Result.Trials, len(data))
		}
	}

	low, ok := res.At(9)
	if !ok || low.Verdict != VerdictTrue {
		t.Errorf("Expected TRUE at threshold 9, got %s (ok=%v)", low.Verdict, ok)
	}
	high, ok := res.At(10)
	if !ok || high.Verdict != VerdictFalse {
		t.Errorf("Expected FALSE at threshold 10, got %s (ok=%v)", high.Verdict, ok)
	}
	if _, ok := res.At(42); ok {
		t.Errorf("Expected no probe at threshold 42")
	}

	AssertBrackets(t, res, 10) // the flip sits at the 0.9-quantile boundary
	PrintSearchTable(t, res)
}

func TestRunIntervalSearch_LessComparatorSearchesUpward(t *testing.T) {
	// "x < T" holds for more than 90% of 1..100 once T reaches 92. Starting
	// at 90 forces the upward sweep through two short probes before the
	// goal verdict and one downward probe to anchor the other side.
	data := rangeSeries(1, 100)
	prop := NewThresholdProperty(Less)

	cfg := SearchConfig{
		Proportion:     0.9,
		Confidence:     0.3,
		IterationLimit: 50,
		Granularity:    1,
		StartPoint:     90,
	}
	res, err := RunIntervalSearch(data, prop, cfg)
	if err != nil {
		t.Fatalf("RunIntervalSearch failed: %v", err)
	}

	if !within(res.Interval.Low, 91, 1e-9) || !within(res.Interval.High, 92, 1e-9) {
		t.Errorf("Expected interval [91, 92], got %s", res.Interval)
	}
	if len(res.Results) != 4 {
		t.Errorf("Expected 4 probes (89..92), got %d", len(res.Results))
	}
	AssertBrackets(t, res, 91.5)
}

func TestRunIntervalSearch_ExhaustsOnInsufficientData(t *testing.T) {
	// Three samples can never push the satisfied side of a 0.9 proportion
	// past confidence 0.9 (MinSamples wants 22), so the downward sweep
	// burns its whole budget without finding a TRUE threshold.
	data := []float64{1, 2, 3}
	prop := NewThresholdProperty(Greater)

	cfg := SearchConfig{
		Proportion:     0.9,
		Confidence:     0.9,
		IterationLimit: 4,
		Granularity:    1,
		StartPoint:     2,
	}
	_, err := RunIntervalSearch(data, prop, cfg)
	if !errors.Is(err, ErrSearchExhausted) {
		t.Fatalf("Expected ErrSearchExhausted, got %v", err)
	}
	if !strings.Contains(err.Error(), "IterationLimit") {
		t.Errorf("Expected guidance mentioning IterationLimit, got: %v", err)
	}
	if !strings.Contains(err.Error(), "MinSamples") {
		t.Errorf("Expected guidance mentioning MinSamples, got: %v", err)
	}
}

func TestRunIntervalSearch_ValidatesGranularity(t *testing.T) {
	data := rangeSeries(1, 100)
	prop := NewThresholdProperty(Greater)

	for _, g := range []float64{math.NaN(), -1, math.Inf(1)} {
		cfg := DefaultSearchConfig()
		cfg.Granularity = g
		if _, err := RunIntervalSearch(data, prop, cfg); !errors.Is(err, ErrValidation) {
			t.Errorf("Granularity %v: expected ErrValidation, got %v", g, err)
		}
	}
}

func TestRunIntervalSearch_ValidatesProbabilities(t *testing.T) {
	data := rangeSeries(1, 100)
	prop := NewThresholdProperty(Greater)

	cfg := DefaultSearchConfig()
	cfg.Proportion = 1.2
	if _, err := RunIntervalSearch(data, prop, cfg); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for proportion 1.2, got %v", err)
	}

	// A NaN confidence must fail the range check, not reach the estimator.
	cfg = DefaultSearchConfig()
	cfg.Confidence = math.NaN()
	if _, err := RunIntervalSearch(data, prop, cfg); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for NaN confidence, got %v", err)
	}
}

func TestRunIntervalSearch_CannotDeriveStepFromZeroStart(t *testing.T) {
	data := rangeSeries(1, 100)
	prop := NewThresholdProperty(Greater)

	cfg := DefaultSearchConfig()
	cfg.StartPoint = 0 // |0|/1000 has no magnitude to derive a step from
	_, err := RunIntervalSearch(data, prop, cfg)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "Granularity") {
		t.Errorf("Expected guidance to set Granularity, got: %v", err)
	}
}

func TestRunIntervalSearch_DerivesGranularityFromStart(t *testing.T) {
	// Scaling 1..100 by 5 puts the estimated start at 50, deriving a 0.1
	// step: 10^ceil(log10(50/1000)).
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i+1) * 5
	}
	prop := NewThresholdProperty(Greater)

	cfg := DefaultSearchConfig()
	cfg.Confidence = 0.3
	res, err := RunIntervalSearch(data, prop, cfg)
	if err != nil {
		t.Fatalf("RunIntervalSearch failed: %v", err)
	}

	if !within(res.Interval.Width(), 0.1, 1e-6) {
		t.Errorf("Expected a derived 0.1 step between probes, got width %g", res.Interval.Width())
	}
	AssertBrackets(t, res, 50)
}

func TestRunIntervalSearch_ClampsNonPositiveIterationLimit(t *testing.T) {
	// The zero value falls back to the default budget instead of failing
	// before the first probe.
	data := rangeSeries(1, 100)
	prop := NewThresholdProperty(Greater)

	cfg := SearchConfig{Proportion: 0.9, Confidence: 0.3, Granularity: 1, StartPoint: 10}
	res, err := RunIntervalSearch(data, prop, cfg)
	if err != nil {
		t.Fatalf("RunIntervalSearch failed: %v", err)
	}
	AssertBrackets(t, res, 10)
}

func TestAssertCriticalThreshold(t *testing.T) {
	data := rangeSeries(1, 100)
	prop := NewThresholdProperty(Greater)

	cfg := SearchConfig{
		Proportion:     0.9,
		Confidence:     0.3,
		IterationLimit: 50,
		Granularity:    1,
		StartPoint:     math.NaN(),
	}
	AssertCriticalThreshold(t, data, prop, cfg, 9.5)
}

func TestDeriveGranularity(t *testing.T) {
	cases := []struct {
		start float64
		want  float64
	}{
		{50, 0.1},
		{-50, 0.1},
		{1000, 1},
		{4000, 10},
		{0.002, 1e-5},
	}
	for _, tc := range cases {
		if got := deriveGranularity(tc.start); !within(got, tc.want, 1e-12) {
			t.Errorf("deriveGranularity(%g): expected %g, got %g", tc.start, tc.want, got)
		}
	}
}

func TestRoundTo(t *testing.T) {
	cases := []struct {
		v, g, want float64
	}{
		{10.4, 1, 10},
		{10.6, 1, 11},
		{9.99, 0.5, 10},
		{-2.3, 1, -2},
		{123.4, 10, 120},
	}
	for _, tc := range cases {
		if got := roundTo(tc.v, tc.g); !within(got, tc.want, 1e-9) {
			t.Errorf("roundTo(%g, %g): expected %g, got %g", tc.v, tc.g, tc.want, got)
		}
	}
}

func TestConfidenceInterval(t *testing.T) {
	ci := ConfidenceInterval{Low: 9, High: 10}

	if !ci.Contains(9) || !ci.Contains(9.5) || !ci.Contains(10) {
		t.Errorf("Endpoints and interior of %s must be contained", ci)
	}
	if ci.Contains(8.99) || ci.Contains(10.01) {
		t.Errorf("Values outside %s must not be contained", ci)
	}
	if !within(ci.Width(), 1, 1e-12) {
		t.Errorf("Expected width 1, got %g", ci.Width())
	}
	if ci.String() != "[9, 10]" {
		t.Errorf("Expected [9, 10], got %s", ci)
	}
}

// rangeSeries returns the integers from lo to hi as a float series.
func rangeSeries(lo, hi int) []float64 {
	out := make([]float64, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, float64(v))
	}
	return out
}
