package propbench

import (
	"errors"
	"testing"
)

func TestRatioProperty_ChecksPairwiseRatio(t *testing.T) {
	prop := NewRatioProperty(Greater)
	prop.SetThreshold(1.5)

	ok, err := prop.CheckSampleSatisfy([2]float64{100, 50}) // 2.0x
	if err != nil {
		t.Fatalf("CheckSampleSatisfy failed: %v", err)
	}
	if !ok {
		t.Errorf("Expected a 2.0x pair to satisfy a 1.5x bound")
	}

	ok, err = prop.CheckSampleSatisfy([2]float64{100, 100}) // 1.0x
	if err != nil {
		t.Fatalf("CheckSampleSatisfy failed: %v", err)
	}
	if ok {
		t.Errorf("Expected a 1.0x pair to miss a 1.5x bound")
	}
}

func TestRatioProperty_VerifyData(t *testing.T) {
	prop := NewRatioProperty(Greater)

	cases := []struct {
		name string
		data [][]float64
		ok   bool
	}{
		{"two sources", [][]float64{{1, 2}, {3, 4}}, true},
		{"uneven lengths still verify", [][]float64{{1, 2, 3}, {4}}, true},
		{"one source", [][]float64{{1, 2}}, false},
		{"three sources", [][]float64{{1}, {2}, {3}}, false},
		{"empty second source", [][]float64{{1}, {}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := prop.VerifyData(tc.data)
			if tc.ok && err != nil {
				t.Errorf("Expected valid data, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrDataFormat) {
				t.Errorf("Expected ErrDataFormat, got %v", err)
			}
		})
	}
}

func TestRatioProperty_PairedExtractionEndsWithShorterSource(t *testing.T) {
	prop := NewRatioProperty(Greater)
	data := [][]float64{{100, 200, 300}, {50, 40}}

	pair, rest, err := prop.ExtractValue(data)
	if err != nil {
		t.Fatalf("ExtractValue failed: %v", err)
	}
	if pair != [2]float64{100, 50} {
		t.Errorf("Expected pair {100, 50}, got %v", pair)
	}

	pair, rest, err = prop.ExtractValue(rest)
	if err != nil {
		t.Fatalf("ExtractValue failed: %v", err)
	}
	if pair != [2]float64{200, 40} {
		t.Errorf("Expected pair {200, 40}, got %v", pair)
	}

	// The third baseline sample has no partner.
	if _, _, err := prop.ExtractValue(rest); !errors.Is(err, ErrOutOfData) {
		t.Errorf("Expected ErrOutOfData on the lone sample, got %v", err)
	}
}

func TestRatioProperty_StartPointEstimate(t *testing.T) {
	// Ratios are 2, 2, 2, 1; the 0.1-quantile picks out the worst pair.
	data := [][]float64{{100, 100, 100, 100}, {50, 50, 50, 100}}
	prop := NewRatioProperty(Greater)

	got, err := prop.StartPointEstimate(data, 0.9)
	if err != nil {
		t.Fatalf("StartPointEstimate failed: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected 1, got %g", got)
	}
}

func TestRatioProperty_SpeedupEndToEnd(t *testing.T) {
	// 29 of 30 pairs run 2x faster; one regression pair is outvoted well
	// before the source runs dry.
	baseline := make([]float64, 30)
	improved := make([]float64, 30)
	for i := range baseline {
		baseline[i] = 100
		improved[i] = 50
	}
	improved[7] = 200 // regression

	prop := NewRatioProperty(Greater)
	prop.SetThreshold(1.5)

	res, err := RunSequentialTest([][]float64{baseline, improved}, prop,
		TestConfig{Proportion: 0.8, Confidence: 0.9})
	if err != nil {
		t.Fatalf("RunSequentialTest failed: %v", err)
	}
	if res.Verdict != VerdictTrue {
		t.Errorf("Expected TRUE, got %s", res.Verdict)
	}
	if res.Trials >= 30 {
		t.Errorf("Expected a conclusion before exhausting 30 pairs, got %d trials", res.Trials)
	}
}
