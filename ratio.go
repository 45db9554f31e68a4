package propbench

import "fmt"

// RatioProperty checks the ratio between paired samples from two sources
// against a single movable bound. It is a hyperproperty: satisfaction
// depends jointly on both sources, as in "variant A runs at least 1.5x
// faster than variant B".
//
// The data source is a [][]float64 holding exactly two series. Sample i of
// the first source is paired with sample i of the second, and each check
// consumes the ratio first[i] / second[i]. For a speedup property, pass the
// baseline timings first and the improved timings second.
type RatioProperty struct {
	Threshold
}

var _ SearchableProperty[[][]float64, [2]float64] = (*RatioProperty)(nil)

// NewRatioProperty returns a ratio property with the given comparison
// direction and no bound set.
func NewRatioProperty(cmp Comparator) *RatioProperty {
	return &RatioProperty{Threshold: NewThreshold(cmp)}
}

// VerifyData requires exactly two sources, each with at least one sample.
func (p *RatioProperty) VerifyData(data [][]float64) error {
	if len(data) != 2 {
		return fmt.Errorf("%w: ratio property needs exactly 2 sources, got %d",
			ErrDataFormat, len(data))
	}
	if len(data[0]) == 0 || len(data[1]) == 0 {
		return fmt.Errorf("%w: both sources need at least one sample", ErrDataFormat)
	}
	return nil
}

// ExtractValue pops the next pair, one sample from each source. The stream
// ends as soon as either source is exhausted: a lone sample has no partner
// to form a ratio with.
func (p *RatioProperty) ExtractValue(data [][]float64) ([2]float64, [][]float64, error) {
	if len(data) != 2 {
		return [2]float64{}, nil, fmt.Errorf("%w: ratio property needs exactly 2 sources, got %d",
			ErrDataFormat, len(data))
	}
	if len(data[0]) == 0 || len(data[1]) == 0 {
		return [2]float64{}, nil, ErrOutOfData
	}
	pair := [2]float64{data[0][0], data[1][0]}
	rest := [][]float64{data[0][1:], data[1][1:]}
	return pair, rest, nil
}

// CheckSampleSatisfy compares the pair's ratio against the bound.
func (p *RatioProperty) CheckSampleSatisfy(value [2]float64) (bool, error) {
	return p.Satisfied(value[0] / value[1])
}

// StartPointEstimate returns the empirical (1-proportion)-quantile of the
// pairwise ratios, the same ratio CheckSampleSatisfy evaluates.
func (p *RatioProperty) StartPointEstimate(data [][]float64, proportion float64) (float64, error) {
	if err := p.VerifyData(data); err != nil {
		return 0, err
	}
	n := min(len(data[0]), len(data[1]))
	ratios := make([]float64, n)
	for i := 0; i < n; i++ {
		ratios[i] = data[0][i] / data[1][i]
	}
	return empiricalQuantile(1-proportion, ratios), nil
}
