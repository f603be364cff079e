package balancer

import "fmt"

// SpreadKind 衡量各队平均值差异程度的方式
type SpreadKind string

const (
	SpreadRange    SpreadKind = "range"    // 各队平均值的最大值减最小值
	SpreadVariance SpreadKind = "variance" // 各队平均值的总体方差
)

// Spread 根据各队的平均值计算差异程度，并按该指标在所有参与者中的取值范围归一化
type Spread interface {
	Measure(means []float64) float64
	Normalize(spread float64, valueRange float64) float64
}

type rangeSpread struct{}

func (rangeSpread) Measure(means []float64) float64 {
	if len(means) < 2 {
		return 0
	}
	lo, hi := means[0], means[0]
	for _, m := range means[1:] {
		lo = min(lo, m)
		hi = max(hi, m)
	}
	return hi - lo
}

func (rangeSpread) Normalize(spread float64, valueRange float64) float64 {
	if valueRange <= 0 {
		return 0
	}
	return spread / valueRange
}

type varianceSpread struct{}

func (varianceSpread) Measure(means []float64) float64 {
	if len(means) < 2 {
		return 0
	}
	avg := 0.0
	for _, m := range means {
		avg += m
	}
	avg /= float64(len(means))

	variance := 0.0
	for _, m := range means {
		variance += (m - avg) * (m - avg)
	}
	return variance / float64(len(means))
}

func (varianceSpread) Normalize(spread float64, valueRange float64) float64 {
	if valueRange <= 0 {
		return 0
	}
	return spread / (valueRange * valueRange)
}

func lookupSpread(kind SpreadKind) (Spread, error) {
	switch kind {
	case "", SpreadRange:
		return rangeSpread{}, nil
	case SpreadVariance:
		return varianceSpread{}, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的差异度量方式 %q", ErrInvalidParameters, kind)
	}
}
