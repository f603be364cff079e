package balancer

import "math"

// Metric 参与分队平衡的指标
type Metric int

const (
	MetricTimezone Metric = iota
	MetricEHP
	MetricEHB
	MetricDailyHours
	metricCount
)

var metricNames = [metricCount]string{"timezone", "ehp", "ehb", "dailyHours"}

func (m Metric) String() string {
	if m < 0 || m >= metricCount {
		return "unknown"
	}
	return metricNames[m]
}

// ParseMetric 根据名称查找指标
func ParseMetric(name string) (Metric, bool) {
	for m := Metric(0); m < metricCount; m++ {
		if metricNames[m] == name {
			return m, true
		}
	}
	return 0, false
}

const weightTolerance = 1e-6

type Weights struct {
	Timezone   float64 `json:"timezone"`
	EHP        float64 `json:"ehp"`
	EHB        float64 `json:"ehb"`
	DailyHours float64 `json:"dailyHours"`
}

// DefaultWeights 时区最重要，其余三项平分
func DefaultWeights() Weights {
	return Weights{
		Timezone:   0.4,
		EHP:        0.2,
		EHB:        0.2,
		DailyHours: 0.2,
	}
}

func (w Weights) Get(m Metric) float64 {
	switch m {
	case MetricTimezone:
		return w.Timezone
	case MetricEHP:
		return w.EHP
	case MetricEHB:
		return w.EHB
	case MetricDailyHours:
		return w.DailyHours
	}
	return 0
}

func (w *Weights) set(m Metric, v float64) {
	switch m {
	case MetricTimezone:
		w.Timezone = v
	case MetricEHP:
		w.EHP = v
	case MetricEHB:
		w.EHB = v
	case MetricDailyHours:
		w.DailyHours = v
	}
}

func (w Weights) Sum() float64 {
	return w.Timezone + w.EHP + w.EHB + w.DailyHours
}

// IsNormalized 权重非负且总和在误差范围内等于 1
func (w Weights) IsNormalized() bool {
	for m := Metric(0); m < metricCount; m++ {
		if w.Get(m) < 0 {
			return false
		}
	}
	return math.Abs(w.Sum()-1) <= weightTolerance
}

// Adjust 将某一项权重设为 value，其余各项按原有比例缩放，使它们的和为 1 - value。
// 如果其余各项原本全为 0，则平分剩余的权重。
func (w Weights) Adjust(m Metric, value float64) Weights {
	value = math.Max(0, math.Min(1, value))
	remaining := 1 - value
	others := w.Sum() - w.Get(m)

	adjusted := w
	for o := Metric(0); o < metricCount; o++ {
		if o == m {
			continue
		}
		if others > 0 {
			adjusted.set(o, w.Get(o)/others*remaining)
		} else {
			adjusted.set(o, remaining/float64(metricCount-1))
		}
	}
	adjusted.set(m, value)

	return adjusted
}
