package balancer

import (
	"math"
	"slices"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

const hoursPerDay = 24.0

// Objective 计算一个分队方案的能量（越小越好）：
//
//	energy = Σ weight_m * normalize(spread_m)
//
// 其中 spread_m 为指标 m 在各队平均值之间的差异。缺少某项元数据的参与者不参与该指标的平均值计算，
// 没有任何成员拥有该项元数据的队伍也不参与该指标的差异计算。队伍人数不计入能量，由移动操作保证。
//
// Objective 内部复用缓冲区，不能并发使用。
type Objective struct {
	weights [metricCount]float64
	spread  Spread

	values  [metricCount][]float64
	present [metricCount][]bool
	ranges  [metricCount]float64

	sums   [metricCount][]float64
	counts [metricCount][]int
	means  []float64
}

func NewObjective(participants []*domain.Participant, weights Weights, kind SpreadKind) (*Objective, error) {
	spread, err := lookupSpread(kind)
	if err != nil {
		return nil, err
	}

	o := &Objective{spread: spread}
	for m := Metric(0); m < metricCount; m++ {
		o.weights[m] = weights.Get(m)
		o.values[m] = make([]float64, len(participants))
		o.present[m] = make([]bool, len(participants))
	}

	for i, p := range participants {
		if p.Metadata.EHP != nil {
			o.values[MetricEHP][i] = *p.Metadata.EHP
			o.present[MetricEHP][i] = true
		}
		if p.Metadata.EHB != nil {
			o.values[MetricEHB][i] = *p.Metadata.EHB
			o.present[MetricEHB][i] = true
		}
		if p.Metadata.DailyHours != nil {
			o.values[MetricDailyHours][i] = *p.Metadata.DailyHours
			o.present[MetricDailyHours][i] = true
		}
		if p.Metadata.Timezone != nil {
			o.values[MetricTimezone][i] = float64(*p.Metadata.Timezone)
			o.present[MetricTimezone][i] = true
		}
	}
	unwrapTimezones(o.values[MetricTimezone], o.present[MetricTimezone])

	for m := Metric(0); m < metricCount; m++ {
		o.ranges[m] = valueRange(o.values[m], o.present[m])
	}

	return o, nil
}

// Energy 对同一个分队方案总是返回相同的结果
func (o *Objective) Energy(assignment []int, teamCount int) float64 {
	o.accumulate(assignment, teamCount)

	energy := 0.0
	for m := Metric(0); m < metricCount; m++ {
		if o.weights[m] == 0 {
			continue
		}
		energy += o.weights[m] * o.metricSpread(m, teamCount)
	}
	return energy
}

// Spreads 返回每项指标归一化之后的差异（未乘以权重）
func (o *Objective) Spreads(assignment []int, teamCount int) map[string]float64 {
	o.accumulate(assignment, teamCount)

	spreads := make(map[string]float64, metricCount)
	for m := Metric(0); m < metricCount; m++ {
		spreads[m.String()] = o.metricSpread(m, teamCount)
	}
	return spreads
}

func (o *Objective) accumulate(assignment []int, teamCount int) {
	for m := Metric(0); m < metricCount; m++ {
		if len(o.sums[m]) != teamCount {
			o.sums[m] = make([]float64, teamCount)
			o.counts[m] = make([]int, teamCount)
		} else {
			clear(o.sums[m])
			clear(o.counts[m])
		}
	}

	for i, team := range assignment {
		for m := Metric(0); m < metricCount; m++ {
			if !o.present[m][i] {
				continue
			}
			o.sums[m][team] += o.values[m][i]
			o.counts[m][team]++
		}
	}
}

func (o *Objective) metricSpread(m Metric, teamCount int) float64 {
	o.means = o.means[:0]
	for t := 0; t < teamCount; t++ {
		if o.counts[m][t] == 0 {
			continue
		}
		o.means = append(o.means, o.sums[m][t]/float64(o.counts[m][t]))
	}
	return o.spread.Normalize(o.spread.Measure(o.means), o.ranges[m])
}

func valueRange(values []float64, present []bool) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range values {
		if !present[i] {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// unwrapTimezones 把时区看作 24 小时的环，在相邻时区之间最大的空档处把环剪开再展开成直线，
// 使得 -12 和 +12 这类在环上相邻的时区在计算平均值时也是相邻的。
func unwrapTimezones(offsets []float64, present []bool) {
	positions := make([]float64, 0, len(offsets))
	for i, tz := range offsets {
		if !present[i] {
			continue
		}
		offsets[i] = math.Mod(math.Mod(tz, hoursPerDay)+hoursPerDay, hoursPerDay)
		positions = append(positions, offsets[i])
	}
	if len(positions) == 0 {
		return
	}

	slices.Sort(positions)
	positions = slices.Compact(positions)

	// 默认从最小的位置剪开，对应最后一个位置绕回第一个位置的空档
	cut := positions[0]
	largestGap := positions[0] + hoursPerDay - positions[len(positions)-1]
	for k := 1; k < len(positions); k++ {
		if gap := positions[k] - positions[k-1]; gap > largestGap {
			largestGap = gap
			cut = positions[k]
		}
	}

	for i := range offsets {
		if present[i] && offsets[i] < cut {
			offsets[i] += hoursPerDay
		}
	}
}
