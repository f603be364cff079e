package balancer

import (
	"math"
	"math/rand"
)

// schedule 退火过程的温度与终止条件
type schedule struct {
	initialTemperature float64
	finalTemperature   float64
	totalIterations    int32
	stagnationLimit    int32

	iteration   int32
	temperature float64
	stagnation  int32
}

func newSchedule(p *Parameters) *schedule {
	return &schedule{
		initialTemperature: p.InitialTemperature,
		finalTemperature:   p.FinalTemperature,
		totalIterations:    p.Iterations,
		stagnationLimit:    p.StagnationLimit,
		temperature:        p.InitialTemperature,
	}
}

// accept 能量没有变差时总是接受，变差时以 exp(-Δ/T) 的概率接受
func (s *schedule) accept(delta float64, rng *rand.Rand) bool {
	if delta <= 0 {
		return true
	}
	return rng.Float64() < math.Exp(-delta/s.temperature)
}

// advance 结束一次迭代：更新停滞计数并按几何方式降温
//
//	T_i = T_0 * (T_f / T_0) ^ (i / total)
func (s *schedule) advance(improved bool) {
	s.iteration++
	if improved {
		s.stagnation = 0
	} else {
		s.stagnation++
	}

	progress := float64(s.iteration) / float64(s.totalIterations)
	s.temperature = s.initialTemperature * math.Pow(s.finalTemperature/s.initialTemperature, progress)
}

func (s *schedule) terminated() (Termination, bool) {
	switch {
	case s.iteration >= s.totalIterations:
		return TerminationIterations, true
	case s.stagnation >= s.stagnationLimit:
		return TerminationStagnation, true
	case s.temperature <= s.finalTemperature:
		return TerminationTemperature, true
	}
	return "", false
}
