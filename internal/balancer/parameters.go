package balancer

import (
	"fmt"
	"math"
)

// Validate 在开始优化之前检查参数，返回的错误都包装了 ErrInvalidParameters
func (p *Parameters) Validate() error {
	switch {
	case p.TeamCount < 0 || p.TeamSize < 0:
		return fmt.Errorf("%w: 队伍数量和每队人数不能为负数", ErrInvalidParameters)
	case p.TeamCount > 0 && p.TeamSize > 0:
		return fmt.Errorf("%w: 队伍数量和每队人数只能指定其中一个", ErrInvalidParameters)
	case p.TeamCount == 0 && p.TeamSize == 0:
		return fmt.Errorf("%w: 必须指定队伍数量或每队人数", ErrInvalidParameters)
	}

	for m := Metric(0); m < metricCount; m++ {
		if p.Weights.Get(m) < 0 {
			return fmt.Errorf("%w: %s 的权重不能为负数", ErrInvalidParameters, m)
		}
	}
	if !p.Weights.IsNormalized() {
		return fmt.Errorf("%w: 权重之和必须为 1（当前为 %.6f）", ErrInvalidParameters, p.Weights.Sum())
	}

	if p.SwapProbability < 0 || p.MoveProbability < 0 {
		return fmt.Errorf("%w: 操作概率不能为负数", ErrInvalidParameters)
	}
	if sum := p.SwapProbability + p.MoveProbability; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: 交换概率与迁移概率之和必须为 1（当前为 %.6f）", ErrInvalidParameters, sum)
	}

	if p.Iterations <= 0 {
		return fmt.Errorf("%w: 迭代次数必须为正数", ErrInvalidParameters)
	}
	if p.StagnationLimit <= 0 {
		return fmt.Errorf("%w: 停滞上限必须为正数", ErrInvalidParameters)
	}
	if p.InitialTemperature <= 0 {
		return fmt.Errorf("%w: 初始温度必须为正数", ErrInvalidParameters)
	}
	if p.FinalTemperature <= 0 || p.FinalTemperature >= p.InitialTemperature {
		return fmt.Errorf("%w: 终止温度必须为正数且小于初始温度", ErrInvalidParameters)
	}

	if _, err := lookupSpread(p.Spread); err != nil {
		return err
	}

	return nil
}

// ResolveTeamCount 根据参与者数量得到队伍数量
func (p *Parameters) ResolveTeamCount(participantCount int) int {
	if p.TeamCount > 0 {
		return int(p.TeamCount)
	}
	teamCount := (participantCount + int(p.TeamSize) - 1) / int(p.TeamSize)
	return max(teamCount, 1)
}
