package balancer

import (
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// RandomTeams 随机分队（各队人数最多相差 1），用于元数据覆盖率不足的情况。
// 仍然会计算能量，方便和平衡分队的结果比较。
func (b *Balancer) RandomTeams() *Result {
	start := time.Now()

	st := newState(len(b.participants), b.teamCount, b.rng)
	res := b.buildResult(st.assignment, b.objective.Energy(st.assignment, b.teamCount))
	res.Termination = TerminationRandom
	res.Duration = time.Since(start)

	return res
}

func GenerateRandomTeams(participants []*domain.Participant, parameters *Parameters) (*Result, error) {
	b, err := New(parameters, participants)
	if err != nil {
		return nil, err
	}
	return b.RandomTeams(), nil
}
