package balancer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

// 能量的减少量小于该值时不算作改进，避免浮点误差造成的"假改进"重置停滞计数
const improvementEpsilon = 1e-12

type Balancer struct {
	parameters   *Parameters
	participants []*domain.Participant
	teamCount    int
	objective    *Objective
	seed         int64
	rng          *rand.Rand
}

// New 校验参数并准备好随机源。随机源在构造初始方案之前就已经确定，
// 因此相同的种子、参数和参与者总是得到完全相同的结果。
func New(parameters *Parameters, participants []*domain.Participant) (*Balancer, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(participants))
	for _, p := range participants {
		if _, exists := seen[p.ID]; exists {
			return nil, fmt.Errorf("%w: 参与者 %d 重复出现", ErrInvalidParameters, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	teamCount := parameters.ResolveTeamCount(len(participants))
	if teamCount > 1 && len(participants) < teamCount {
		return nil, fmt.Errorf("%w: 参与者数量 (%d) 少于队伍数量 (%d)", ErrDegenerateInput, len(participants), teamCount)
	}

	objective, err := NewObjective(participants, parameters.Weights, parameters.Spread)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if parameters.RandomSeed != nil {
		seed = *parameters.RandomSeed
	}

	return &Balancer{
		parameters:   parameters,
		participants: participants,
		teamCount:    teamCount,
		objective:    objective,
		seed:         seed,
		rng:          rand.New(rand.NewSource(seed)),
	}, nil
}

func (b *Balancer) TeamCount() int {
	return b.teamCount
}

// Objective 可用于对结果做进一步分析（例如各项指标的差异）
func (b *Balancer) Objective() *Objective {
	return b.objective
}

// Balance 运行模拟退火，返回整个过程中能量最低的方案（不一定是最后游走到的方案）
func (b *Balancer) Balance() (*Result, error) {
	start := time.Now()

	// 只有一支队伍或者只有一个人时，不存在任何合法的移动
	if b.teamCount < 2 || len(b.participants) < 2 {
		assignment := make([]int, len(b.participants))
		res := b.buildResult(assignment, b.objective.Energy(assignment, b.teamCount))
		res.Termination = TerminationTrivial
		res.Duration = time.Since(start)
		return res, nil
	}

	st := newState(len(b.participants), b.teamCount, b.rng)
	sched := newSchedule(b.parameters)

	current := b.objective.Energy(st.assignment, b.teamCount)

	// 最优解单独保存一份，退火过程中当前方案可能会变差
	best := current
	bestAssignment := make([]int, len(st.assignment))
	copy(bestAssignment, st.assignment)

	var (
		bestIteration int32
		accepted      int32
		acceptedWorse int32
		termination   Termination
		improvements  = []Improvement{{Iteration: 0, Energy: best}}
	)

	for {
		mv := st.propose(b.rng, b.parameters.SwapProbability)
		st.apply(mv)

		candidate := b.objective.Energy(st.assignment, b.teamCount)
		delta := candidate - current

		improved := false
		if sched.accept(delta, b.rng) {
			current = candidate
			accepted++
			if delta > 0 {
				acceptedWorse++
			}

			if current < best-improvementEpsilon {
				improved = true
				best = current
				bestIteration = sched.iteration + 1
				copy(bestAssignment, st.assignment)
				improvements = append(improvements, Improvement{Iteration: bestIteration, Energy: best})
			}
		} else {
			st.undo(mv)
		}

		sched.advance(improved)
		if reason, done := sched.terminated(); done {
			termination = reason
			break
		}
	}

	// 理论上不会出现，这里只是以防万一
	if !st.balanced() {
		return nil, fmt.Errorf("分队结果违反人数平衡约束: %v", st.sizes())
	}

	res := b.buildResult(bestAssignment, best)
	res.Iterations = sched.iteration
	res.BestIteration = bestIteration
	res.Accepted = accepted
	res.AcceptedWorse = acceptedWorse
	res.Improvements = improvements
	res.Termination = termination
	res.Duration = time.Since(start)

	return res, nil
}

func (b *Balancer) buildResult(assignment []int, energy float64) *Result {
	res := &Result{
		Assignment:           make(map[int64]int32, len(assignment)),
		Teams:                make([][]int64, b.teamCount),
		Energy:               energy,
		ParticipantsAssigned: int32(len(assignment)),
		TeamsCreated:         int32(b.teamCount),
		Seed:                 b.seed,
	}

	for t := range res.Teams {
		res.Teams[t] = []int64{}
	}
	for i, team := range assignment {
		id := b.participants[i].ID
		res.Assignment[id] = int32(team)
		res.Teams[team] = append(res.Teams[team], id)
	}

	return res
}

// GenerateBalancedTeams 对一组参与者进行一次完整的平衡分队
func GenerateBalancedTeams(participants []*domain.Participant, parameters *Parameters) (*Result, error) {
	b, err := New(parameters, participants)
	if err != nil {
		return nil, err
	}
	return b.Balance()
}
