package balancer

import "math/rand"

type moveKind int

const (
	moveSwap moveKind = iota
	moveRelocate
)

// move 描述对分队方案的一次修改，swap 时 i、j 为两个参与者，relocate 时把 i 从 from 移到 to
type move struct {
	kind     moveKind
	i, j     int
	from, to int
}

// state 当前正在游走的分队方案
type state struct {
	assignment []int   // 参与者下标 -> 队伍编号
	members    [][]int // 队伍编号 -> 参与者下标
	pos        []int   // 参与者在 members[assignment[i]] 中的位置
}

// newState 先打乱参与者顺序，再按轮询的方式分到各队，保证各队人数最多相差 1
func newState(n int, teamCount int, rng *rand.Rand) *state {
	s := &state{
		assignment: make([]int, n),
		members:    make([][]int, teamCount),
		pos:        make([]int, n),
	}

	order := rng.Perm(n)
	for k, i := range order {
		team := k % teamCount
		s.assignment[i] = team
		s.pos[i] = len(s.members[team])
		s.members[team] = append(s.members[team], i)
	}

	return s
}

func (s *state) teamCount() int {
	return len(s.members)
}

// propose 生成一个候选移动，保证应用之后各队人数仍然最多相差 1
func (s *state) propose(rng *rand.Rand, swapProbability float64) move {
	if rng.Float64() >= swapProbability {
		if mv, ok := s.proposeRelocate(rng); ok {
			return mv
		}
	}
	return s.proposeSwap(rng)
}

func (s *state) proposeSwap(rng *rand.Rand) move {
	k := s.teamCount()
	a := rng.Intn(k)
	b := rng.Intn(k - 1)
	if b >= a {
		b++
	}

	return move{
		kind: moveSwap,
		i:    s.members[a][rng.Intn(len(s.members[a]))],
		j:    s.members[b][rng.Intn(len(s.members[b]))],
		from: a,
		to:   b,
	}
}

// proposeRelocate 从人数较多的队伍中随机取一人移到人数较少的队伍。
// 人数不能整除时两类队伍都一定存在，因此只有整除时才会失败。
func (s *state) proposeRelocate(rng *rand.Rand) (move, bool) {
	n, k := len(s.assignment), s.teamCount()
	if n%k == 0 {
		// 各队人数完全相同，任何迁移都会破坏人数平衡
		return move{}, false
	}

	larger := n/k + 1
	var bigger, smaller []int
	for t, members := range s.members {
		if len(members) == larger {
			bigger = append(bigger, t)
		} else {
			smaller = append(smaller, t)
		}
	}

	from := bigger[rng.Intn(len(bigger))]
	to := smaller[rng.Intn(len(smaller))]
	i := s.members[from][rng.Intn(len(s.members[from]))]

	return move{kind: moveRelocate, i: i, from: from, to: to}, true
}

func (s *state) apply(mv move) {
	switch mv.kind {
	case moveSwap:
		s.swap(mv.i, mv.j)
	case moveRelocate:
		s.relocate(mv.i, mv.to)
	}
}

func (s *state) undo(mv move) {
	switch mv.kind {
	case moveSwap:
		s.swap(mv.i, mv.j)
	case moveRelocate:
		s.relocate(mv.i, mv.from)
	}
}

func (s *state) swap(i, j int) {
	ti, tj := s.assignment[i], s.assignment[j]
	s.members[ti][s.pos[i]] = j
	s.members[tj][s.pos[j]] = i
	s.pos[i], s.pos[j] = s.pos[j], s.pos[i]
	s.assignment[i], s.assignment[j] = tj, ti
}

func (s *state) relocate(i, to int) {
	from := s.assignment[i]

	// 用最后一个成员填补 i 的位置
	last := s.members[from][len(s.members[from])-1]
	s.members[from][s.pos[i]] = last
	s.pos[last] = s.pos[i]
	s.members[from] = s.members[from][:len(s.members[from])-1]

	s.pos[i] = len(s.members[to])
	s.members[to] = append(s.members[to], i)
	s.assignment[i] = to
}

func (s *state) sizes() []int {
	sizes := make([]int, len(s.members))
	for t, m := range s.members {
		sizes[t] = len(m)
	}
	return sizes
}

// balanced 检查各队人数是否最多相差 1
func (s *state) balanced() bool {
	return isBalanced(s.sizes())
}

func isBalanced(sizes []int) bool {
	if len(sizes) == 0 {
		return true
	}
	lo, hi := sizes[0], sizes[0]
	for _, size := range sizes[1:] {
		lo = min(lo, size)
		hi = max(hi, size)
	}
	return hi-lo <= 1
}
