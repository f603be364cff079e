package balancer

import "time"

// 模拟退火参数
type Parameters struct {
	TeamCount          int32      `json:"teamCount"`          // 队伍数量，和 TeamSize 二选一
	TeamSize           int32      `json:"teamSize"`           // 每队人数，队伍数量 = ceil(参与者数量 / TeamSize)
	Weights            Weights    `json:"weights"`            // 各项指标的权重，之和必须为 1
	Iterations         int32      `json:"iterations"`         // 最大迭代次数
	InitialTemperature float64    `json:"initialTemperature"` // 初始温度
	FinalTemperature   float64    `json:"finalTemperature"`   // 终止温度
	RandomSeed         *int64     `json:"randomSeed"`         // 为空时使用不确定的随机源
	StagnationLimit    int32      `json:"stagnationLimit"`    // 连续多少次迭代没有改进就提前结束
	SwapProbability    float64    `json:"swapProbability"`    // 选择交换操作的概率
	MoveProbability    float64    `json:"moveProbability"`    // 选择迁移操作的概率
	Spread             SpreadKind `json:"spread"`             // 为空时使用 SpreadRange
}

type Termination string

const (
	TerminationIterations  Termination = "iterations"
	TerminationStagnation  Termination = "stagnation"
	TerminationTemperature Termination = "temperature"
	TerminationTrivial     Termination = "trivial" // 只有一支队伍，不需要优化
	TerminationRandom      Termination = "random"  // 随机分队，没有经过优化
)

// Improvement 最优解的一次改进
type Improvement struct {
	Iteration int32   `json:"iteration"`
	Energy    float64 `json:"energy"`
}

type Result struct {
	Assignment           map[int64]int32 `json:"assignment"` // participantID -> 队伍编号
	Teams                [][]int64       `json:"teams"`      // 每支队伍的 participantID
	Energy               float64         `json:"energy"`
	ParticipantsAssigned int32           `json:"participantsAssigned"`
	TeamsCreated         int32           `json:"teamsCreated"`
	Iterations           int32           `json:"iterations"`
	BestIteration        int32           `json:"bestIteration"`
	Accepted             int32           `json:"accepted"`
	AcceptedWorse        int32           `json:"acceptedWorse"`
	Improvements         []Improvement   `json:"improvements"`
	Termination          Termination     `json:"termination"`
	Seed                 int64           `json:"seed"`
	Duration             time.Duration   `json:"duration"`
}
