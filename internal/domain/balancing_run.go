package domain

import "time"

type Team struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Slot      int32   `json:"slot"`
	MemberIDs []int64 `json:"memberIDs"`
}

// BalancingRun 一次分队的结果，每个活动只保留最新的一次
type BalancingRun struct {
	ID                   int64     `json:"id"`
	EventID              int64     `json:"eventID"`
	Preset               string    `json:"preset"`
	Balanced             bool      `json:"balanced"` // 为 false 时表示元数据覆盖率不足，使用了随机分队
	ObjectiveScore       float64   `json:"objectiveScore"`
	TeamsCreated         int32     `json:"teamsCreated"`
	ParticipantsAssigned int32     `json:"participantsAssigned"`
	Iterations           int32     `json:"iterations"`
	Termination          string    `json:"termination"`
	Seed                 int64     `json:"seed"`
	Teams                []Team    `json:"teams"`
	CreatedAt            time.Time `json:"createdAt"`
	Version              int32     `json:"-"`
}
