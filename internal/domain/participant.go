package domain

import "time"

// PlayerMetadata 每一项都可能为空（未从外部数据源获取到）
type PlayerMetadata struct {
	EHP        *float64 `json:"ehp"`
	EHB        *float64 `json:"ehb"`
	Timezone   *int32   `json:"timezone"` // UTC 偏移，-12 ~ 14
	DailyHours *float64 `json:"dailyHours"`
}

// IsComplete 四项元数据是否都存在
func (m PlayerMetadata) IsComplete() bool {
	return m.EHP != nil && m.EHB != nil && m.Timezone != nil && m.DailyHours != nil
}

type Participant struct {
	ID        int64          `json:"id"`
	EventID   int64          `json:"eventID"`
	Username  string         `json:"username"`
	Metadata  PlayerMetadata `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	Version   int32          `json:"-"`
}
