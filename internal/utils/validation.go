package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func ValidateEventTime(event *domain.Event) error {
	if event.StartTime.After(event.EndTime) {
		return errors.New("活动开始时间不能晚于结束时间")
	}
	return nil
}

// ValidateParticipantMetadata 只检查取值范围，不检查数据是否合理
func ValidateParticipantMetadata(metadata *domain.PlayerMetadata) error {
	if metadata.Timezone != nil && (*metadata.Timezone < -12 || *metadata.Timezone > 14) {
		return fmt.Errorf("时区 %d 超出范围（-12 ~ 14）", *metadata.Timezone)
	}
	if metadata.EHP != nil && *metadata.EHP < 0 {
		return errors.New("EHP 不能为负数")
	}
	if metadata.EHB != nil && *metadata.EHB < 0 {
		return errors.New("EHB 不能为负数")
	}
	if metadata.DailyHours != nil && (*metadata.DailyHours < 0 || *metadata.DailyHours > 24) {
		return errors.New("每日在线时长必须在 0 ~ 24 小时之间")
	}
	return nil
}

// ValidateBalancingResult 检查分队结果：每个参与者恰好出现一次，队伍之间人数最多相差 1
func ValidateBalancingResult(participants []*domain.Participant, teams [][]int64) error {
	if len(teams) == 0 {
		return errors.New("分队结果中没有任何队伍")
	}

	expected := make(map[int64]bool, len(participants))
	for _, p := range participants {
		expected[p.ID] = false
	}

	minSize, maxSize := len(teams[0]), len(teams[0])
	for i, team := range teams {
		minSize = min(minSize, len(team))
		maxSize = max(maxSize, len(team))

		for _, id := range team {
			assigned, exists := expected[id]
			if !exists {
				return fmt.Errorf("第 %d 队中的参与者 %d 不属于该活动", i+1, id)
			}
			if assigned {
				return fmt.Errorf("参与者 %d 被分到了多支队伍", id)
			}
			expected[id] = true
		}
	}

	for id, assigned := range expected {
		if !assigned {
			return fmt.Errorf("参与者 %d 没有被分到任何队伍", id)
		}
	}

	if maxSize-minSize > 1 {
		return fmt.Errorf("队伍人数不平衡（最少 %d 人，最多 %d 人）", minSize, maxSize)
	}

	return nil
}
