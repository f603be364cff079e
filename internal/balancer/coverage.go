package balancer

import "github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"

// MinCoverage 元数据覆盖率低于该值时，平衡分队没有意义
const MinCoverage = 50.0

// MetadataCoverage 计算四项元数据齐全的参与者所占的百分比（0 ~ 100）
func MetadataCoverage(participants []*domain.Participant) float64 {
	if len(participants) == 0 {
		return 0
	}

	covered := 0
	for _, p := range participants {
		if p.Metadata.IsComplete() {
			covered++
		}
	}

	return float64(covered) * 100 / float64(len(participants))
}

// CanUseBalanced 覆盖率不足时调用方应当使用随机分队
func CanUseBalanced(coverage float64) bool {
	return coverage >= MinCoverage
}
