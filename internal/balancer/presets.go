package balancer

import (
	"math"
	"slices"
	"time"
)

type PresetName string

const (
	PresetSmall  PresetName = "small"
	PresetMedium PresetName = "medium"
	PresetLarge  PresetName = "large"
	PresetCustom PresetName = "custom"
)

// Preset 预设的参数组合。预设只以值的形式返回，调用方修改返回值不会影响其他调用方。
// 返回的 Parameters 没有设置队伍数量，调用方需要自行指定。
type Preset struct {
	Name            PresetName `json:"name"`
	Description     string     `json:"description"`
	MaxParticipants int        `json:"maxParticipants"` // 推荐使用的最大参与者数量，0 表示不限
	Parameters      Parameters `json:"parameters"`
}

var presets = [...]Preset{
	{
		Name:            PresetSmall,
		Description:     "小型活动（50 人以内）",
		MaxParticipants: 50,
		Parameters: Parameters{
			Weights:            DefaultWeights(),
			Iterations:         5000,
			InitialTemperature: 1.0,
			FinalTemperature:   0.001,
			StagnationLimit:    1000,
			SwapProbability:    0.7,
			MoveProbability:    0.3,
			Spread:             SpreadRange,
		},
	},
	{
		Name:            PresetMedium,
		Description:     "中型活动（150 人以内）",
		MaxParticipants: 150,
		Parameters: Parameters{
			Weights:            DefaultWeights(),
			Iterations:         20000,
			InitialTemperature: 1.0,
			FinalTemperature:   0.0005,
			StagnationLimit:    3000,
			SwapProbability:    0.6,
			MoveProbability:    0.4,
			Spread:             SpreadRange,
		},
	},
	{
		Name:            PresetLarge,
		Description:     "大型活动（150 人以上）",
		MaxParticipants: 0,
		Parameters: Parameters{
			Weights:            DefaultWeights(),
			Iterations:         50000,
			InitialTemperature: 2.0,
			FinalTemperature:   0.0001,
			StagnationLimit:    8000,
			SwapProbability:    0.5,
			MoveProbability:    0.5,
			Spread:             SpreadRange,
		},
	},
	{
		// 自定义预设以中型活动的参数为起点，由调用方覆盖
		Name:            PresetCustom,
		Description:     "自定义参数",
		MaxParticipants: 0,
		Parameters: Parameters{
			Weights:            DefaultWeights(),
			Iterations:         20000,
			InitialTemperature: 1.0,
			FinalTemperature:   0.0005,
			StagnationLimit:    3000,
			SwapProbability:    0.6,
			MoveProbability:    0.4,
			Spread:             SpreadRange,
		},
	},
}

func Presets() []Preset {
	return slices.Clone(presets[:])
}

func GetPreset(name PresetName) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// RecommendPreset 根据参与者数量选择预设（不会选择自定义预设）
func RecommendPreset(participantCount int) Preset {
	for _, p := range presets {
		if p.Name == PresetCustom {
			continue
		}
		if p.MaxParticipants == 0 || participantCount <= p.MaxParticipants {
			return p
		}
	}
	large, _ := GetPreset(PresetLarge)
	return large
}

// 每次迭代的大致耗时：固定开销加上每个参与者的能量计算开销
const (
	iterationOverhead       = 150 * time.Nanosecond
	iterationPerParticipant = 10 * time.Nanosecond
)

// EstimateRuntime 估算一次运行最长需要的时间，调用方可以据此控制迭代次数，避免超过请求的超时时间。
// 结果超出 time.Duration 的表示范围时返回最大值。
func EstimateRuntime(iterations int32, participantCount int) time.Duration {
	if iterations <= 0 {
		return 0
	}
	if participantCount < 0 {
		participantCount = 0
	}

	const maxDuration = time.Duration(math.MaxInt64)
	if int64(participantCount) > int64(maxDuration-iterationOverhead)/int64(iterationPerParticipant) {
		return maxDuration
	}
	perIteration := iterationOverhead + time.Duration(participantCount)*iterationPerParticipant
	if perIteration > maxDuration/time.Duration(iterations) {
		return maxDuration
	}
	return time.Duration(iterations) * perIteration
}
