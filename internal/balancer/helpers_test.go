package balancer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func newParticipant(id int64, tz int32, ehp, ehb, hours float64) *domain.Participant {
	return &domain.Participant{
		ID:       id,
		Username: "player",
		Metadata: domain.PlayerMetadata{
			EHP:        ptr(ehp),
			EHB:        ptr(ehb),
			Timezone:   ptr(tz),
			DailyHours: ptr(hours),
		},
	}
}

func identicalParticipants(n int) []*domain.Participant {
	participants := make([]*domain.Participant, n)
	for i := range participants {
		participants[i] = newParticipant(int64(i+1), 2, 100, 50, 4)
	}
	return participants
}

// randomParticipants 生成元数据随机的参与者，大约 10% 的字段为空
func randomParticipants(n int, seed int64) []*domain.Participant {
	rng := rand.New(rand.NewSource(seed))
	participants := make([]*domain.Participant, n)
	for i := range participants {
		p := newParticipant(
			int64(i+1),
			int32(rng.Intn(27)-12),
			rng.Float64()*1500,
			rng.Float64()*800,
			rng.Float64()*10,
		)
		if rng.Intn(10) == 0 {
			p.Metadata.EHB = nil
		}
		if rng.Intn(10) == 0 {
			p.Metadata.Timezone = nil
		}
		participants[i] = p
	}
	return participants
}

func testParameters(teamCount int32, seed int64) *Parameters {
	return &Parameters{
		TeamCount:          teamCount,
		Weights:            DefaultWeights(),
		Iterations:         3000,
		InitialTemperature: 1.0,
		FinalTemperature:   0.001,
		RandomSeed:         ptr(seed),
		StagnationLimit:    3000,
		SwapProbability:    0.6,
		MoveProbability:    0.4,
	}
}

func teamSizes(t *testing.T, res *Result) []int {
	t.Helper()
	sizes := make([]int, len(res.Teams))
	total := 0
	for i, team := range res.Teams {
		sizes[i] = len(team)
		total += len(team)
	}
	require.Equal(t, int(res.ParticipantsAssigned), total)
	return sizes
}
