package balancer

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func TestGenerateBalancedTeams(t *testing.T) {
	t.Run("identical participants balance perfectly", func(t *testing.T) {
		for _, seed := range []int64{1, 2, 3} {
			res, err := GenerateBalancedTeams(identicalParticipants(20), testParameters(4, seed))

			require.NoError(t, err)
			require.Zero(t, res.Energy)
			require.Equal(t, []int{5, 5, 5, 5}, teamSizes(t, res))
			require.Equal(t, int32(4), res.TeamsCreated)
			require.Equal(t, int32(20), res.ParticipantsAssigned)
		}
	})

	t.Run("uneven pool keeps team sizes within one", func(t *testing.T) {
		for _, seed := range []int64{1, 2, 3, 4} {
			res, err := GenerateBalancedTeams(randomParticipants(21, seed), testParameters(4, seed))
			require.NoError(t, err)

			sizes := teamSizes(t, res)
			slices.Sort(sizes)
			require.Equal(t, []int{5, 5, 5, 6}, sizes)
		}
	})

	t.Run("same seed gives the same result", func(t *testing.T) {
		participants := randomParticipants(30, 11)

		first, err := GenerateBalancedTeams(participants, testParameters(3, 99))
		require.NoError(t, err)
		second, err := GenerateBalancedTeams(participants, testParameters(3, 99))
		require.NoError(t, err)

		require.Equal(t, first.Assignment, second.Assignment)
		require.Equal(t, first.Teams, second.Teams)
		require.Equal(t, first.Energy, second.Energy)
		require.Equal(t, first.Iterations, second.Iterations)
		require.Equal(t, int64(99), first.Seed)
	})

	t.Run("best energy never increases", func(t *testing.T) {
		res, err := GenerateBalancedTeams(randomParticipants(40, 5), testParameters(5, 8))
		require.NoError(t, err)

		require.NotEmpty(t, res.Improvements)
		require.Zero(t, res.Improvements[0].Iteration)
		for k := 1; k < len(res.Improvements); k++ {
			require.Less(t, res.Improvements[k].Energy, res.Improvements[k-1].Energy)
			require.Greater(t, res.Improvements[k].Iteration, res.Improvements[k-1].Iteration)
		}

		last := res.Improvements[len(res.Improvements)-1]
		require.Equal(t, res.Energy, last.Energy)
		require.Equal(t, res.BestIteration, last.Iteration)
	})

	t.Run("optimization improves on the initial partition", func(t *testing.T) {
		res, err := GenerateBalancedTeams(randomParticipants(40, 21), testParameters(4, 3))
		require.NoError(t, err)

		require.Less(t, res.Energy, res.Improvements[0].Energy)
	})

	t.Run("reported energy matches the objective", func(t *testing.T) {
		participants := randomParticipants(25, 4)
		params := testParameters(3, 17)

		b, err := New(params, participants)
		require.NoError(t, err)
		res, err := b.Balance()
		require.NoError(t, err)

		assignment := make([]int, len(participants))
		for i, p := range participants {
			assignment[i] = int(res.Assignment[p.ID])
		}
		require.Equal(t, res.Energy, b.Objective().Energy(assignment, b.TeamCount()))
	})

	t.Run("every participant is placed exactly once", func(t *testing.T) {
		participants := randomParticipants(33, 2)
		res, err := GenerateBalancedTeams(participants, testParameters(6, 2))
		require.NoError(t, err)

		require.Len(t, res.Assignment, len(participants))
		var ids []int64
		for team, members := range res.Teams {
			for _, id := range members {
				require.Equal(t, int32(team), res.Assignment[id])
				ids = append(ids, id)
			}
		}
		slices.Sort(ids)
		require.Len(t, slices.Compact(ids), len(participants))
	})

	t.Run("team size determines team count", func(t *testing.T) {
		params := testParameters(0, 1)
		params.TeamSize = 4

		res, err := GenerateBalancedTeams(randomParticipants(10, 1), params)

		require.NoError(t, err)
		require.Equal(t, int32(3), res.TeamsCreated)
		sizes := teamSizes(t, res)
		slices.Sort(sizes)
		require.Equal(t, []int{3, 3, 4}, sizes)
	})

	t.Run("variance spread", func(t *testing.T) {
		params := testParameters(3, 1)
		params.Spread = SpreadVariance

		res, err := GenerateBalancedTeams(randomParticipants(18, 1), params)

		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Energy, 0.0)
		require.Equal(t, []int{6, 6, 6}, teamSizes(t, res))
	})
}

func TestGenerateBalancedTeamsTermination(t *testing.T) {
	t.Run("stops early when nothing improves", func(t *testing.T) {
		params := testParameters(4, 1)
		params.Iterations = 1000
		params.StagnationLimit = 50

		res, err := GenerateBalancedTeams(identicalParticipants(20), params)

		require.NoError(t, err)
		require.Equal(t, TerminationStagnation, res.Termination)
		require.Equal(t, int32(50), res.Iterations)
		require.Zero(t, res.BestIteration)
	})

	t.Run("stagnation counts from the last improvement", func(t *testing.T) {
		params := testParameters(2, 6)
		params.Iterations = 100000
		params.StagnationLimit = 200

		res, err := GenerateBalancedTeams(randomParticipants(8, 6), params)

		require.NoError(t, err)
		require.Equal(t, TerminationStagnation, res.Termination)
		require.Equal(t, res.BestIteration+200, res.Iterations)
		require.Less(t, res.Iterations, int32(100000))
	})

	t.Run("stops at the iteration budget", func(t *testing.T) {
		params := testParameters(4, 1)
		params.Iterations = 30
		params.StagnationLimit = 1000

		res, err := GenerateBalancedTeams(randomParticipants(20, 1), params)

		require.NoError(t, err)
		require.Equal(t, TerminationIterations, res.Termination)
		require.Equal(t, int32(30), res.Iterations)
		require.LessOrEqual(t, res.Accepted, res.Iterations)
		require.LessOrEqual(t, res.AcceptedWorse, res.Accepted)
	})
}

func TestGenerateBalancedTeamsDegenerate(t *testing.T) {
	t.Run("single team is a no-op", func(t *testing.T) {
		participants := randomParticipants(9, 1)

		res, err := GenerateBalancedTeams(participants, testParameters(1, 1))

		require.NoError(t, err)
		require.Zero(t, res.Energy)
		require.Equal(t, TerminationTrivial, res.Termination)
		require.Zero(t, res.Iterations)
		require.Len(t, res.Teams, 1)
		require.Len(t, res.Teams[0], 9)
		for _, team := range res.Assignment {
			require.Zero(t, team)
		}
	})

	t.Run("fewer participants than teams", func(t *testing.T) {
		_, err := GenerateBalancedTeams(randomParticipants(3, 1), testParameters(4, 1))

		require.ErrorIs(t, err, ErrDegenerateInput)
	})

	t.Run("a single participant cannot be split", func(t *testing.T) {
		_, err := GenerateBalancedTeams(randomParticipants(1, 1), testParameters(2, 1))

		require.ErrorIs(t, err, ErrDegenerateInput)
	})

	t.Run("empty pool with team size", func(t *testing.T) {
		params := testParameters(0, 1)
		params.TeamSize = 5

		res, err := GenerateBalancedTeams([]*domain.Participant{}, params)

		require.NoError(t, err)
		require.Equal(t, TerminationTrivial, res.Termination)
		require.Zero(t, res.ParticipantsAssigned)
	})
}

func TestParametersValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(p *Parameters)
	}{
		{name: "weights do not sum to one", modify: func(p *Parameters) { p.Weights.EHP = 0.5 }},
		{name: "negative weight", modify: func(p *Parameters) { p.Weights = Weights{Timezone: 1.2, EHP: -0.2} }},
		{name: "probabilities do not sum to one", modify: func(p *Parameters) { p.SwapProbability = 0.9 }},
		{name: "negative probability", modify: func(p *Parameters) { p.SwapProbability, p.MoveProbability = -0.5, 1.5 }},
		{name: "no iterations", modify: func(p *Parameters) { p.Iterations = 0 }},
		{name: "no stagnation limit", modify: func(p *Parameters) { p.StagnationLimit = 0 }},
		{name: "no team count", modify: func(p *Parameters) { p.TeamCount = 0 }},
		{name: "negative team count", modify: func(p *Parameters) { p.TeamCount = -2 }},
		{name: "team count and team size", modify: func(p *Parameters) { p.TeamSize = 3 }},
		{name: "non-positive initial temperature", modify: func(p *Parameters) { p.InitialTemperature = 0 }},
		{name: "final temperature above initial", modify: func(p *Parameters) { p.FinalTemperature = 2 }},
		{name: "non-positive final temperature", modify: func(p *Parameters) { p.FinalTemperature = 0 }},
		{name: "unknown spread", modify: func(p *Parameters) { p.Spread = "median" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			params := testParameters(4, 1)
			tc.modify(params)

			require.ErrorIs(t, params.Validate(), ErrInvalidParameters)

			_, err := GenerateBalancedTeams(randomParticipants(12, 1), params)
			require.ErrorIs(t, err, ErrInvalidParameters)
		})
	}

	t.Run("valid parameters", func(t *testing.T) {
		require.NoError(t, testParameters(4, 1).Validate())
	})

	t.Run("duplicate participants", func(t *testing.T) {
		participants := randomParticipants(6, 1)
		participants[5].ID = participants[0].ID

		_, err := GenerateBalancedTeams(participants, testParameters(2, 1))

		require.ErrorIs(t, err, ErrInvalidParameters)
	})
}
