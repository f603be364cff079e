package balancer

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRandomTeams(t *testing.T) {
	participants := randomParticipants(21, 3)

	res, err := GenerateRandomTeams(participants, testParameters(4, 5))
	require.NoError(t, err)

	require.Equal(t, TerminationRandom, res.Termination)
	require.Zero(t, res.Iterations)
	sizes := teamSizes(t, res)
	slices.Sort(sizes)
	require.Equal(t, []int{5, 5, 5, 6}, sizes)

	again, err := GenerateRandomTeams(participants, testParameters(4, 5))
	require.NoError(t, err)
	require.Equal(t, res.Assignment, again.Assignment)
	require.Equal(t, res.Energy, again.Energy)
}
