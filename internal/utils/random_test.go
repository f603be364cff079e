package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRandomMetadata(t *testing.T) {
	t.Run("never missing", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			m := GenerateRandomMetadata(0)
			require.True(t, m.IsComplete())
			require.NoError(t, ValidateParticipantMetadata(&m))
		}
	})

	t.Run("always missing", func(t *testing.T) {
		m := GenerateRandomMetadata(100)
		require.Nil(t, m.EHP)
		require.Nil(t, m.EHB)
		require.Nil(t, m.Timezone)
		require.Nil(t, m.DailyHours)
	})
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("王伟")

	require.Regexp(t, `^w[a-z]*[0-9]{1,3}$`, username)
}

func TestGenerateRandomEvent(t *testing.T) {
	event := GenerateRandomEvent("测试活动", 1)

	require.Equal(t, int64(1), event.OrganizerID)
	require.NoError(t, ValidateEventTime(event))
}
