package balancer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeights(t *testing.T) {
	t.Run("default weights sum to one", func(t *testing.T) {
		w := DefaultWeights()

		require.InDelta(t, 1.0, w.Sum(), 1e-6)
		require.True(t, w.IsNormalized())
	})

	t.Run("adjust rescales the others proportionally", func(t *testing.T) {
		w := DefaultWeights().Adjust(MetricTimezone, 0.7)

		require.InDelta(t, 0.7, w.Timezone, 1e-9)
		require.InDelta(t, 0.3, w.EHP+w.EHB+w.DailyHours, 1e-6)
		require.InDelta(t, w.EHP, w.EHB, 1e-9)
		require.InDelta(t, w.EHB, w.DailyHours, 1e-9)
		require.True(t, w.IsNormalized())
	})

	t.Run("adjust keeps relative proportions", func(t *testing.T) {
		w := Weights{Timezone: 0.1, EHP: 0.6, EHB: 0.2, DailyHours: 0.1}.Adjust(MetricEHB, 0.5)

		require.InDelta(t, 0.5, w.EHB, 1e-9)
		require.InDelta(t, 0.5, w.Timezone+w.EHP+w.DailyHours, 1e-6)
		require.InDelta(t, 6.0, w.EHP/w.Timezone, 1e-9)
	})

	t.Run("adjust splits evenly when the others are all zero", func(t *testing.T) {
		w := Weights{DailyHours: 1}.Adjust(MetricDailyHours, 0.4)

		require.InDelta(t, 0.2, w.Timezone, 1e-9)
		require.InDelta(t, 0.2, w.EHP, 1e-9)
		require.InDelta(t, 0.2, w.EHB, 1e-9)
		require.True(t, w.IsNormalized())
	})

	t.Run("adjust clamps out of range values", func(t *testing.T) {
		w := DefaultWeights().Adjust(MetricEHP, 1.5)

		require.Equal(t, 1.0, w.EHP)
		require.InDelta(t, 0, w.Timezone+w.EHB+w.DailyHours, 1e-9)
	})

	t.Run("negative weights are not normalized", func(t *testing.T) {
		w := Weights{Timezone: 1.2, EHP: -0.2}

		require.False(t, w.IsNormalized())
	})
}
