package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Balancer.DefaultPreset = "medium"

	h, err := NewHandler(cfg, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func TestResolvePreset(t *testing.T) {
	t.Run("explicit preset", func(t *testing.T) {
		preset, err := resolvePreset("small", "medium", 500)
		require.NoError(t, err)
		require.Equal(t, balancer.PresetSmall, preset.Name)
	})

	t.Run("falls back to configured default", func(t *testing.T) {
		preset, err := resolvePreset("", "large", 10)
		require.NoError(t, err)
		require.Equal(t, balancer.PresetLarge, preset.Name)
	})

	t.Run("recommends by participant count", func(t *testing.T) {
		preset, err := resolvePreset("", "", 100)
		require.NoError(t, err)
		require.Equal(t, balancer.PresetMedium, preset.Name)
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, err := resolvePreset("huge", "medium", 10)
		require.ErrorIs(t, err, balancer.ErrInvalidParameters)
	})
}

func TestBuildParameters(t *testing.T) {
	medium, ok := balancer.GetPreset(balancer.PresetMedium)
	require.True(t, ok)

	t.Run("preset values", func(t *testing.T) {
		params, err := buildParameters(&generateTeamsRequest{TeamCount: ptr(int32(4))}, medium)

		require.NoError(t, err)
		require.Equal(t, int32(4), params.TeamCount)
		require.Equal(t, medium.Parameters.Iterations, params.Iterations)
		require.Equal(t, balancer.DefaultWeights(), params.Weights)
		require.Nil(t, params.RandomSeed)
	})

	t.Run("overrides", func(t *testing.T) {
		req := &generateTeamsRequest{
			TeamSize:        ptr(int32(5)),
			Iterations:      ptr(int32(100)),
			StagnationLimit: ptr(int32(10)),
			SwapProbability: ptr(0.8),
			Spread:          ptr("variance"),
			RandomSeed:      ptr(int64(7)),
		}

		params, err := buildParameters(req, medium)

		require.NoError(t, err)
		require.Equal(t, int32(5), params.TeamSize)
		require.Equal(t, int32(100), params.Iterations)
		require.Equal(t, int32(10), params.StagnationLimit)
		require.InDelta(t, 0.8, params.SwapProbability, 1e-9)
		require.InDelta(t, 0.2, params.MoveProbability, 1e-9)
		require.Equal(t, balancer.SpreadVariance, params.Spread)
		require.Equal(t, int64(7), *params.RandomSeed)
	})

	t.Run("adjusts a single weight", func(t *testing.T) {
		req := &generateTeamsRequest{
			TeamCount:    ptr(int32(2)),
			AdjustWeight: &weightAdjustment{Metric: "timezone", Value: 0.7},
		}

		params, err := buildParameters(req, medium)

		require.NoError(t, err)
		require.InDelta(t, 0.7, params.Weights.Timezone, 1e-9)
		require.InDelta(t, 0.1, params.Weights.EHP, 1e-9)
		require.InDelta(t, 1.0, params.Weights.Sum(), 1e-6)
	})

	t.Run("team count and size are exclusive", func(t *testing.T) {
		_, err := buildParameters(&generateTeamsRequest{}, medium)
		require.ErrorIs(t, err, balancer.ErrInvalidParameters)

		_, err = buildParameters(&generateTeamsRequest{TeamCount: ptr(int32(2)), TeamSize: ptr(int32(2))}, medium)
		require.ErrorIs(t, err, balancer.ErrInvalidParameters)
	})

	t.Run("invalid temperatures", func(t *testing.T) {
		req := &generateTeamsRequest{
			TeamCount:        ptr(int32(2)),
			FinalTemperature: ptr(5.0),
		}

		_, err := buildParameters(req, medium)

		require.ErrorIs(t, err, balancer.ErrInvalidParameters)
	})
}

func TestGenerateTeamsRequestValidation(t *testing.T) {
	h := newTestHandler(t)

	t.Run("valid request", func(t *testing.T) {
		req := generateTeamsRequest{
			Preset:          "small",
			TeamCount:       ptr(int32(3)),
			Weights:         &balancer.Weights{Timezone: 0.25, EHP: 0.25, EHB: 0.25, DailyHours: 0.25},
			SwapProbability: ptr(0.5),
			MoveProbability: ptr(0.5),
		}
		require.NoError(t, h.validate.Struct(req))
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		req := generateTeamsRequest{
			TeamCount: ptr(int32(3)),
			Weights:   &balancer.Weights{Timezone: 0.5, EHP: 0.5, EHB: 0.5},
		}
		require.Error(t, h.validate.Struct(req))
	})

	t.Run("probabilities must sum to one", func(t *testing.T) {
		req := generateTeamsRequest{
			TeamCount:       ptr(int32(3)),
			SwapProbability: ptr(0.5),
			MoveProbability: ptr(0.3),
		}
		require.Error(t, h.validate.Struct(req))
	})

	t.Run("unknown preset", func(t *testing.T) {
		req := generateTeamsRequest{Preset: "huge", TeamCount: ptr(int32(3))}
		require.Error(t, h.validate.Struct(req))
	})

	t.Run("unknown spread", func(t *testing.T) {
		req := generateTeamsRequest{Spread: ptr("median"), TeamCount: ptr(int32(3))}
		require.Error(t, h.validate.Struct(req))
	})
}

func newParticipants(n int, complete int) []*domain.Participant {
	participants := make([]*domain.Participant, n)
	for i := range participants {
		p := &domain.Participant{ID: int64(i + 1)}
		ehp := float64(100 + i*10)
		p.Metadata.EHP = &ehp
		if i < complete {
			ehb := float64(50 + i)
			tz := int32(i%24 - 12)
			hours := float64(i % 8)
			p.Metadata.EHB = &ehb
			p.Metadata.Timezone = &tz
			p.Metadata.DailyHours = &hours
		}
		participants[i] = p
	}
	return participants
}

func TestDecideBalanced(t *testing.T) {
	tests := []struct {
		name         string
		complete     int
		force        bool
		wantCoverage float64
		wantBalanced bool
	}{
		{"low coverage falls back to random", 3, false, 30, false},
		{"low coverage forced", 3, true, 30, true},
		{"coverage at threshold", 5, false, 50, true},
		{"full coverage", 10, false, 100, true},
		{"no metadata", 0, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coverage, balanced := decideBalanced(newParticipants(10, tt.complete), tt.force)

			require.InDelta(t, tt.wantCoverage, coverage, 1e-9)
			require.Equal(t, tt.wantBalanced, balanced)
		})
	}
}

func TestRunTeams(t *testing.T) {
	medium, ok := balancer.GetPreset(balancer.PresetMedium)
	require.True(t, ok)

	for _, tt := range []struct {
		name     string
		complete int
		force    bool
		want     []balancer.Termination
	}{
		{"random teams below the coverage threshold", 3, false, []balancer.Termination{balancer.TerminationRandom}},
		{"balanced teams when forced", 3, true, []balancer.Termination{balancer.TerminationIterations, balancer.TerminationStagnation, balancer.TerminationTemperature}},
		{"balanced teams with enough coverage", 8, false, []balancer.Termination{balancer.TerminationIterations, balancer.TerminationStagnation, balancer.TerminationTemperature}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			participants := newParticipants(10, tt.complete)
			params, err := buildParameters(&generateTeamsRequest{
				TeamCount:       ptr(int32(3)),
				Iterations:      ptr(int32(500)),
				StagnationLimit: ptr(int32(200)),
				RandomSeed:      ptr(int64(9)),
			}, medium)
			require.NoError(t, err)

			b, err := balancer.New(params, participants)
			require.NoError(t, err)

			_, balanced := decideBalanced(participants, tt.force)
			res, err := runTeams(b, balanced)

			require.NoError(t, err)
			require.Contains(t, tt.want, res.Termination)
			require.Equal(t, int32(10), res.ParticipantsAssigned)
		})
	}
}

func TestBalancingError(t *testing.T) {
	h := newTestHandler(t)

	for _, tt := range []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage bool
	}{
		{"invalid parameters", fmt.Errorf("%w: 迭代次数必须大于 0", balancer.ErrInvalidParameters), http.StatusOK, true},
		{"degenerate input", fmt.Errorf("%w: 参与者数量 (2) 少于队伍数量 (3)", balancer.ErrDegenerateInput), http.StatusOK, true},
		{"unexpected error", errors.New("connection reset"), http.StatusInternalServerError, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/events/1/teams/generate", nil)
			rec := httptest.NewRecorder()

			h.balancingError(rec, req, tt.err)

			var resp Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			require.Equal(t, tt.wantStatus, rec.Code)
			require.False(t, resp.Success)
			if tt.wantMessage {
				require.Equal(t, tt.err.Error(), resp.Message)
			} else {
				require.Equal(t, "服务器内部错误", resp.Message)
			}
		})
	}
}

func TestNewBalancingRun(t *testing.T) {
	participants := []*domain.Participant{{ID: 10}, {ID: 11}, {ID: 12}}
	res := &balancer.Result{
		Assignment:           map[int64]int32{10: 1, 11: 0, 12: 1},
		Teams:                [][]int64{{11}, {10, 12}},
		Energy:               0.25,
		TeamsCreated:         2,
		ParticipantsAssigned: 3,
		Iterations:           100,
		Termination:          balancer.TerminationStagnation,
		Seed:                 42,
	}

	run := newBalancingRun(5, balancer.PresetSmall, true, res)

	require.Equal(t, int64(5), run.EventID)
	require.Equal(t, "small", run.Preset)
	require.Equal(t, "stagnation", run.Termination)
	require.Len(t, run.Teams, 2)
	require.Equal(t, int32(1), run.Teams[1].Slot)
	require.Equal(t, []int64{10, 12}, run.Teams[1].MemberIDs)
	require.Equal(t, []int{1, 0, 1}, assignmentOf(participants, res))
}

func TestGetRecommendedPreset(t *testing.T) {
	h := newTestHandler(t)

	t.Run("small event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/balancing-presets/recommended?participants=30", nil)
		rec := httptest.NewRecorder()

		h.GetRecommendedPreset(rec, req)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Preset balancer.Preset `json:"preset"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.True(t, resp.Success)
		require.Equal(t, balancer.PresetSmall, resp.Data.Preset.Name)
	})

	t.Run("participant count too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/balancing-presets/recommended?participants=9223372036854775807", nil)
		rec := httptest.NewRecorder()

		h.GetRecommendedPreset(rec, req)

		var resp Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.False(t, resp.Success)
	})

	t.Run("invalid participant count", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/balancing-presets/recommended?participants=abc", nil)
		rec := httptest.NewRecorder()

		h.GetRecommendedPreset(rec, req)

		var resp Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.False(t, resp.Success)
	})
}
