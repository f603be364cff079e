package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/balancer"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"
)

// 推荐预设时允许的最大参与者数量
const maxRecommendParticipants = 100000

// 概率之和的允许误差，和 balancer 中保持一致
const probabilityTolerance = 1e-6

type weightAdjustment struct {
	Metric string  `json:"metric" validate:"required,oneof=timezone ehp ehb dailyHours"`
	Value  float64 `json:"value" validate:"min=0,max=1"`
}

type generateTeamsRequest struct {
	Preset             string            `json:"preset" validate:"omitempty,oneof=small medium large custom"`
	TeamCount          *int32            `json:"teamCount" validate:"omitempty,min=1"`
	TeamSize           *int32            `json:"teamSize" validate:"omitempty,min=1"`
	Weights            *balancer.Weights `json:"weights"`
	AdjustWeight       *weightAdjustment `json:"adjustWeight"` // 修改某一项权重，其余各项按比例缩放
	Iterations         *int32            `json:"iterations" validate:"omitempty,min=1"`
	InitialTemperature *float64          `json:"initialTemperature" validate:"omitempty,gt=0"`
	FinalTemperature   *float64          `json:"finalTemperature" validate:"omitempty,gt=0"`
	StagnationLimit    *int32            `json:"stagnationLimit" validate:"omitempty,min=1"`
	SwapProbability    *float64          `json:"swapProbability" validate:"omitempty,min=0,max=1"`
	MoveProbability    *float64          `json:"moveProbability" validate:"omitempty,min=0,max=1"`
	Spread             *string           `json:"spread" validate:"omitempty,oneof=range variance"`
	RandomSeed         *int64            `json:"randomSeed"`
	Force              bool              `json:"force"` // 元数据覆盖率不足时仍然使用平衡分队
}

func registerBalancingValidations(validate *validator.Validate, trans ut.Translator) error {
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		weights := sl.Current().Interface().(balancer.Weights)
		if !weights.IsNormalized() {
			sl.ReportError(weights, "weights", "Weights", "weights_sum", "")
		}
	}, balancer.Weights{})

	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(generateTeamsRequest)
		if req.SwapProbability != nil && req.MoveProbability != nil &&
			math.Abs(*req.SwapProbability+*req.MoveProbability-1) > probabilityTolerance {
			sl.ReportError(req.MoveProbability, "moveProbability", "MoveProbability", "probability_sum", "")
		}
	}, generateTeamsRequest{})

	translations := map[string]string{
		"weights_sum":     "各项指标的权重必须非负且之和为 1",
		"probability_sum": "交换概率和迁移概率之和必须为 1",
	}
	for tag, text := range translations {
		err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag())
			return t
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// resolvePreset 未指定预设时使用配置中的默认预设，默认预设也为空时根据参与者数量推荐
func resolvePreset(name string, defaultName string, participantCount int) (balancer.Preset, error) {
	if name == "" {
		name = defaultName
	}
	if name == "" {
		return balancer.RecommendPreset(participantCount), nil
	}

	preset, ok := balancer.GetPreset(balancer.PresetName(name))
	if !ok {
		return balancer.Preset{}, fmt.Errorf("%w: 预设 %s 不存在", balancer.ErrInvalidParameters, name)
	}
	return preset, nil
}

// buildParameters 以预设为基础，用请求中给出的字段覆盖对应的参数
func buildParameters(req *generateTeamsRequest, preset balancer.Preset) (*balancer.Parameters, error) {
	if (req.TeamCount == nil) == (req.TeamSize == nil) {
		return nil, fmt.Errorf("%w: 队伍数量和每队人数必须且只能指定一个", balancer.ErrInvalidParameters)
	}

	parameters := preset.Parameters

	if req.TeamCount != nil {
		parameters.TeamCount = *req.TeamCount
	}
	if req.TeamSize != nil {
		parameters.TeamSize = *req.TeamSize
	}
	if req.Weights != nil {
		parameters.Weights = *req.Weights
	}
	if req.AdjustWeight != nil {
		metric, ok := balancer.ParseMetric(req.AdjustWeight.Metric)
		if !ok {
			return nil, fmt.Errorf("%w: 指标 %s 不存在", balancer.ErrInvalidParameters, req.AdjustWeight.Metric)
		}
		parameters.Weights = parameters.Weights.Adjust(metric, req.AdjustWeight.Value)
	}
	if req.Iterations != nil {
		parameters.Iterations = *req.Iterations
	}
	if req.InitialTemperature != nil {
		parameters.InitialTemperature = *req.InitialTemperature
	}
	if req.FinalTemperature != nil {
		parameters.FinalTemperature = *req.FinalTemperature
	}
	if req.StagnationLimit != nil {
		parameters.StagnationLimit = *req.StagnationLimit
	}

	// 只给出其中一个概率时，另一个自动补齐
	switch {
	case req.SwapProbability != nil && req.MoveProbability != nil:
		parameters.SwapProbability = *req.SwapProbability
		parameters.MoveProbability = *req.MoveProbability
	case req.SwapProbability != nil:
		parameters.SwapProbability = *req.SwapProbability
		parameters.MoveProbability = 1 - *req.SwapProbability
	case req.MoveProbability != nil:
		parameters.MoveProbability = *req.MoveProbability
		parameters.SwapProbability = 1 - *req.MoveProbability
	}

	if req.Spread != nil {
		parameters.Spread = balancer.SpreadKind(*req.Spread)
	}
	parameters.RandomSeed = req.RandomSeed

	if err := parameters.Validate(); err != nil {
		return nil, err
	}

	return &parameters, nil
}

// decideBalanced 元数据覆盖率不足时使用随机分队，除非请求强制使用平衡分队
func decideBalanced(participants []*domain.Participant, force bool) (float64, bool) {
	coverage := balancer.MetadataCoverage(participants)
	return coverage, force || balancer.CanUseBalanced(coverage)
}

func runTeams(b *balancer.Balancer, balanced bool) (*balancer.Result, error) {
	if !balanced {
		return b.RandomTeams(), nil
	}
	return b.Balance()
}

// assignmentOf 将结果转换回和参与者顺序一致的队伍编号
func assignmentOf(participants []*domain.Participant, res *balancer.Result) []int {
	assignment := make([]int, len(participants))
	for i, p := range participants {
		assignment[i] = int(res.Assignment[p.ID])
	}
	return assignment
}

func newBalancingRun(eventID int64, preset balancer.PresetName, balanced bool, res *balancer.Result) *domain.BalancingRun {
	run := &domain.BalancingRun{
		EventID:              eventID,
		Preset:               string(preset),
		Balanced:             balanced,
		ObjectiveScore:       res.Energy,
		TeamsCreated:         res.TeamsCreated,
		ParticipantsAssigned: res.ParticipantsAssigned,
		Iterations:           res.Iterations,
		Termination:          string(res.Termination),
		Seed:                 res.Seed,
		Teams:                make([]domain.Team, len(res.Teams)),
	}

	for i, members := range res.Teams {
		run.Teams[i] = domain.Team{
			Name:      fmt.Sprintf("第 %d 队", i+1),
			Slot:      int32(i),
			MemberIDs: members,
		}
	}

	return run
}

func (h *Handler) GetBalancingPresets(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取分队预设成功", balancer.Presets())
}

func (h *Handler) GetRecommendedPreset(w http.ResponseWriter, r *http.Request) {
	participantCount, err := strconv.Atoi(r.URL.Query().Get("participants"))
	if err != nil || participantCount < 0 {
		h.errorResponse(w, r, "参与者数量无效")
		return
	}
	if participantCount > maxRecommendParticipants {
		h.errorResponse(w, r, fmt.Sprintf("参与者数量不能超过 %d", maxRecommendParticipants))
		return
	}

	preset := balancer.RecommendPreset(participantCount)

	h.successResponse(w, r, "获取推荐预设成功", map[string]any{
		"preset":           preset,
		"estimatedRuntime": balancer.EstimateRuntime(preset.Parameters.Iterations, participantCount).Seconds(),
	})
}

func (h *Handler) GetEventCoverage(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	participants, err := h.repository.GetParticipantsByEventID(event.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	coverage := balancer.MetadataCoverage(participants)

	h.successResponse(w, r, "获取元数据覆盖率成功", map[string]any{
		"participants":   len(participants),
		"coverage":       coverage,
		"canUseBalanced": balancer.CanUseBalanced(coverage),
	})
}

func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	run, err := h.repository.GetBalancingRunByEventID(event.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该活动还没有分队")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取分队结果成功", run)
}

func (h *Handler) GenerateTeams(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req generateTeamsRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	participants, err := h.repository.GetParticipantsByEventID(event.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	preset, err := resolvePreset(req.Preset, h.config.Balancer.DefaultPreset, len(participants))
	if err != nil {
		h.balancingError(w, r, err)
		return
	}

	parameters, err := buildParameters(&req, preset)
	if err != nil {
		h.balancingError(w, r, err)
		return
	}

	// 限制迭代次数，保证请求能够在超时之前完成
	if parameters.Iterations > h.config.Balancer.MaxIterations {
		parameters.Iterations = h.config.Balancer.MaxIterations
	}
	estimated := balancer.EstimateRuntime(parameters.Iterations, len(participants))
	if estimated > time.Duration(h.config.Balancer.MaxRuntime)*time.Second {
		h.errorResponse(w, r, fmt.Sprintf("预计运行时间 %.1f 秒超过上限，请减少迭代次数", estimated.Seconds()))
		return
	}

	coverage, balanced := decideBalanced(participants, req.Force)

	b, err := balancer.New(parameters, participants)
	if err != nil {
		h.balancingError(w, r, err)
		return
	}

	// 同一个活动同时只允许进行一次分队
	lockKey := fmt.Sprintf("balancing_lock_event_%d", event.ID)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	locked, err := h.redisClient.SetNX(ctx, lockKey, myInfo.ID, time.Duration(h.config.Balancer.LockExpiration)*time.Second).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "该活动正在分队，请稍后再试")
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
		defer cancel()

		if err := h.redisClient.Del(ctx, lockKey).Err(); err != nil {
			slog.Error("释放分队锁失败", "event", event.ID, "error", err)
		}
	}()

	res, err := runTeams(b, balanced)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateBalancingResult(participants, res.Teams); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	slog.Info(
		"分队完成",
		"event", event.ID,
		"participants", res.ParticipantsAssigned,
		"teams", res.TeamsCreated,
		"energy", res.Energy,
		"iterations", res.Iterations,
		"termination", res.Termination,
		"duration", res.Duration,
	)

	run := newBalancingRun(event.ID, preset.Name, balanced, res)
	if err := h.repository.InsertBalancingRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 结果已经保存，邮件发送失败不影响本次分队
	if err := h.publishMail(domain.MailMessage{
		Type: "balancing_finished",
		To:   myInfo.Email,
		Data: domain.BalancingFinishedMailData{
			FullName:             myInfo.FullName,
			EventName:            event.Name,
			Balanced:             balanced,
			TeamsCreated:         run.TeamsCreated,
			ParticipantsAssigned: run.ParticipantsAssigned,
			ObjectiveScore:       run.ObjectiveScore,
		},
	}); err != nil {
		slog.Error("发送分队完成邮件失败", "event", event.ID, "error", err)
	}

	h.successResponse(w, r, "分队成功", map[string]any{
		"teamsCreated":         res.TeamsCreated,
		"participantsAssigned": res.ParticipantsAssigned,
		"objectiveScore":       res.Energy,
		"balanced":             balanced,
		"coverage":             coverage,
		"spreads":              b.Objective().Spreads(assignmentOf(participants, res), b.TeamCount()),
		"run":                  run,
		"result":               res,
	})
}
