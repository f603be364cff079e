package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/utils"
)

type participantRequest struct {
	Username   string   `json:"username" validate:"required,max=64"`
	EHP        *float64 `json:"ehp" validate:"omitempty,min=0"`
	EHB        *float64 `json:"ehb" validate:"omitempty,min=0"`
	Timezone   *int32   `json:"timezone" validate:"omitempty,min=-12,max=14"`
	DailyHours *float64 `json:"dailyHours" validate:"omitempty,min=0,max=24"`
}

func (h *Handler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	participants, err := h.repository.GetParticipantsByEventID(event.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取参与者成功", participants)
}

// CreateParticipants 批量导入参与者，元数据可以部分缺失
func (h *Handler) CreateParticipants(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	var req struct {
		Participants []participantRequest `json:"participants" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	seen := make(map[string]struct{}, len(req.Participants))
	participants := make([]*domain.Participant, 0, len(req.Participants))
	for _, item := range req.Participants {
		if _, exists := seen[item.Username]; exists {
			h.errorResponse(w, r, fmt.Sprintf("参与者 %s 重复出现", item.Username))
			return
		}
		seen[item.Username] = struct{}{}

		participants = append(participants, &domain.Participant{
			EventID:  event.ID,
			Username: item.Username,
			Metadata: domain.PlayerMetadata{
				EHP:        item.EHP,
				EHB:        item.EHB,
				Timezone:   item.Timezone,
				DailyHours: item.DailyHours,
			},
		})
	}

	if err := h.repository.InsertParticipants(participants); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "participants_event_id_username_key":
				h.errorResponse(w, r, "该活动中已存在同名参与者")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "添加参与者成功", participants)
}

// UpdateParticipant 未提供的字段保持不变，需要清空的元数据通过 clear 指定
func (h *Handler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ParticipantCtx).(*domain.Participant)

	var req struct {
		Username *string                `json:"username" validate:"omitempty,max=64"`
		Metadata *domain.PlayerMetadata `json:"metadata"`
		Clear    []string               `json:"clear" validate:"omitempty,dive,oneof=ehp ehb timezone dailyHours"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Username != nil {
		p.Username = *req.Username
	}
	if req.Metadata != nil {
		if req.Metadata.EHP != nil {
			p.Metadata.EHP = req.Metadata.EHP
		}
		if req.Metadata.EHB != nil {
			p.Metadata.EHB = req.Metadata.EHB
		}
		if req.Metadata.Timezone != nil {
			p.Metadata.Timezone = req.Metadata.Timezone
		}
		if req.Metadata.DailyHours != nil {
			p.Metadata.DailyHours = req.Metadata.DailyHours
		}
	}
	for _, field := range req.Clear {
		switch field {
		case "ehp":
			p.Metadata.EHP = nil
		case "ehb":
			p.Metadata.EHB = nil
		case "timezone":
			p.Metadata.Timezone = nil
		case "dailyHours":
			p.Metadata.DailyHours = nil
		}
	}

	if err := utils.ValidateParticipantMetadata(&p.Metadata); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateParticipant(p); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "参与者信息已被修改，请重试")
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "participants_event_id_username_key":
				h.errorResponse(w, r, "该活动中已存在同名参与者")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新参与者成功", p)
}

func (h *Handler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ParticipantCtx).(*domain.Participant)

	if err := h.repository.DeleteParticipant(p.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除参与者成功", nil)
}
