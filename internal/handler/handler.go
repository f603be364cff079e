package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerBalancingValidations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	organizerOnly := h.RequiredRole([]domain.Role{domain.RoleOrganizer})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.With(h.myInfo).Get("/my-info", h.GetMyInfo)

		r.Route("/balancing-presets", func(r chi.Router) {
			r.Get("/", h.GetBalancingPresets)
			r.Get("/recommended", h.GetRecommendedPreset)
		})

		r.Route("/events", func(r chi.Router) {
			r.With(organizerOnly).With(h.myInfo).Post("/", h.CreateEvent)
			r.Get("/", h.GetAllEvents)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.event)
				r.Get("/", h.GetEvent)
				r.With(organizerOnly).Patch("/", h.UpdateEvent)
				r.With(organizerOnly).Delete("/", h.DeleteEvent)
				r.Get("/coverage", h.GetEventCoverage)

				r.Route("/participants", func(r chi.Router) {
					r.Get("/", h.GetParticipants)
					r.With(organizerOnly).Post("/", h.CreateParticipants)
					r.Route("/{participantID}", func(r chi.Router) {
						r.Use(organizerOnly)
						r.Use(h.participant)
						r.Patch("/", h.UpdateParticipant)
						r.Delete("/", h.DeleteParticipant)
					})
				})

				r.Route("/teams", func(r chi.Router) {
					r.Get("/", h.GetTeams)
					r.With(organizerOnly).With(h.myInfo).Post("/generate", h.GenerateTeams)
				})
			})
		})
	})
}
