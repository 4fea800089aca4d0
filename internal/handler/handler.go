package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	coordinator Coordinator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, coordinator Coordinator) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		coordinator: coordinator,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.requireRole(domain.RoleHeadCoach)).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.requireRole(domain.RoleHeadCoach), h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
			})
		})

		// 所有教练都可以维护球员名单和比赛
		r.Route("/players", func(r chi.Router) {
			r.Post("/", h.CreatePlayer)
			r.Get("/", h.GetAllPlayers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.playerInfo)
				r.Get("/", h.GetPlayer)
				r.Patch("/", h.UpdatePlayer)
				r.Delete("/", h.DeletePlayer)
			})
		})

		// 权限检查放在读取比赛之前，无权限的请求不会访问数据库
		r.Route("/games", func(r chi.Router) {
			r.Post("/", h.CreateGame)
			r.Get("/", h.GetAllGames)
			r.Route("/{id}", func(r chi.Router) {
				r.With(h.gameInfo).Get("/", h.GetGame)
				r.With(h.requireRole(domain.RoleHeadCoach), h.gameInfo).Delete("/", h.DeleteGame)
				r.Route("/lineup", func(r chi.Router) {
					r.With(h.gameInfo, h.lineupInfo).Get("/", h.GetLineup)
					r.With(h.gameInfo, h.lineupInfo).Get("/csv", h.GetLineupCSV)
					r.With(h.lineupManager, h.gameInfo, h.lineupGenerationLock).Post("/generate", h.GenerateLineup)
					r.With(h.lineupManager, h.gameInfo, h.lineupInfo).Post("/publish", h.PublishLineup)
				})
			})
		})
	})
}
