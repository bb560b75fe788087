package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	interviewHandler "github.com/yuhengc/prepmate/backend/internal/handler/interview"
	"github.com/yuhengc/prepmate/backend/internal/handler/live"
	middlewarePkg "github.com/yuhengc/prepmate/backend/internal/middleware"
	interviewService "github.com/yuhengc/prepmate/backend/internal/service/interview"
	"github.com/yuhengc/prepmate/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(interviewSvc *interviewService.Service, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		interviewHandler.New(interviewSvc, logger).RegisterRoutes(api)
		live.New(interviewSvc, logger).RegisterRoutes(api)
	})

	return r
}
