package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/metrics"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/middleware"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/httputil"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/middleware/metadata"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the workflow surface exposed to customers, makers and checkers.
type Service interface {
	Submit(ctx context.Context, customerID id.UserID, payload *models.ApplicationPayload) (*models.ApplicationView, error)
	Resubmit(ctx context.Context, customerID id.UserID, number string, payload *models.ApplicationPayload) (*models.ApplicationView, error)
	MakerReview(ctx context.Context, number string, makerID id.UserID, action models.Action, comment string) (*models.ApplicationView, error)
	CheckerReview(ctx context.Context, number string, checkerID id.UserID, action models.Action, comment string) (*models.ApplicationView, error)
	Get(ctx context.Context, number string) (*models.ApplicationView, error)
	GetForCustomer(ctx context.Context, customerID id.UserID, number string) (*models.ApplicationView, error)
	ListForCustomer(ctx context.Context, customerID id.UserID) ([]models.ApplicationSummary, error)
	ListByStatus(ctx context.Context, filter string) ([]models.ApplicationSummary, error)
	ListForChecker(ctx context.Context) ([]models.ApplicationSummary, error)
	DashboardStats(ctx context.Context, role id.Role, userID id.UserID) (*models.DashboardStats, error)
}

type Handler struct {
	service      Service
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register mounts one router per role. Each admits only its role.
func (h *Handler) Register(r chi.Router) {
	customerRouter := h.roleRouter(id.RoleCustomer)
	customerRouter.Post("/applications", h.HandleSubmit)
	customerRouter.Get("/applications", h.HandleCustomerList)
	customerRouter.Get("/applications/{number}", h.HandleCustomerGet)
	customerRouter.Put("/applications/{number}", h.HandleResubmit)
	customerRouter.Get("/dashboard/stats", h.HandleDashboardStats)
	r.Mount("/customer", customerRouter)

	makerRouter := h.roleRouter(id.RoleMaker)
	makerRouter.Get("/applications", h.HandleMakerList)
	makerRouter.Get("/applications/{number}", h.HandleGet)
	makerRouter.Post("/applications/{number}/review", h.HandleMakerReview)
	makerRouter.Get("/dashboard/stats", h.HandleDashboardStats)
	r.Mount("/maker", makerRouter)

	checkerRouter := h.roleRouter(id.RoleChecker)
	checkerRouter.Get("/applications", h.HandleCheckerList)
	checkerRouter.Get("/applications/{number}", h.HandleGet)
	checkerRouter.Post("/applications/{number}/review", h.HandleCheckerReview)
	checkerRouter.Get("/dashboard/stats", h.HandleDashboardStats)
	r.Mount("/checker", checkerRouter)
}

func (h *Handler) roleRouter(role id.Role) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(metadata.ClientMetadata)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Use(middleware.RequireRole(h.logger, role))
	return router
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var payload models.ApplicationPayload
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		h.logFailure(ctx, "invalid application body", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Submit(ctx, requestcontext.UserID(ctx), &payload)
	if err != nil {
		h.logFailure(ctx, "submit application failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) HandleResubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var payload models.ApplicationPayload
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		h.logFailure(ctx, "invalid application body", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.Resubmit(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "number"), &payload)
	if err != nil {
		h.logFailure(ctx, "resubmit application failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleCustomerList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.ListForCustomer(ctx, requestcontext.UserID(ctx))
	h.writeList(w, r, list, err)
}

func (h *Handler) HandleCustomerGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.GetForCustomer(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "number"))
	h.writeView(w, r, view, err)
}

func (h *Handler) HandleMakerList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByStatus(r.Context(), r.URL.Query().Get("status"))
	h.writeList(w, r, list, err)
}

func (h *Handler) HandleCheckerList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForChecker(r.Context())
	h.writeList(w, r, list, err)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "number"))
	h.writeView(w, r, view, err)
}

func (h *Handler) HandleMakerReview(w http.ResponseWriter, r *http.Request) {
	h.handleReview(w, r, h.service.MakerReview)
}

func (h *Handler) HandleCheckerReview(w http.ResponseWriter, r *http.Request) {
	h.handleReview(w, r, h.service.CheckerReview)
}

type reviewFunc func(ctx context.Context, number string, actorID id.UserID, action models.Action, comment string) (*models.ApplicationView, error)

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request, review reviewFunc) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := review(ctx, chi.URLParam(r, "number"), requestcontext.UserID(ctx), req.ParsedAction, req.Comment)
	if err != nil {
		h.logFailure(ctx, "review failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleDashboardStats answers for the caller's role, which RequireRole has
// already pinned to the router's role.
func (h *Handler) HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	stats, err := h.service.DashboardStats(ctx, requestcontext.Role(ctx), requestcontext.UserID(ctx))
	if err != nil {
		h.logFailure(ctx, "dashboard stats failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, view *models.ApplicationView, err error) {
	if err != nil {
		ctx := r.Context()
		h.logFailure(ctx, "get application failed", middleware.GetRequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, list []models.ApplicationSummary, err error) {
	if err != nil {
		ctx := r.Context()
		h.logFailure(ctx, "list applications failed", middleware.GetRequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}
	if list == nil {
		list = []models.ApplicationSummary{}
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
}
