package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/metrics"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/middleware"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/httputil"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/middleware/metadata"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/requestcontext"
)

// Service is the inbox surface used by the handler.
type Service interface {
	List(ctx context.Context, userID id.UserID) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID id.UserID) (int, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID, userID id.UserID) error
}

// Handler serves the /notifications inbox for any authenticated role.
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

func (h *Handler) Register(r chi.Router) {
	inboxRouter := chi.NewRouter()
	inboxRouter.Use(middleware.Recovery(h.logger))
	inboxRouter.Use(middleware.RequestID)
	inboxRouter.Use(metadata.ClientMetadata)
	inboxRouter.Use(middleware.Logger(h.logger))
	inboxRouter.Use(middleware.Timeout(30 * time.Second))
	inboxRouter.Use(middleware.ContentTypeJSON)
	inboxRouter.Use(middleware.LatencyMiddleware(h.metrics))
	inboxRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	inboxRouter.Get("/", h.HandleList)
	inboxRouter.Get("/unread-count", h.HandleUnreadCount)
	inboxRouter.Post("/{id}/read", h.HandleMarkRead)

	r.Mount("/notifications", inboxRouter)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	list, err := h.service.List(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logFailure(ctx, "list notifications failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]models.Response, 0, len(list))
	for _, n := range list {
		out = append(out, models.ToResponse(n))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	count, err := h.service.UnreadCount(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logFailure(ctx, "unread count failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UnreadCountResponse{Count: count})
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "mark read failed", requestID, err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid notification id"))
		return
	}
	if err := h.service.MarkRead(ctx, notificationID, requestcontext.UserID(ctx)); err != nil {
		h.logFailure(ctx, "mark read failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
}
