package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rakesh-tirumalaparapu/zipp/internal/document/models"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/metrics"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/middleware"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/httputil"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/middleware/metadata"
)

const defaultMaxBytes = 10 << 20

type Service interface {
	Upload(ctx context.Context, req *models.UploadRequest) (*models.Document, error)
	Get(ctx context.Context, documentID id.DocumentID) (*models.Document, error)
	ListTypes(ctx context.Context, applicationNumber string) ([]string, error)
	ListIDs(ctx context.Context, applicationNumber string) ([]models.IDResponse, error)
}

// Handler serves /documents. Uploads are multipart, so the JSON content-type
// gate used elsewhere is not applied here.
type Handler struct {
	service      Service
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	maxBytes     int64
}

func New(service Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Handler{
		service:      service,
		logger:       logger,
		metrics:      metrics,
		jwtValidator: jwtValidator,
		maxBytes:     maxBytes,
	}
}

func (h *Handler) Register(r chi.Router) {
	docRouter := chi.NewRouter()
	docRouter.Use(middleware.Recovery(h.logger))
	docRouter.Use(middleware.RequestID)
	docRouter.Use(metadata.ClientMetadata)
	docRouter.Use(middleware.Logger(h.logger))
	docRouter.Use(middleware.Timeout(60 * time.Second))
	docRouter.Use(middleware.LatencyMiddleware(h.metrics))
	docRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	docRouter.Post("/upload", h.HandleUpload)
	docRouter.Get("/application/{number}", h.HandleListTypes)
	docRouter.Get("/application/{number}/ids", h.HandleListIDs)
	docRouter.Get("/{id}", h.HandleDownload)

	r.Mount("/documents", docRouter)
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, err := h.readUpload(w, r)
	if err != nil {
		h.logFailure(ctx, "document upload rejected", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Upload(ctx, req)
	if err != nil {
		h.logFailure(ctx, "document upload failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UploadResponse{
		ID:           doc.ID,
		DocumentType: doc.Type,
		Message:      "Document uploaded successfully",
	})
}

// readUpload parses the multipart form fields applicationId, documentType and file.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*models.UploadRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Document exceeds the maximum size of "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart form")
	}
	docType, err := models.ParseDocumentType(r.FormValue("documentType"))
	if err != nil {
		return nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Document file is required")
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Document exceeds the maximum size of "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read document")
	}
	if int64(len(data)) > h.maxBytes {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Document exceeds the maximum size of "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
	}
	return &models.UploadRequest{
		ApplicationNumber: r.FormValue("applicationId"),
		Type:              docType,
		Name:              header.Filename,
		ContentType:       header.Header.Get("Content-Type"),
		Data:              data,
	}, nil
}

// HandleDownload writes the stored bytes unchanged as an attachment.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	documentID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "document download failed", requestID, err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid document id"))
		return
	}
	doc, err := h.service.Get(ctx, documentID)
	if err != nil {
		h.logFailure(ctx, "document download failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.logger.WarnContext(ctx, "document download interrupted", "request_id", requestID, "error", err)
	}
}

func (h *Handler) HandleListTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	types, err := h.service.ListTypes(ctx, chi.URLParam(r, "number"))
	if err != nil {
		h.logFailure(ctx, "list document types failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) HandleListIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ids, err := h.service.ListIDs(ctx, chi.URLParam(r, "number"))
	if err != nil {
		h.logFailure(ctx, "list document ids failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ids)
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
		return
	}
	h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
}
