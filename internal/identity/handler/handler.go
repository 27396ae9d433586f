// Package handler is the thin HTTP layer for the identity feature. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cipherid/internal/crypto/envelope"
	"cipherid/internal/identity/models"
	"cipherid/internal/platform/metrics"
	"cipherid/internal/platform/middleware"
	"cipherid/internal/transport/http/shared"
	dErrors "cipherid/pkg/domain-errors"
)

// Service defines the interface for identity operations.
type Service interface {
	Register(ctx context.Context, req *models.RegistrationRequest) (int64, error)
	Verify(ctx context.Context, req *models.VerificationRequest) (envelope.Envelope, error)
	Status(ctx context.Context, lookupKey string) (*models.RecordStatus, error)
}

// Handler handles identity registration and verification endpoints.
type Handler struct {
	logger    *slog.Logger
	identity  Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new identity Handler.
func New(identity Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		identity:  identity,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	public := chi.NewRouter()
	public.Use(middleware.Recovery(h.logger))
	public.Use(middleware.RequestID)
	public.Use(middleware.Logger(h.logger))
	public.Use(middleware.Timeout(30 * time.Second))
	public.Use(middleware.ContentTypeJSON)
	if h.metrics != nil {
		public.Use(middleware.Latency(h.metrics))
	}
	public.Post("/identity/register", h.handleRegister)
	public.Post("/identity/verify", h.handleVerify)

	admin := chi.NewRouter()
	admin.Use(middleware.Recovery(h.logger))
	admin.Use(middleware.RequestID)
	admin.Use(middleware.Logger(h.logger))
	admin.Use(middleware.RequireAdmin(h.validator, h.logger))
	admin.Get("/records/{lookupKey}", h.handleRecordStatus)

	r.Mount("/", public)
	r.Mount("/admin", admin)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid registration request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	id, err := h.identity.Register(ctx, &req)
	if err != nil {
		h.logClientOrServer(ctx, "registration failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, models.RegisterResponse{ID: id})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid verification request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.identity.Verify(ctx, &req)
	if err != nil {
		h.logClientOrServer(ctx, "verification failed", err)
		shared.WriteError(w, err)
		return
	}

	wire, err := result.Marshal()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to serialize encrypted result",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to serialize encrypted result"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, models.VerifyResponse{EncryptedResult: string(wire)})
}

func (h *Handler) handleRecordStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lookupKey := chi.URLParam(r, "lookupKey")
	status, err := h.identity.Status(ctx, lookupKey)
	if err != nil {
		h.logClientOrServer(ctx, "record status lookup failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, status)
}

// logClientOrServer logs client-class failures at warn and everything else at
// error, always without attribute plaintext.
func (h *Handler) logClientOrServer(ctx context.Context, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err.Error())
		return
	}
	h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err.Error())
}
