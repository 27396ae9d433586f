// Package service orchestrates registration and verification over the
// encrypted attribute store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"cipherid/internal/audit"
	"cipherid/internal/crypto/cipher"
	"cipherid/internal/crypto/envelope"
	"cipherid/internal/crypto/evaluator"
	"cipherid/internal/identity/metrics"
	"cipherid/internal/identity/models"
	"cipherid/internal/identity/store/record"
	"cipherid/internal/platform/middleware"
	dErrors "cipherid/pkg/domain-errors"
	"cipherid/pkg/platform/sentinel"
)

// Service implements the identity record manager. It is stateless and
// re-entrant: all mutable state lives behind the record store.
type Service struct {
	store     record.Store
	cipher    *cipher.Cipher
	evaluator evaluator.Evaluator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     *audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func New(store record.Store, c *cipher.Cipher, eval evaluator.Evaluator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if c == nil {
		return nil, fmt.Errorf("cipher is required")
	}
	if eval == nil {
		return nil, fmt.Errorf("evaluator is required")
	}

	svc := &Service{
		store:     store,
		cipher:    c,
		evaluator: eval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Register validates the raw attributes, encrypts each one independently, and
// persists the bundle under the one-way lookup key. The raw passport
// identifier is hashed and discarded; it never reaches the store.
func (s *Service) Register(ctx context.Context, req *models.RegistrationRequest) (int64, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return 0, err
	}

	lookupKey := models.DeriveLookupKey(req.PassportID)

	bundle := models.Bundle{}
	fields := map[string]envelope.Value{
		models.FieldFullName:         envelope.String(req.FullName),
		models.FieldAge:              envelope.Int(req.Age),
		models.FieldExpiryDate:       envelope.String(req.ExpiryDate),
		models.FieldVerificationCode: envelope.String(req.VerificationCode),
	}
	for name, value := range fields {
		ct, err := s.cipher.Encrypt(value)
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encrypt attribute")
		}
		bundle[name] = ct
	}

	id, err := s.store.Create(ctx, &models.Record{LookupKey: lookupKey, Bundle: bundle})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.DuplicateRegistrations.Inc()
			}
			return 0, dErrors.Wrap(err, dErrors.CodeConflict, "identity already registered for this passport")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist identity record")
	}

	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}
	s.emitAudit(ctx, audit.ActionIdentityRegistered, lookupKey, "")
	s.logger.InfoContext(ctx, "identity registered",
		"request_id", middleware.GetRequestID(ctx),
		"record_id", id,
	)
	return id, nil
}

// Verify evaluates an encrypted query against the stored bundle and returns
// the encrypted aggregate result. The service never learns the match bit.
//
// A lookup key with no record gets a distinguishable not-found response. That
// leaks registration status by hash; a hardened deployment that cannot accept
// enumeration should substitute a uniform encrypted-failure response at the
// transport boundary.
func (s *Service) Verify(ctx context.Context, req *models.VerificationRequest) (envelope.Envelope, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return envelope.Envelope{}, err
	}

	rec, err := s.store.FindByLookupKey(ctx, req.PassportHash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			if s.metrics != nil {
				s.metrics.VerificationsNotFound.Inc()
			}
			return envelope.Envelope{}, dErrors.Wrap(err, dErrors.CodeNotFound, "no identity registered for this hash")
		}
		return envelope.Envelope{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
	}

	// Deterministic field order keeps evaluation reproducible under test.
	fields := make([]string, 0, len(req.EncryptedQuery))
	for field := range req.EncryptedQuery {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	results := make([]envelope.Envelope, 0, len(fields))
	for _, field := range fields {
		queryCT, err := envelope.Parse([]byte(req.EncryptedQuery[field]))
		if err != nil {
			return envelope.Envelope{}, err
		}

		storedCT, ok := rec.Bundle[field]
		if !ok {
			// A field the stored bundle lacks is a guaranteed mismatch,
			// not a fault: contribute an encrypted 0.
			zero, err := s.cipher.Encrypt(envelope.Int(0))
			if err != nil {
				return envelope.Envelope{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encrypt mismatch bit")
			}
			results = append(results, zero)
			continue
		}

		eq, err := s.evaluator.FieldEquals(queryCT, storedCT)
		if err != nil {
			return envelope.Envelope{}, err
		}
		results = append(results, eq)
	}

	aggregate, err := s.evaluator.AggregateAnd(results)
	if err != nil {
		return envelope.Envelope{}, err
	}

	if s.metrics != nil {
		s.metrics.VerificationsTotal.Inc()
	}
	s.emitAudit(ctx, audit.ActionIdentityVerified, req.PassportHash, "")
	return aggregate, nil
}

// Status reports whether a lookup key is registered, for the admin surface.
func (s *Service) Status(ctx context.Context, lookupKey string) (*models.RecordStatus, error) {
	rec, err := s.store.FindByLookupKey(ctx, lookupKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "no identity registered for this hash")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity record")
	}
	return &models.RecordStatus{Registered: true, CreatedAt: rec.CreatedAt}, nil
}

func (s *Service) emitAudit(ctx context.Context, action, lookupKey, detail string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Action:    action,
		Subject:   audit.SubjectFromLookupKey(lookupKey),
		RequestID: middleware.GetRequestID(ctx),
		Detail:    detail,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"error", err.Error(),
		)
	}
}
