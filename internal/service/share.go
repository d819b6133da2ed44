package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloudvault/internal/events"
	"cloudvault/internal/metrics"
	"cloudvault/internal/model"
	"cloudvault/internal/repository"
	"cloudvault/internal/storage"
)

const (
	tokenBytes          = 32
	tokenAttempts       = 3
	defaultShareDays    = 7
	shareNotFoundTarget = "share"
)

// ResolvedShare is what an anonymous caller receives for a usable share token.
type ResolvedShare struct {
	URL       string           `json:"url"`
	ExpiresAt time.Time        `json:"expiresAt"`
	File      model.SharedFile `json:"file"`
}

// ShareService issues, resolves and revokes share tokens.
//
// A share is usable while it is active, unexpired and its file is not soft-deleted.
// Deactivation is terminal; the expiry sweep is the only autonomous transition.
type ShareService interface {
	// Create issues a share for an owned live file. A nil expiresAt defaults to the configured number of days.
	Create(ctx context.Context, fileID, ownerID string, expiresAt *time.Time) (*model.Share, error)

	// Resolve returns a fresh signed URL for a usable token. Any unusable state is reported as not found.
	Resolve(ctx context.Context, token string) (*ResolvedShare, error)

	List(ctx context.Context, ownerID string) ([]model.ShareWithFile, error)

	// Deactivate revokes an owned share. Revoking an inactive share succeeds.
	Deactivate(ctx context.Context, shareID, ownerID string) error

	// SweepExpired deactivates every active share past its expiry and returns how many changed.
	SweepExpired(ctx context.Context) (int64, error)
}

// ShareOptions carries the optional collaborators of the share service.
type ShareOptions struct {
	DefaultExpiryDays int
	SignedURLTTL      time.Duration
	Events            events.Publisher
	Metrics           *metrics.Metrics
}

type shareService struct {
	shares     repository.ShareRepository
	files      repository.FileRepository
	store      storage.Storage
	expiryDays int
	urlTTL     time.Duration
	events     events.Publisher
	metrics    *metrics.Metrics
	now        func() time.Time
	newToken   func() (string, error)
}

func NewShareService(shares repository.ShareRepository, files repository.FileRepository, store storage.Storage, opts ShareOptions) ShareService {
	if opts.DefaultExpiryDays <= 0 {
		opts.DefaultExpiryDays = defaultShareDays
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = defaultSignedURLTTL
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	return &shareService{
		shares:     shares,
		files:      files,
		store:      store,
		expiryDays: opts.DefaultExpiryDays,
		urlTTL:     opts.SignedURLTTL,
		events:     opts.Events,
		metrics:    opts.Metrics,
		now:        time.Now,
		newToken:   randomToken,
	}
}

func (s *shareService) Create(ctx context.Context, fileID, ownerID string, expiresAt *time.Time) (*model.Share, error) {
	if !isUUID(fileID) {
		return nil, notFound("file")
	}
	if _, err := s.files.FindByID(ctx, fileID, ownerID, false); err != nil {
		return nil, mapNotFound(err, "file")
	}

	now := s.now().UTC()
	exp := now.AddDate(0, 0, s.expiryDays)
	if expiresAt != nil {
		if !expiresAt.After(now) {
			return nil, validationf("expiresAt must be in the future")
		}
		exp = expiresAt.UTC()
	}

	for attempt := 1; ; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return nil, err
		}
		created, err := s.shares.Create(ctx, &model.Share{
			ID:          newID(),
			Token:       token,
			ExpiresAt:   exp,
			IsActive:    true,
			FileID:      fileID,
			CreatedByID: ownerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if errors.Is(err, repository.ErrDuplicate) && attempt < tokenAttempts {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save share: %w", err)
		}

		s.metrics.ShareCreated()
		s.events.Publish(ctx, events.New(events.ShareCreated, ownerID, created.ID, map[string]any{
			"fileId":    fileID,
			"expiresAt": created.ExpiresAt,
		}))
		return created, nil
	}
}

func (s *shareService) Resolve(ctx context.Context, token string) (_ *ResolvedShare, err error) {
	ctx, span := tracer.Start(ctx, "ShareService.Resolve")
	defer func() { endSpan(span, err) }()

	if token == "" {
		s.metrics.ShareResolved(metrics.ResolveNotFound)
		return nil, notFound(shareNotFoundTarget)
	}
	rs, err := s.shares.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.ShareResolved(metrics.ResolveNotFound)
		return nil, notFound(shareNotFoundTarget)
	}
	if err != nil {
		return nil, err
	}
	if !rs.Usable(s.now()) || rs.FileIsDeleted {
		s.metrics.ShareResolved(metrics.ResolveNotFound)
		return nil, notFound(shareNotFoundTarget)
	}

	u, err := s.store.PresignGet(ctx, rs.FileStorageKey, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("sign url: %w", err)
	}
	s.metrics.ShareResolved(metrics.ResolveOK)
	return &ResolvedShare{
		URL:       u,
		ExpiresAt: rs.ExpiresAt,
		File: model.SharedFile{
			ID:           rs.FileID,
			OriginalName: rs.FileOriginalName,
			Size:         rs.FileSize,
			MimeType:     rs.FileMimeType,
		},
	}, nil
}

func (s *shareService) List(ctx context.Context, ownerID string) ([]model.ShareWithFile, error) {
	return s.shares.ListByCreator(ctx, ownerID)
}

func (s *shareService) Deactivate(ctx context.Context, shareID, ownerID string) error {
	if !isUUID(shareID) {
		return notFound(shareNotFoundTarget)
	}
	if err := s.shares.Deactivate(ctx, shareID, ownerID); err != nil {
		return mapNotFound(err, shareNotFoundTarget)
	}
	s.events.Publish(ctx, events.New(events.ShareDeactivated, ownerID, shareID, nil))
	return nil
}

func (s *shareService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.shares.DeactivateExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.metrics.SharesSwept(n)
	slog.InfoContext(ctx, "expired shares deactivated", "count", n)
	return n, nil
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
