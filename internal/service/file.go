package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"cloudvault/internal/events"
	"cloudvault/internal/metrics"
	"cloudvault/internal/model"
	"cloudvault/internal/preview"
	"cloudvault/internal/repository"
	"cloudvault/internal/storage"
)

var tracer = otel.Tracer("cloudvault/internal/service")

const (
	defaultSignedURLTTL = time.Hour
	defaultPageLimit    = 20
	maxPageLimit        = 100
	purgeBatchSize      = 100
	purgeParallelism    = 8
)

// UploadInput is one file to store. Size is len(Data).
type UploadInput struct {
	OwnerID      string
	Data         []byte
	MimeType     string
	OriginalName string
	DesiredName  string
	Folder       string
	Tags         []string
}

// SearchInput filters an owner's live files. Page is 1-based.
type SearchInput struct {
	OwnerID  string
	Query    string
	MimeType string
	Tags     []string
	Folder   string
	Page     int
	Limit    int
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Items      []model.File `json:"items"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}

// SignedURL is a time-boxed direct link to an object.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileService owns the file lifecycle: upload, lookup, search, trash and purge.
// A file record exists only while its bytes are retrievable from storage.
type FileService interface {
	// Upload stores the bytes (and an image preview), then persists metadata.
	Upload(ctx context.Context, in UploadInput) (*model.File, error)

	// Get returns an owned file; files of other owners are reported as not found.
	Get(ctx context.Context, id, ownerID string, includeDeleted bool) (*model.File, error)

	// List returns live files, or the visible trash when includeDeleted is set, newest first.
	List(ctx context.Context, ownerID string, includeDeleted bool) ([]model.File, error)

	// Search returns one page of live files matching the input.
	Search(ctx context.Context, in SearchInput) (*SearchResult, error)

	SoftDelete(ctx context.Context, id, ownerID string) (*model.File, error)
	Restore(ctx context.Context, id, ownerID string) (*model.File, error)

	// HideFromTrash removes soft-deleted files from the trash listing without purging them.
	HideFromTrash(ctx context.Context, ownerID string, ids []string) (int64, error)

	// PurgePermanently removes soft-deleted files and their objects. Live files are never touched.
	PurgePermanently(ctx context.Context, ownerID string, ids []string) (int, error)

	// PurgeExpiredTrash purges files of every owner that have been in the trash longer than retention.
	PurgeExpiredTrash(ctx context.Context, retention time.Duration) (int, error)

	DownloadURL(ctx context.Context, id, ownerID string, includeDeleted bool) (*SignedURL, error)

	// PreviewURL returns nil without error when the file has no preview.
	PreviewURL(ctx context.Context, id, ownerID string, includeDeleted bool) (*SignedURL, error)

	StorageHealth(ctx context.Context) error
}

// FileOptions carries the optional collaborators of the file service.
type FileOptions struct {
	SignedURLTTL time.Duration
	Events       events.Publisher
	Metrics      *metrics.Metrics
}

type fileService struct {
	store    storage.Storage
	repo     repository.FileRepository
	previews preview.Generator
	events   events.Publisher
	metrics  *metrics.Metrics
	urlTTL   time.Duration
	now      func() time.Time
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, previews preview.Generator, opts FileOptions) FileService {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = defaultSignedURLTTL
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	return &fileService{
		store:    store,
		repo:     repo,
		previews: previews,
		events:   opts.Events,
		metrics:  opts.Metrics,
		urlTTL:   opts.SignedURLTTL,
		now:      time.Now,
	}
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (_ *model.File, err error) {
	ctx, span := tracer.Start(ctx, "FileService.Upload")
	defer func() { endSpan(span, err) }()

	if in.OwnerID == "" {
		return nil, unauthenticated("missing owner")
	}
	if len(in.Data) == 0 {
		return nil, validationf("file is empty")
	}

	mimeType := detectMimeType(in.MimeType, in.Data)
	name, err := resolveName(in.DesiredName, in.OriginalName, mimeType)
	if err != nil {
		return nil, err
	}
	cat := category(mimeType)
	key := storageKey(in.OwnerID, cat, name)
	span.SetAttributes(attribute.String("file.category", cat), attribute.Int("file.size", len(in.Data)))

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check storage key: %w", err)
	}
	if exists {
		return nil, conflictf("a file named %q already exists", name)
	}

	now := s.now().UTC()
	if _, err := s.store.Put(ctx, key, bytes.NewReader(in.Data), storage.PutObjectOptions{
		Size:        int64(len(in.Data)),
		ContentType: mimeType,
		Metadata: map[string]string{
			"original-name": url.QueryEscape(in.OriginalName),
			"uploaded-by":   in.OwnerID,
			"uploaded-at":   now.Format(time.RFC3339),
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	var previewKey *string
	if preview.Applies(mimeType) {
		previewKey = s.storePreview(ctx, key, mimeType, in.Data)
	}

	f := &model.File{
		ID:           newID(),
		Name:         name,
		OriginalName: in.OriginalName,
		Size:         int64(len(in.Data)),
		MimeType:     mimeType,
		StorageKey:   key,
		PreviewKey:   previewKey,
		Tags:         model.NewStringSet(in.Tags...),
		Folder:       optional(in.Folder),
		Visibility:   model.VisibilityVisible,
		OwnerID:      in.OwnerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		// A duplicate key means a concurrent upload won the name; its row now owns the object.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictf("a file named %q already exists", name)
		}
		s.deleteObjects(ctx, *f)
		return nil, fmt.Errorf("save file metadata: %w", err)
	}

	s.metrics.Upload(cat, stored.Size)
	s.events.Publish(ctx, events.New(events.FileUploaded, stored.OwnerID, stored.ID, map[string]any{
		"name":     stored.Name,
		"size":     stored.Size,
		"mimeType": stored.MimeType,
	}))
	return stored, nil
}

// storePreview is best-effort: any failure leaves the file without a preview.
func (s *fileService) storePreview(ctx context.Context, key, mimeType string, data []byte) *string {
	thumb, ok := s.previews.Generate(data, mimeType)
	if !ok {
		s.metrics.Preview(metrics.PreviewFailed)
		slog.WarnContext(ctx, "preview generation skipped", "storage_key", key, "mime_type", mimeType)
		return nil
	}
	pk := preview.Key(key)
	if _, err := s.store.Put(ctx, pk, bytes.NewReader(thumb), storage.PutObjectOptions{
		Size:        int64(len(thumb)),
		ContentType: preview.ContentType,
	}); err != nil {
		s.metrics.Preview(metrics.PreviewFailed)
		slog.WarnContext(ctx, "preview upload failed", "storage_key", pk, "error", err)
		return nil
	}
	s.metrics.Preview(metrics.PreviewGenerated)
	return &pk
}

func (s *fileService) Get(ctx context.Context, id, ownerID string, includeDeleted bool) (*model.File, error) {
	if !isUUID(id) {
		return nil, notFound("file")
	}
	f, err := s.repo.FindByID(ctx, id, ownerID, includeDeleted)
	if err != nil {
		return nil, mapNotFound(err, "file")
	}
	return f, nil
}

func (s *fileService) List(ctx context.Context, ownerID string, includeDeleted bool) ([]model.File, error) {
	return s.repo.ListByOwner(ctx, ownerID, includeDeleted)
}

func (s *fileService) Search(ctx context.Context, in SearchInput) (_ *SearchResult, err error) {
	ctx, span := tracer.Start(ctx, "FileService.Search")
	defer func() { endSpan(span, err) }()

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := repository.FileFilter{
		OwnerID:        in.OwnerID,
		Query:          strings.TrimSpace(in.Query),
		MimeTypePrefix: strings.ToLower(strings.TrimSpace(in.MimeType)),
		Tags:           model.NewStringSet(in.Tags...),
		Folder:         strings.TrimSpace(in.Folder),
	}
	res, err := s.repo.Search(ctx, filter, repository.PageQuery{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: (res.Total + limit - 1) / limit,
	}, nil
}

func (s *fileService) SoftDelete(ctx context.Context, id, ownerID string) (*model.File, error) {
	if !isUUID(id) {
		return nil, notFound("file")
	}
	f, err := s.repo.SoftDelete(ctx, id, ownerID, s.now().UTC())
	if err != nil {
		return nil, mapNotFound(err, "file")
	}
	s.events.Publish(ctx, events.New(events.FileDeleted, ownerID, id, nil))
	return f, nil
}

func (s *fileService) Restore(ctx context.Context, id, ownerID string) (*model.File, error) {
	if !isUUID(id) {
		return nil, notFound("file")
	}
	f, err := s.repo.Restore(ctx, id, ownerID)
	if err != nil {
		return nil, mapNotFound(err, "deleted file")
	}
	s.events.Publish(ctx, events.New(events.FileRestored, ownerID, id, nil))
	return f, nil
}

func (s *fileService) HideFromTrash(ctx context.Context, ownerID string, ids []string) (int64, error) {
	ids, err := parseIDs(ids)
	if err != nil {
		return 0, err
	}
	return s.repo.HideFromTrash(ctx, ownerID, ids)
}

// PurgePermanently deletes the rows first so a concurrent restore either wins before the
// delete (the row is no longer trashed and is skipped) or finds nothing to restore.
func (s *fileService) PurgePermanently(ctx context.Context, ownerID string, ids []string) (_ int, err error) {
	ctx, span := tracer.Start(ctx, "FileService.PurgePermanently")
	defer func() { endSpan(span, err) }()

	ids, err = parseIDs(ids)
	if err != nil {
		return 0, err
	}
	removed, err := s.repo.DeleteTrashed(ctx, ownerID, ids)
	if err != nil {
		return 0, err
	}
	s.deleteObjects(ctx, removed...)
	s.metrics.FilesPurged(metrics.PurgeManual, len(removed))
	for _, f := range removed {
		s.events.Publish(ctx, events.New(events.FilePurged, ownerID, f.ID, nil))
	}
	span.SetAttributes(attribute.Int("files.purged", len(removed)))
	return len(removed), nil
}

func (s *fileService) PurgeExpiredTrash(ctx context.Context, retention time.Duration) (_ int, err error) {
	ctx, span := tracer.Start(ctx, "FileService.PurgeExpiredTrash")
	defer func() { endSpan(span, err) }()

	if retention <= 0 {
		return 0, validationf("retention must be positive")
	}
	cutoff := s.now().UTC().Add(-retention)

	total := 0
	for {
		removed, err := s.repo.DeleteTrashedBefore(ctx, cutoff, purgeBatchSize)
		if err != nil {
			return total, err
		}
		s.deleteObjects(ctx, removed...)
		for _, f := range removed {
			s.events.Publish(ctx, events.New(events.FilePurged, f.OwnerID, f.ID, map[string]any{"reason": metrics.PurgeRetention}))
		}
		total += len(removed)
		if len(removed) < purgeBatchSize {
			break
		}
	}
	s.metrics.FilesPurged(metrics.PurgeRetention, total)
	return total, nil
}

// deleteObjects removes primary and preview objects concurrently. Failures are logged, never returned.
func (s *fileService) deleteObjects(ctx context.Context, files ...model.File) {
	if len(files) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(purgeParallelism)
	for _, f := range files {
		keys := []string{f.StorageKey}
		if f.HasPreview() {
			keys = append(keys, *f.PreviewKey)
		}
		for _, key := range keys {
			g.Go(func() error {
				if err := s.store.Delete(gctx, key); err != nil {
					slog.WarnContext(ctx, "object delete failed", "storage_key", key, "error", err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}

func (s *fileService) DownloadURL(ctx context.Context, id, ownerID string, includeDeleted bool) (*SignedURL, error) {
	f, err := s.Get(ctx, id, ownerID, includeDeleted)
	if err != nil {
		return nil, err
	}
	return s.sign(ctx, f.StorageKey)
}

func (s *fileService) PreviewURL(ctx context.Context, id, ownerID string, includeDeleted bool) (*SignedURL, error) {
	f, err := s.Get(ctx, id, ownerID, includeDeleted)
	if err != nil {
		return nil, err
	}
	if !f.HasPreview() {
		return nil, nil
	}
	return s.sign(ctx, *f.PreviewKey)
}

func (s *fileService) sign(ctx context.Context, key string) (*SignedURL, error) {
	u, err := s.store.PresignGet(ctx, key, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("sign url: %w", err)
	}
	return &SignedURL{URL: u, ExpiresAt: s.now().UTC().Add(s.urlTTL)}, nil
}

func (s *fileService) StorageHealth(ctx context.Context) error {
	return s.store.Health(ctx)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func newID() string {
	return uuid.NewString()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
