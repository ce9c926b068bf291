package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/docker/go-units"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pdfvault/internal/config"
	"pdfvault/internal/logging"
	"pdfvault/internal/metrics"
	"pdfvault/internal/model"
	"pdfvault/internal/repository"
	"pdfvault/internal/storage"
)

var tracer = otel.Tracer("pdfvault/internal/service")

// DocumentService defines the use cases for handling documents.
// It exclusively owns the coupling between a record and its blob.
type DocumentService interface {
	// Upload validates the input, writes the blob, then inserts the record.
	// A failed insert leaves the blob in place and is logged for repair.
	Upload(ctx context.Context, in model.UploadInput) (*model.Document, error)

	// List returns every record, newest first.
	List(ctx context.Context) ([]model.Document, error)

	// Get returns a single record by its ID.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// Download returns the record and a stream over its content. The caller must close the stream.
	Download(ctx context.Context, id int64) (*model.Document, io.ReadCloser, error)

	// Delete removes the blob, then the record.
	Delete(ctx context.Context, id int64) error
}

// Options tunes a DocumentService. Zero values select the defaults.
type Options struct {
	MaxUploadSize int64
	Logger        *slog.Logger
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store   storage.BlobStore
	repo    repository.DocumentRepository
	maxSize int64
	logger  *slog.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.BlobStore, repo repository.DocumentRepository, opts Options) DocumentService {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = config.DefaultMaxUploadSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &documentService{
		store:   store,
		repo:    repo,
		maxSize: opts.MaxUploadSize,
		logger:  opts.Logger.With("component", "service"),
	}
}

func (s *documentService) Upload(ctx context.Context, in model.UploadInput) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload", trace.WithAttributes(
		attribute.String("document.filename", in.OriginalFilename),
		attribute.Int64("document.declared_size", in.DeclaredSize),
	))
	defer func() { endSpan(span, err) }()

	if err := s.validate(in); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			metrics.UploadsRejected.WithLabelValues(ve.Reason).Inc()
		}
		return nil, err
	}

	// Read at most one byte past the limit: enough to detect a body larger than declared.
	res, err := s.store.Put(ctx, io.LimitReader(in.Content, s.maxSize+1), in.OriginalFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if res.Size > s.maxSize {
		if rmErr := s.store.Remove(ctx, res.Path); rmErr != nil {
			s.fault(metrics.FaultOrphanedBlob, "oversized blob could not be removed",
				"storage_path", res.Path, "error", rmErr)
		}
		metrics.UploadsRejected.WithLabelValues(ErrTooLarge.Reason).Inc()
		return nil, ErrTooLarge
	}

	doc, err := s.repo.Insert(ctx, in.OriginalFilename, res.Path, res.Size)
	if err != nil {
		s.fault(metrics.FaultOrphanedBlob, "metadata insert failed after blob write, repair needed",
			"storage_path", res.Path, "filename", in.OriginalFilename, "filesize", res.Size, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	metrics.DocumentsUploaded.Inc()
	metrics.UploadBytes.Add(float64(doc.Size))
	span.SetAttributes(attribute.Int64("document.id", doc.ID))
	s.logger.Info("document uploaded",
		"id", doc.ID,
		"filename", doc.Filename,
		"filesize", doc.Size,
		"filesize_human", units.BytesSize(float64(doc.Size)),
	)
	return doc, nil
}

func (s *documentService) validate(in model.UploadInput) error {
	if in.Content == nil {
		return ErrReaderNil
	}
	if strings.TrimSpace(in.OriginalFilename) == "" {
		return ErrFilenameRequired
	}
	if !strings.EqualFold(strings.TrimSpace(in.DeclaredMimeType), model.PDFMimeType) {
		return ErrUnsupportedType
	}
	if in.DeclaredSize > s.maxSize {
		return ErrTooLarge
	}
	return nil
}

// List returns the metadata store's ordering verbatim.
func (s *documentService) List(ctx context.Context) (_ []model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.List")
	defer func() { endSpan(span, err) }()

	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return items, nil
}

func (s *documentService) Get(ctx context.Context, id int64) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Get", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer func() { endSpan(span, err) }()

	return s.find(ctx, id)
}

func (s *documentService) Download(ctx context.Context, id int64) (_ *model.Document, _ io.ReadCloser, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Download", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.fault(metrics.FaultDanglingRecord, "record exists but blob is missing",
				"id", doc.ID, "storage_path", doc.StoragePath)
			return nil, nil, fmt.Errorf("%w: id %d", ErrIntegrity, id)
		}
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return doc, rc, nil
}

// Delete removes the blob before the record: if blob removal fails the record
// still describes a blob that may exist, and the delete can be retried.
func (s *documentService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("blob removal failed, record kept",
			"id", doc.ID, "storage_path", doc.StoragePath, "error", err)
		return fmt.Errorf("%w: remove blob: %w", ErrStorageWrite, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		s.fault(metrics.FaultDanglingDeletedBlob, "blob removed but record delete failed, reconciliation needed",
			"id", doc.ID, "storage_path", doc.StoragePath, "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	metrics.DocumentsDeleted.Inc()
	s.logger.Info("document deleted", "id", doc.ID, "filename", doc.Filename)
	return nil
}

func (s *documentService) find(ctx context.Context, id int64) (*model.Document, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return doc, nil
}

// fault records a blob/metadata divergence. Nothing is retried automatically.
func (s *documentService) fault(kind, msg string, args ...any) {
	metrics.ConsistencyFaults.WithLabelValues(kind).Inc()
	s.logger.Error(msg, append([]any{"event", kind}, args...)...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
