package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"pdfvault/internal/metrics"
	"pdfvault/internal/model"
	"pdfvault/internal/repository"
	repoMocks "pdfvault/internal/repository/mocks"
	"pdfvault/internal/storage"
	storeMocks "pdfvault/internal/storage/mocks"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// drain consumes the reader handed to Put the way a real store would.
func drain(path string) func(context.Context, io.Reader, string) storage.PutResult {
	return func(_ context.Context, r io.Reader, _ string) storage.PutResult {
		n, _ := io.Copy(io.Discard, r)
		return storage.PutResult{Path: path, Size: n}
	}
}

func pdfInput(name string, body string) model.UploadInput {
	return model.UploadInput{
		Content:          strings.NewReader(body),
		OriginalFilename: name,
		DeclaredMimeType: model.PDFMimeType,
		DeclaredSize:     int64(len(body)),
	}
}

func TestDocumentService_Upload(t *testing.T) {
	tests := []struct {
		name       string
		input      model.UploadInput
		maxSize    int64
		setupMocks func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantDoc    *model.Document
	}{
		{
			name:  "happy path",
			input: pdfInput("report.pdf", "%PDF-1.7 hello"),
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, "report.pdf").
					Return(drain("documents/1-abc-report.pdf"), nil)
				mRepo.On("Insert", mock.Anything, "report.pdf", "documents/1-abc-report.pdf", int64(14)).
					Return(&model.Document{ID: 7, Filename: "report.pdf", StoragePath: "documents/1-abc-report.pdf", Size: 14}, nil)
			},
			wantDoc: &model.Document{ID: 7, Filename: "report.pdf", StoragePath: "documents/1-abc-report.pdf", Size: 14},
		},
		{
			name:  "mime type is case insensitive",
			input: model.UploadInput{Content: strings.NewReader("x"), OriginalFilename: "a.pdf", DeclaredMimeType: "Application/PDF", DeclaredSize: 1},
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, "a.pdf").Return(drain("documents/a.pdf"), nil)
				mRepo.On("Insert", mock.Anything, "a.pdf", "documents/a.pdf", int64(1)).
					Return(&model.Document{ID: 1, Filename: "a.pdf", Size: 1}, nil)
			},
			wantDoc: &model.Document{ID: 1, Filename: "a.pdf", Size: 1},
		},
		{
			name:       "validation - nil reader",
			input:      model.UploadInput{OriginalFilename: "a.pdf", DeclaredMimeType: model.PDFMimeType},
			setupMocks: func(*storeMocks.MockBlobStore, *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrReaderNil,
		},
		{
			name:       "validation - missing filename",
			input:      pdfInput("  ", "x"),
			setupMocks: func(*storeMocks.MockBlobStore, *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrFilenameRequired,
		},
		{
			name:       "validation - unsupported type",
			input:      model.UploadInput{Content: strings.NewReader("hi"), OriginalFilename: "notes.txt", DeclaredMimeType: "text/plain", DeclaredSize: 2},
			setupMocks: func(*storeMocks.MockBlobStore, *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrUnsupportedType,
		},
		{
			name:       "validation - declared size over limit",
			input:      model.UploadInput{Content: strings.NewReader("x"), OriginalFilename: "big.pdf", DeclaredMimeType: model.PDFMimeType, DeclaredSize: 11},
			maxSize:    10,
			setupMocks: func(*storeMocks.MockBlobStore, *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrTooLarge,
		},
		{
			name:    "actual size over limit removes blob",
			input:   model.UploadInput{Content: strings.NewReader("0123456789ABC"), OriginalFilename: "liar.pdf", DeclaredMimeType: model.PDFMimeType, DeclaredSize: 3},
			maxSize: 10,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, "liar.pdf").Return(drain("documents/liar.pdf"), nil)
				mStore.On("Remove", mock.Anything, "documents/liar.pdf").Return(nil)
			},
			wantErr: ErrTooLarge,
		},
		{
			name:  "storage write error",
			input: pdfInput("a.pdf", "hello"),
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, "a.pdf").
					Return(storage.PutResult{}, errors.New("disk full"))
			},
			wantErr: ErrStorageWrite,
		},
		{
			name:  "insert error leaves blob in place",
			input: pdfInput("a.pdf", "hello"),
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, "a.pdf").Return(drain("documents/a.pdf"), nil)
				mRepo.On("Insert", mock.Anything, "a.pdf", "documents/a.pdf", int64(5)).
					Return(nil, errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockBlobStore)
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setupMocks(mStore, mRepo)
			svc := NewDocumentService(mStore, mRepo, Options{MaxUploadSize: tt.maxSize})

			doc, err := svc.Upload(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantDoc, doc)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
			// Insert failures must never trigger a compensating blob removal.
			if errors.Is(tt.wantErr, ErrPersistence) {
				mStore.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDocumentService_UploadOrphanIsCounted(t *testing.T) {
	mStore := new(storeMocks.MockBlobStore)
	mRepo := new(repoMocks.MockDocumentRepository)
	mStore.On("Put", mock.Anything, mock.Anything, "a.pdf").Return(drain("documents/a.pdf"), nil)
	mRepo.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))

	before := testutil.ToFloat64(metrics.ConsistencyFaults.WithLabelValues(metrics.FaultOrphanedBlob))

	svc := NewDocumentService(mStore, mRepo, Options{})
	_, err := svc.Upload(context.Background(), pdfInput("a.pdf", "hello"))

	require.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ConsistencyFaults.WithLabelValues(metrics.FaultOrphanedBlob)))
}

func TestDocumentService_List(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantLen    int
		wantErr    error
	}{
		{
			name: "happy path",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListAll", mock.Anything).Return([]model.Document{{ID: 2}, {ID: 1}}, nil)
			},
			wantLen: 2,
		},
		{
			name: "empty",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListAll", mock.Anything).Return([]model.Document{}, nil)
			},
		},
		{
			name: "repository error",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListAll", mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setupMocks(mRepo)
			svc := NewDocumentService(nil, mRepo, Options{})

			items, err := svc.List(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Len(t, items, tt.wantLen)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Get(t *testing.T) {
	tests := []struct {
		name       string
		id         int64
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   3,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(3)).Return(&model.Document{ID: 3}, nil)
			},
		},
		{
			name:       "validation - non positive id",
			id:         0,
			setupMocks: func(*repoMocks.MockDocumentRepository) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found",
			id:   999,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(999)).Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   4,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(4)).Return(nil, errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setupMocks(mRepo)
			svc := NewDocumentService(nil, mRepo, Options{})

			doc, err := svc.Get(context.Background(), tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, doc.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Download(t *testing.T) {
	found := &model.Document{ID: 5, Filename: "x.pdf", StoragePath: "documents/x.pdf", Size: 3}

	tests := []struct {
		name       string
		id         int64
		setupMocks func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantBody   string
	}{
		{
			name: "happy path",
			id:   5,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(5)).Return(found, nil)
				mStore.On("Open", mock.Anything, "documents/x.pdf").Return(io.NopCloser(strings.NewReader("abc")), nil)
			},
			wantBody: "abc",
		},
		{
			name: "not found",
			id:   999,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(999)).Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "record without blob",
			id:   5,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(5)).Return(found, nil)
				mStore.On("Open", mock.Anything, "documents/x.pdf").Return(nil, storage.ErrNotFound)
			},
			wantErr: ErrIntegrity,
		},
		{
			name: "blob store unreachable",
			id:   5,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(5)).Return(found, nil)
				mStore.On("Open", mock.Anything, "documents/x.pdf").Return(nil, errors.New("connection refused"))
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockBlobStore)
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setupMocks(mStore, mRepo)
			svc := NewDocumentService(mStore, mRepo, Options{})

			doc, rc, err := svc.Download(context.Background(), tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrNotFound) || errors.Is(tt.wantErr, ErrIntegrity) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.ErrorContains(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, doc)
				assert.Nil(t, rc)
			} else {
				require.NoError(t, err)
				defer rc.Close()
				body, err := io.ReadAll(rc)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	found := &model.Document{ID: 8, StoragePath: "documents/y.pdf"}

	tests := []struct {
		name       string
		id         int64
		setupMocks func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   8,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(8)).Return(found, nil)
				mStore.On("Remove", mock.Anything, "documents/y.pdf").Return(nil)
				mRepo.On("Delete", mock.Anything, int64(8)).Return(nil)
			},
		},
		{
			name:       "validation - negative id",
			id:         -1,
			setupMocks: func(*storeMocks.MockBlobStore, *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found",
			id:   999,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(999)).Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "blob removal error keeps record",
			id:   8,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(8)).Return(found, nil)
				mStore.On("Remove", mock.Anything, "documents/y.pdf").Return(errors.New("permission denied"))
			},
			wantErr: ErrStorageWrite,
		},
		{
			name: "record delete error after blob removal",
			id:   8,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(8)).Return(found, nil)
				mStore.On("Remove", mock.Anything, "documents/y.pdf").Return(nil)
				mRepo.On("Delete", mock.Anything, int64(8)).Return(errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
		{
			name: "record vanished concurrently",
			id:   8,
			setupMocks: func(mStore *storeMocks.MockBlobStore, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, int64(8)).Return(found, nil)
				mStore.On("Remove", mock.Anything, "documents/y.pdf").Return(nil)
				mRepo.On("Delete", mock.Anything, int64(8)).Return(repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockBlobStore)
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setupMocks(mStore, mRepo)
			svc := NewDocumentService(mStore, mRepo, Options{})

			err := svc.Delete(context.Background(), tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestValidationError(t *testing.T) {
	var ve *ValidationError
	require.True(t, errors.As(ErrTooLarge, &ve))
	assert.Equal(t, "too large", ve.Reason)
	assert.Equal(t, "validation failed: unsupported type", ErrUnsupportedType.Error())
	assert.False(t, errors.As(ErrNotFound, &ve))
}

func TestNewDocumentService_Defaults(t *testing.T) {
	svc := NewDocumentService(nil, nil, Options{}).(*documentService)
	assert.EqualValues(t, 10485760, svc.maxSize)
	assert.NotNil(t, svc.logger)
}
