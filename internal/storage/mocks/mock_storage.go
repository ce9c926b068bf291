package mocks

import (
	"context"
	"io"

	"pdfvault/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

var _ storage.BlobStore = (*MockBlobStore)(nil)

func (m *MockBlobStore) Put(ctx context.Context, r io.Reader, suggestedName string) (storage.PutResult, error) {
	args := m.Called(ctx, r, suggestedName)
	if f, ok := args.Get(0).(func(context.Context, io.Reader, string) storage.PutResult); ok {
		return f(ctx, r, suggestedName), args.Error(1)
	}
	return args.Get(0).(storage.PutResult), args.Error(1)
}

func (m *MockBlobStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockBlobStore) Remove(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}
