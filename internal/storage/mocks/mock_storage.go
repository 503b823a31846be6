package mocks

import (
	"context"
	"io"

	"faceindex/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockObjectReader struct {
	mock.Mock
}

func (m *MockObjectReader) Get(ctx context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
