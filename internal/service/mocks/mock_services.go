package mocks

import (
	"context"

	"faceindex/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Index(ctx context.Context, evt model.UploadEvent) (*model.FaceIndexResult, error) {
	args := m.Called(ctx, evt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FaceIndexResult), args.Error(1)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Match(ctx context.Context, req model.QueryRequest) ([]model.PersonRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PersonRecord), args.Error(1)
}
