package mocks

import (
	"context"

	"faceindex/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) Insert(ctx context.Context, rec *model.PersonRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPersonRepository) FindByFaceID(ctx context.Context, faceID string) ([]model.PersonRecord, error) {
	args := m.Called(ctx, faceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PersonRecord), args.Error(1)
}

func (m *MockPersonRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
