package mocks

import (
	"context"

	"faceindex/internal/model"
	"faceindex/internal/recognition"

	"github.com/stretchr/testify/mock"
)

type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) IndexFromStoredObject(ctx context.Context, ref recognition.ObjectRef, externalID string) (model.FaceIndexResult, error) {
	args := m.Called(ctx, ref, externalID)
	return args.Get(0).(model.FaceIndexResult), args.Error(1)
}

func (m *MockRecognizer) IndexFromBytes(ctx context.Context, image []byte) (model.FaceIndexResult, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(model.FaceIndexResult), args.Error(1)
}

func (m *MockRecognizer) MatchFromBytes(ctx context.Context, image []byte) (model.FaceIndexResult, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(model.FaceIndexResult), args.Error(1)
}
