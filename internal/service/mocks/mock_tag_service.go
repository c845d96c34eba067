package mocks

import (
	"context"

	"docproc/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockTagService struct {
	mock.Mock
}

func (m *MockTagService) AttachTags(ctx context.Context, documentID string, names []string) (*model.Document, error) {
	args := m.Called(ctx, documentID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockTagService) DetachTag(ctx context.Context, documentID, tagID string) error {
	args := m.Called(ctx, documentID, tagID)
	return args.Error(0)
}

func (m *MockTagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}
