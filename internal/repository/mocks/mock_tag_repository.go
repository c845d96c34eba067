package mocks

import (
	"context"

	"docproc/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) GetOrCreate(ctx context.Context, name, displayName string) (*model.Tag, error) {
	args := m.Called(ctx, name, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) ListAll(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagRepository) ListForDocuments(ctx context.Context, documentIDs []string) (map[string][]model.Tag, error) {
	args := m.Called(ctx, documentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]model.Tag), args.Error(1)
}

func (m *MockTagRepository) Attach(ctx context.Context, documentID, tagID string) error {
	args := m.Called(ctx, documentID, tagID)
	return args.Error(0)
}

func (m *MockTagRepository) Detach(ctx context.Context, documentID, tagID string) (bool, error) {
	args := m.Called(ctx, documentID, tagID)
	return args.Bool(0), args.Error(1)
}
