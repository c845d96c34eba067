package mocks

import (
	"context"
	"io"

	"docproc/internal/extract"

	"github.com/stretchr/testify/mock"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, r io.Reader) (extract.Result, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(extract.Result), args.Error(1)
}
