package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"cloudvault/internal/model"
	"cloudvault/internal/service"
)

type MockShareService struct {
	mock.Mock
}

var _ service.ShareService = (*MockShareService)(nil)

func (m *MockShareService) Create(ctx context.Context, fileID, ownerID string, expiresAt *time.Time) (*model.Share, error) {
	args := m.Called(ctx, fileID, ownerID, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

func (m *MockShareService) Resolve(ctx context.Context, token string) (*service.ResolvedShare, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResolvedShare), args.Error(1)
}

func (m *MockShareService) List(ctx context.Context, ownerID string) ([]model.ShareWithFile, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareWithFile), args.Error(1)
}

func (m *MockShareService) Deactivate(ctx context.Context, shareID, ownerID string) error {
	args := m.Called(ctx, shareID, ownerID)
	return args.Error(0)
}

func (m *MockShareService) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
