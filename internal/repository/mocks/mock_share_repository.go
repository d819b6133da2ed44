package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

type MockShareRepository struct {
	mock.Mock
}

var _ repository.ShareRepository = (*MockShareRepository)(nil)

func (m *MockShareRepository) Create(ctx context.Context, s *model.Share) (*model.Share, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Share), args.Error(1)
}

func (m *MockShareRepository) FindByToken(ctx context.Context, token string) (*repository.ResolvedShare, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ResolvedShare), args.Error(1)
}

func (m *MockShareRepository) ListByCreator(ctx context.Context, userID string) ([]model.ShareWithFile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareWithFile), args.Error(1)
}

func (m *MockShareRepository) Deactivate(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockShareRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
