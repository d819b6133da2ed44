package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cloudvault/internal/events"
	"cloudvault/internal/model"
	"cloudvault/internal/repository"
	repoMocks "cloudvault/internal/repository/mocks"
	"cloudvault/internal/storage"
	storeMocks "cloudvault/internal/storage/mocks"
)

const shareID = "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f"

var shareNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestShareService(shares repository.ShareRepository, files repository.FileRepository, store storage.Storage, pub events.Publisher) *shareService {
	svc := NewShareService(shares, files, store, ShareOptions{DefaultExpiryDays: 7, Events: pub}).(*shareService)
	svc.now = func() time.Time { return shareNow }
	return svc
}

func TestShareService_Create(t *testing.T) {
	ctx := context.Background()
	past := shareNow.Add(-time.Minute)
	custom := shareNow.Add(48 * time.Hour)

	tests := []struct {
		name       string
		fileID     string
		expiresAt  *time.Time
		setupMocks func(mShares *repoMocks.MockShareRepository, mFiles *repoMocks.MockFileRepository)
		wantExpiry time.Time
		wantErr    error
	}{
		{
			name:   "default expiry",
			fileID: fileID,
			setupMocks: func(mShares *repoMocks.MockShareRepository, mFiles *repoMocks.MockFileRepository) {
				mFiles.On("FindByID", ctx, fileID, ownerID, false).Return(&model.File{ID: fileID}, nil)
				mShares.On("Create", ctx, mock.MatchedBy(func(s *model.Share) bool {
					return s.ExpiresAt.Equal(shareNow.AddDate(0, 0, 7)) && s.IsActive && s.CreatedByID == ownerID
				})).Return(&model.Share{ID: shareID, ExpiresAt: shareNow.AddDate(0, 0, 7), IsActive: true}, nil)
			},
			wantExpiry: shareNow.AddDate(0, 0, 7),
		},
		{
			name:      "explicit expiry",
			fileID:    fileID,
			expiresAt: &custom,
			setupMocks: func(mShares *repoMocks.MockShareRepository, mFiles *repoMocks.MockFileRepository) {
				mFiles.On("FindByID", ctx, fileID, ownerID, false).Return(&model.File{ID: fileID}, nil)
				mShares.On("Create", ctx, mock.MatchedBy(func(s *model.Share) bool {
					return s.ExpiresAt.Equal(custom)
				})).Return(&model.Share{ID: shareID, ExpiresAt: custom, IsActive: true}, nil)
			},
			wantExpiry: custom,
		},
		{
			name:      "expiry in the past",
			fileID:    fileID,
			expiresAt: &past,
			setupMocks: func(mShares *repoMocks.MockShareRepository, mFiles *repoMocks.MockFileRepository) {
				mFiles.On("FindByID", ctx, fileID, ownerID, false).Return(&model.File{ID: fileID}, nil)
			},
			wantErr: ErrValidation,
		},
		{
			name:   "file of another owner",
			fileID: fileID,
			setupMocks: func(mShares *repoMocks.MockShareRepository, mFiles *repoMocks.MockFileRepository) {
				mFiles.On("FindByID", ctx, fileID, ownerID, false).Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "malformed file id",
			fileID:     "abc",
			setupMocks: func(*repoMocks.MockShareRepository, *repoMocks.MockFileRepository) {},
			wantErr:    ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mShares := new(repoMocks.MockShareRepository)
			mFiles := new(repoMocks.MockFileRepository)
			pub := &recordingPublisher{}
			svc := newTestShareService(mShares, mFiles, storage.NewMemory(), pub)
			tt.setupMocks(mShares, mFiles)

			s, err := svc.Create(ctx, tt.fileID, ownerID, tt.expiresAt)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.types())
			} else {
				require.NoError(t, err)
				assert.True(t, s.ExpiresAt.Equal(tt.wantExpiry))
				assert.Equal(t, []string{events.ShareCreated}, pub.types())
			}
			mShares.AssertExpectations(t)
			mFiles.AssertExpectations(t)
		})
	}
}

func TestShareService_Create_TokenCollision(t *testing.T) {
	ctx := context.Background()
	mShares := new(repoMocks.MockShareRepository)
	mFiles := new(repoMocks.MockFileRepository)
	svc := newTestShareService(mShares, mFiles, storage.NewMemory(), nil)

	tokens := []string{"t1", "t2", "t3"}
	svc.newToken = func() (string, error) {
		tok := tokens[0]
		tokens = tokens[1:]
		return tok, nil
	}

	mFiles.On("FindByID", ctx, fileID, ownerID, false).Return(&model.File{ID: fileID}, nil)
	mShares.On("Create", ctx, mock.MatchedBy(func(s *model.Share) bool { return s.Token == "t1" })).
		Return(nil, repository.ErrDuplicate).Once()
	mShares.On("Create", ctx, mock.MatchedBy(func(s *model.Share) bool { return s.Token == "t2" })).
		Return(&model.Share{ID: shareID, Token: "t2"}, nil).Once()

	s, err := svc.Create(ctx, fileID, ownerID, nil)
	require.NoError(t, err)
	assert.Equal(t, "t2", s.Token)
	mShares.AssertExpectations(t)
}

func TestShareService_Create_TokenCollisionExhausted(t *testing.T) {
	ctx := context.Background()
	mShares := new(repoMocks.MockShareRepository)
	mFiles := new(repoMocks.MockFileRepository)
	svc := newTestShareService(mShares, mFiles, storage.NewMemory(), nil)

	mFiles.On("FindByID", ctx, fileID, ownerID, false).Return(&model.File{ID: fileID}, nil)
	mShares.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate).Times(tokenAttempts)

	_, err := svc.Create(ctx, fileID, ownerID, nil)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	mShares.AssertExpectations(t)
}

func TestRandomToken(t *testing.T) {
	a, err := randomToken()
	require.NoError(t, err)
	b, err := randomToken()
	require.NoError(t, err)

	assert.Len(t, a, 2*tokenBytes)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToLower(a), a)
}

func resolvedShare(expiresAt time.Time, active, fileDeleted bool) *repository.ResolvedShare {
	return &repository.ResolvedShare{
		Share: model.Share{
			ID:        shareID,
			Token:     "tok",
			ExpiresAt: expiresAt,
			IsActive:  active,
			FileID:    fileID,
		},
		FileOriginalName: "report.pdf",
		FileSize:         1024,
		FileMimeType:     "application/pdf",
		FileStorageKey:   ownerID + "/files/report.pdf",
		FileIsDeleted:    fileDeleted,
	}
}

func TestShareService_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		share   *repository.ResolvedShare
		repoErr error
		wantErr error
	}{
		{name: "usable", share: resolvedShare(shareNow.Add(time.Second), true, false)},
		{name: "expired at the boundary", share: resolvedShare(shareNow, true, false), wantErr: ErrNotFound},
		{name: "expired", share: resolvedShare(shareNow.Add(-time.Second), true, false), wantErr: ErrNotFound},
		{name: "deactivated", share: resolvedShare(shareNow.Add(time.Hour), false, false), wantErr: ErrNotFound},
		{name: "file in trash", share: resolvedShare(shareNow.Add(time.Hour), true, true), wantErr: ErrNotFound},
		{name: "unknown token", repoErr: repository.ErrNotFound, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mShares := new(repoMocks.MockShareRepository)
			svc := newTestShareService(mShares, new(repoMocks.MockFileRepository), storage.NewMemory(), nil)

			if tt.share != nil {
				mShares.On("FindByToken", mock.Anything, "tok").Return(tt.share, nil)
			} else {
				mShares.On("FindByToken", mock.Anything, "tok").Return(nil, tt.repoErr)
			}

			res, err := svc.Resolve(context.Background(), "tok")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(res.URL, "memory:///"+ownerID+"/files/report.pdf?"))
			assert.Equal(t, tt.share.ExpiresAt, res.ExpiresAt)
			assert.Equal(t, model.SharedFile{
				ID:           fileID,
				OriginalName: "report.pdf",
				Size:         1024,
				MimeType:     "application/pdf",
			}, res.File)
		})
	}
}

func TestShareService_Resolve_Errors(t *testing.T) {
	t.Run("empty token", func(t *testing.T) {
		mShares := new(repoMocks.MockShareRepository)
		svc := newTestShareService(mShares, new(repoMocks.MockFileRepository), storage.NewMemory(), nil)

		_, err := svc.Resolve(context.Background(), "")
		assert.ErrorIs(t, err, ErrNotFound)
		mShares.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})

	t.Run("database failure is internal", func(t *testing.T) {
		mShares := new(repoMocks.MockShareRepository)
		mShares.On("FindByToken", mock.Anything, "tok").Return(nil, errors.New("connection reset"))
		svc := newTestShareService(mShares, new(repoMocks.MockFileRepository), storage.NewMemory(), nil)

		_, err := svc.Resolve(context.Background(), "tok")
		require.Error(t, err)
		var svcErr *Error
		assert.False(t, errors.As(err, &svcErr))
	})

	t.Run("signing failure", func(t *testing.T) {
		mShares := new(repoMocks.MockShareRepository)
		mShares.On("FindByToken", mock.Anything, "tok").Return(resolvedShare(shareNow.Add(time.Hour), true, false), nil)
		mStore := new(storeMocks.MockStorage)
		mStore.On("PresignGet", mock.Anything, ownerID+"/files/report.pdf", time.Hour).Return("", errors.New("no creds"))
		svc := newTestShareService(mShares, new(repoMocks.MockFileRepository), mStore, nil)

		_, err := svc.Resolve(context.Background(), "tok")
		assert.ErrorContains(t, err, "sign url: no creds")
	})
}

func TestShareService_Deactivate(t *testing.T) {
	ctx := context.Background()
	mShares := new(repoMocks.MockShareRepository)
	pub := &recordingPublisher{}
	svc := newTestShareService(mShares, new(repoMocks.MockFileRepository), storage.NewMemory(), pub)

	mShares.On("Deactivate", ctx, shareID, ownerID).Return(nil).Once()
	mShares.On("Deactivate", ctx, shareID, otherID).Return(repository.ErrNotFound).Once()
	mShares.On("FindByToken", mock.Anything, "tok").Return(resolvedShare(shareNow.Add(time.Hour), false, false), nil)

	require.NoError(t, svc.Deactivate(ctx, shareID, ownerID))
	assert.ErrorIs(t, svc.Deactivate(ctx, shareID, otherID), ErrNotFound)
	assert.ErrorIs(t, svc.Deactivate(ctx, "bogus", ownerID), ErrNotFound)

	_, err := svc.Resolve(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{events.ShareDeactivated}, pub.types())
	mShares.AssertExpectations(t)
}

func TestShareService_SweepExpired(t *testing.T) {
	ctx := context.Background()
	mShares := new(repoMocks.MockShareRepository)
	svc := newTestShareService(mShares, new(repoMocks.MockFileRepository), storage.NewMemory(), nil)

	mShares.On("DeactivateExpired", ctx, shareNow).Return(int64(3), nil).Once()
	mShares.On("DeactivateExpired", ctx, shareNow).Return(int64(0), errors.New("db down")).Once()

	n, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = svc.SweepExpired(ctx)
	assert.Error(t, err)
	mShares.AssertExpectations(t)
}

func TestShareService_List(t *testing.T) {
	ctx := context.Background()
	mShares := new(repoMocks.MockShareRepository)
	svc := newTestShareService(mShares, new(repoMocks.MockFileRepository), storage.NewMemory(), nil)

	mShares.On("ListByCreator", ctx, ownerID).Return([]model.ShareWithFile{
		{Share: model.Share{ID: shareID}, File: model.SharedFile{ID: fileID, OriginalName: "report.pdf"}},
	}, nil)

	list, err := svc.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "report.pdf", list[0].File.OriginalName)
}
