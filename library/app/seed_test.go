package app

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/service"

	repo_mocks "github.com/naratama/library-service/library/internal/repository/mocks"
	service_mocks "github.com/naratama/library-service/library/internal/service/mocks"
)

func TestSeed(t *testing.T) {
	t.Parallel()
	errDB := errors.New("connection reset")

	tests := []struct {
		name    string
		expect  func(t *testing.T, r *repo_mocks.MockRepository)
		wantErr error
	}{
		{
			name: "ok. empty database",
			expect: func(t *testing.T, r *repo_mocks.MockRepository) {
				r.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
						require.NotNil(t, u.PasswordHash)
						u.ID = uuid.New()
						return u, nil
					}).Times(len(seedUsers))
				r.EXPECT().ExistingISBNs(gomock.Any(), gomock.Len(len(seedBooks))).Return(nil, nil)
				r.EXPECT().CreateBooks(gomock.Any(), gomock.Len(len(seedBooks))).Return(len(seedBooks), nil)
				r.EXPECT().CreateRoom(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) (model.Room, error) {
						require.True(t, room.IsAvailable)
						return room, nil
					}).Times(len(seedRooms))
				r.EXPECT().CreateAnnouncement(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a model.Announcement) (model.Announcement, error) {
						require.Equal(t, "Naratama Admin", a.CreatedBy)
						require.Equal(t, model.PriorityHigh, a.Priority)
						return a, nil
					})
			},
		},
		{
			name: "ok. already seeded",
			expect: func(t *testing.T, r *repo_mocks.MockRepository) {
				r.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(model.User{}, errs.ErrUserExists).Times(len(seedUsers))
				r.EXPECT().ExistingISBNs(gomock.Any(), gomock.Any()).Return([]string{seedBooks[0].ISBN}, nil)
				r.EXPECT().CreateRoom(gomock.Any(), gomock.Any()).
					Return(model.Room{}, errs.ErrRoomNumberUsed).Times(len(seedRooms))
			},
		},
		{
			name: "err. database",
			expect: func(t *testing.T, r *repo_mocks.MockRepository) {
				r.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(model.User{}, errDB)
			},
			wantErr: errDB,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			repo := repo_mocks.NewMockRepository(c)
			tt.expect(t, repo)
			svc := service.NewService(repo, service_mocks.NewMockPaymentGateway(c), zap.NewNop())

			err := seed(context.Background(), svc, zap.NewNop())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
