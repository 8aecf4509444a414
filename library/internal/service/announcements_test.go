package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/library/internal/model"
)

func TestService_CreateAnnouncement_Defaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.repo.EXPECT().CreateAnnouncement(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a model.Announcement) (model.Announcement, error) { return a, nil })

	a, err := f.svc.CreateAnnouncement(context.Background(), model.CreateAnnouncementRequest{
		Title:   "Libur nasional",
		Content: "Perpustakaan tutup pada hari Jumat.",
	}, "Admin")
	require.NoError(t, err)
	require.Equal(t, model.AnnouncementGeneral, a.Type)
	require.Equal(t, model.PriorityMedium, a.Priority)
	require.Equal(t, model.AudienceAll, a.TargetAudience)
	require.Equal(t, now, a.PublishDate)
	require.Equal(t, "Admin", a.CreatedBy)
	require.True(t, a.IsActive)
	require.NotNil(t, a.Attachments)
}

func TestService_ListAnnouncements_PublishedNow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	filter := model.AnnouncementFilter{Priority: model.PriorityUrgent, Paging: model.NewPaging(0, 0)}
	want := filter
	want.Now = now
	f.repo.EXPECT().ListAnnouncements(gomock.Any(), want).Return(nil, nil)
	f.repo.EXPECT().CountAnnouncements(gomock.Any(), want).Return(0, nil)

	res, err := f.svc.ListAnnouncements(context.Background(), filter)
	require.NoError(t, err)
	require.NotNil(t, res.Items)
	require.Equal(t, model.DefaultLimit, res.Limit)
}
