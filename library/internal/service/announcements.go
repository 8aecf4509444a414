package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/naratama/library-service/library/internal/model"
)

// ListAnnouncements returns what is published right now.
func (s *Service) ListAnnouncements(ctx context.Context, filter model.AnnouncementFilter) (model.List[model.Announcement], error) {
	filter.Now = s.now()
	return list(ctx, filter, filter.Paging, s.repo.ListAnnouncements, s.repo.CountAnnouncements)
}

func (s *Service) GetAnnouncement(ctx context.Context, id uuid.UUID) (model.Announcement, error) {
	return s.repo.GetAnnouncement(ctx, id)
}

func (s *Service) CreateAnnouncement(ctx context.Context, req model.CreateAnnouncementRequest, createdBy string) (model.Announcement, error) {
	return s.repo.CreateAnnouncement(ctx, req.Announcement(createdBy, s.now()))
}

func (s *Service) UpdateAnnouncement(ctx context.Context, id uuid.UUID, req model.UpdateAnnouncementRequest) (model.Announcement, error) {
	return s.repo.UpdateAnnouncement(ctx, id, req)
}

func (s *Service) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeactivateAnnouncement(ctx, id)
}
