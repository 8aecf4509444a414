package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

var announcementColumns = []string{
	"id", "title", "content", "type", "priority", "target_audience", "created_by", "attachments",
	"publish_date", "expiry_date", "is_active", "created_at", "updated_at",
}

// announcementWhere selects what is visible now: active, published, not expired.
func announcementWhere(filter model.AnnouncementFilter) sq.And {
	where := sq.And{
		sq.Eq{"is_active": true},
		sq.LtOrEq{"publish_date": filter.Now},
		sq.Or{sq.Eq{"expiry_date": nil}, sq.Gt{"expiry_date": filter.Now}},
	}
	if filter.Type != "" {
		where = append(where, sq.Eq{"type": filter.Type})
	}
	if filter.Priority != "" {
		where = append(where, sq.Eq{"priority": filter.Priority})
	}
	if filter.TargetAudience != "" {
		where = append(where, sq.Eq{"target_audience": filter.TargetAudience})
	}
	return where
}

func (r *repository) collectAnnouncement(ctx context.Context, query string, args []any) (model.Announcement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Announcement{}, err
	}
	defer rows.Close()

	a, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Announcement])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Announcement{}, errs.ErrAnnouncementNotFound
		}
		return model.Announcement{}, err
	}
	return a, nil
}

func (r *repository) ListAnnouncements(ctx context.Context, filter model.AnnouncementFilter) ([]model.Announcement, error) {
	query, args, err := qb.Select(announcementColumns...).
		From(announcementsTableName).
		Where(announcementWhere(filter)).
		OrderBy(
			"case priority when 'URGENT' then 0 when 'HIGH' then 1 when 'MEDIUM' then 2 else 3 end",
			"publish_date desc",
		).
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset()).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Announcement])
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return list, nil
}

func (r *repository) CountAnnouncements(ctx context.Context, filter model.AnnouncementFilter) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(announcementsTableName).Where(announcementWhere(filter)))
}

func (r *repository) GetAnnouncement(ctx context.Context, id uuid.UUID) (model.Announcement, error) {
	query, args, err := qb.Select(announcementColumns...).
		From(announcementsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Announcement{}, err
	}
	return r.collectAnnouncement(ctx, query, args)
}

func (r *repository) CreateAnnouncement(ctx context.Context, a model.Announcement) (model.Announcement, error) {
	attachments := a.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	query, args, err := qb.Insert(announcementsTableName).
		Columns("title", "content", "type", "priority", "target_audience", "created_by", "attachments",
			"publish_date", "expiry_date", "is_active").
		Values(a.Title, a.Content, a.Type, a.Priority, a.TargetAudience, a.CreatedBy, attachments,
			a.PublishDate, a.ExpiryDate, a.IsActive).
		Suffix(returning(announcementColumns)).
		ToSql()
	if err != nil {
		return model.Announcement{}, err
	}
	return r.collectAnnouncement(ctx, query, args)
}

func (r *repository) UpdateAnnouncement(
	ctx context.Context,
	id uuid.UUID,
	upd model.UpdateAnnouncementRequest,
) (model.Announcement, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.Type != nil {
		set["type"] = *upd.Type
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.TargetAudience != nil {
		set["target_audience"] = *upd.TargetAudience
	}
	if upd.Attachments != nil {
		set["attachments"] = upd.Attachments
	}
	if upd.PublishDate != nil {
		set["publish_date"] = *upd.PublishDate
	}
	if upd.ExpiryDate != nil {
		set["expiry_date"] = *upd.ExpiryDate
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}
	query, args, err := qb.Update(announcementsTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix(returning(announcementColumns)).
		ToSql()
	if err != nil {
		return model.Announcement{}, err
	}
	return r.collectAnnouncement(ctx, query, args)
}

func (r *repository) DeactivateAnnouncement(ctx context.Context, id uuid.UUID) error {
	changed, err := r.execAffected(ctx, qb.Update(announcementsTableName).
		Set("is_active", false).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "is_active": true}))
	if err != nil {
		return errors.Wrap(err, "deactivate announcement")
	}
	if changed {
		return nil
	}
	found, err := r.exists(ctx, qb.Select("1").From(announcementsTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if !found {
		return errs.ErrAnnouncementNotFound
	}
	return nil
}
