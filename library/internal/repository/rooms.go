package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

var roomColumns = []string{
	"id", "name", "room_number", "type", "capacity", "hourly_rate", "amenities", "description",
	"is_available", "created_at", "updated_at",
}

func (r *repository) collectRoom(ctx context.Context, query string, args []any) (model.Room, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Room{}, err
	}
	defer rows.Close()

	room, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Room])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Room{}, errs.ErrRoomNotFound
		}
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Room{}, errs.ErrRoomNumberUsed
		}
		return model.Room{}, err
	}
	return room, nil
}

func (r *repository) ListRooms(ctx context.Context, filter model.RoomFilter) ([]model.Room, error) {
	where := sq.And{}
	if filter.Type != "" {
		where = append(where, sq.Eq{"type": filter.Type})
	}
	if filter.IsAvailable != nil {
		where = append(where, sq.Eq{"is_available": *filter.IsAvailable})
	}
	if filter.MinCapacity > 0 {
		where = append(where, sq.GtOrEq{"capacity": filter.MinCapacity})
	}
	query, args, err := qb.Select(roomColumns...).
		From(roomsTableName).
		Where(where).
		OrderBy("room_number").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Room])
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return rooms, nil
}

func (r *repository) GetRoom(ctx context.Context, id uuid.UUID) (model.Room, error) {
	query, args, err := qb.Select(roomColumns...).
		From(roomsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Room{}, err
	}
	return r.collectRoom(ctx, query, args)
}

func (r *repository) CreateRoom(ctx context.Context, room model.Room) (model.Room, error) {
	amenities := room.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	query, args, err := qb.Insert(roomsTableName).
		Columns("name", "room_number", "type", "capacity", "hourly_rate", "amenities", "description", "is_available").
		Values(room.Name, room.RoomNumber, room.Type, room.Capacity, room.HourlyRate, amenities,
			room.Description, room.IsAvailable).
		Suffix(returning(roomColumns)).
		ToSql()
	if err != nil {
		return model.Room{}, err
	}
	return r.collectRoom(ctx, query, args)
}

func (r *repository) UpdateRoom(ctx context.Context, id uuid.UUID, upd model.UpdateRoomRequest) (model.Room, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.RoomNumber != nil {
		set["room_number"] = *upd.RoomNumber
	}
	if upd.Type != nil {
		set["type"] = *upd.Type
	}
	if upd.Capacity != nil {
		set["capacity"] = *upd.Capacity
	}
	if upd.HourlyRate != nil {
		set["hourly_rate"] = *upd.HourlyRate
	}
	if upd.Amenities != nil {
		set["amenities"] = upd.Amenities
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.IsAvailable != nil {
		set["is_available"] = *upd.IsAvailable
	}
	query, args, err := qb.Update(roomsTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix(returning(roomColumns)).
		ToSql()
	if err != nil {
		return model.Room{}, err
	}
	return r.collectRoom(ctx, query, args)
}
