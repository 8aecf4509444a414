package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

var bookingColumns = []string{
	"rb.id", "rb.user_id", "rb.room_id", "rb.booking_date", "rb.start_time", "rb.end_time", "rb.duration",
	"rb.total_cost", "rb.status", "rb.payment_status", "rb.purpose", "rb.special_requests",
	"rb.created_at", "rb.updated_at",
	"r.name", "r.room_number", "r.type", "r.hourly_rate", "u.name", "u.phone_number",
}

// holdingStatuses occupy a room slot; same set as the exclusion constraint.
var holdingStatuses = []model.BookingStatus{model.BookingPending, model.BookingConfirmed}

func selectBookings() sq.SelectBuilder {
	return qb.Select(bookingColumns...).
		From(bookingsTableName + " rb").
		Join(roomsTableName + " r on r.id = rb.room_id").
		Join(usersTableName + " u on u.id = rb.user_id")
}

func scanBooking(row pgx.CollectableRow) (model.Booking, error) {
	b := model.Booking{Room: &model.RoomSummary{}, User: &model.UserSummary{}}
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.BookingDate, &b.StartTime, &b.EndTime, &b.Duration,
		&b.TotalCost, &b.Status, &b.PaymentStatus, &b.Purpose, &b.SpecialRequests,
		&b.CreatedAt, &b.UpdatedAt,
		&b.Room.Name, &b.Room.RoomNumber, &b.Room.Type, &b.Room.HourlyRate, &b.User.Name, &b.User.PhoneNumber,
	)
	return b, err
}

func bookingWhere(filter model.BookingFilter) sq.And {
	where := sq.And{}
	if filter.RoomID != nil {
		where = append(where, sq.Eq{"rb.room_id": *filter.RoomID})
	}
	if filter.UserID != nil {
		where = append(where, sq.Eq{"rb.user_id": *filter.UserID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"rb.status": filter.Status})
	}
	if filter.Date != nil {
		from := *filter.Date
		where = append(where, sq.GtOrEq{"rb.start_time": from}, sq.Lt{"rb.start_time": from.Add(24 * time.Hour)})
	}
	return where
}

func (r *repository) ListBookings(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error) {
	query, args, err := selectBookings().
		Where(bookingWhere(filter)).
		OrderBy("rb.start_time desc").
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

	bookings, err := pgx.CollectRows(rows, scanBooking)
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return bookings, nil
}

func (r *repository) CountBookings(ctx context.Context, filter model.BookingFilter) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(bookingsTableName+" rb").Where(bookingWhere(filter)))
}

func (r *repository) GetBooking(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	return r.collectBooking(ctx, selectBookings().Where(sq.Eq{"rb.id": id}).Limit(1))
}

// LockBooking reads the booking and holds its row until the transaction ends.
func (r *repository) LockBooking(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	return r.collectBooking(ctx, selectBookings().Where(sq.Eq{"rb.id": id}).Limit(1).Suffix("for update of rb"))
}

func (r *repository) collectBooking(ctx context.Context, b sq.SelectBuilder) (model.Booking, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return model.Booking{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Booking{}, err
	}
	defer rows.Close()

	booking, err := pgx.CollectOneRow(rows, scanBooking)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Booking{}, errs.ErrBookingNotFound
		}
		return model.Booking{}, err
	}
	return booking, nil
}

// roomSlotsQuery selects holding bookings of the room overlapping the
// half-open window [from, to).
func roomSlotsQuery(roomID uuid.UUID, from, to time.Time) sq.SelectBuilder {
	return qb.Select("id", "start_time", "end_time", "status").
		From(bookingsTableName).
		Where(sq.Eq{"room_id": roomID, "status": holdingStatuses}).
		Where(sq.Gt{"end_time": from}).
		Where(sq.Lt{"start_time": to}).
		OrderBy("start_time")
}

func (r *repository) ListRoomSlots(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]model.BookingSlot, error) {
	query, args, err := roomSlotsQuery(roomID, from, to).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.BookingSlot, error) {
		var s model.BookingSlot
		err := row.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.Status)
		return s, err
	})
}

func (r *repository) CountActiveBookings(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.count(ctx, qb.Select("count(*)").
		From(bookingsTableName).
		Where(sq.Eq{"user_id": userID, "status": holdingStatuses}))
}

func (r *repository) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	query, args, err := qb.Insert(bookingsTableName).
		Columns("user_id", "room_id", "booking_date", "start_time", "end_time", "duration", "total_cost",
			"status", "payment_status", "purpose", "special_requests").
		Values(b.UserID, b.RoomID, b.BookingDate, b.StartTime, b.EndTime, b.Duration, b.TotalCost,
			b.Status, b.PaymentStatus, b.Purpose, b.SpecialRequests).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Booking{}, err
	}
	var id uuid.UUID
	if err = r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgerrcode.ExclusionViolation {
			return model.Booking{}, errs.ErrTimeSlotConflict
		}
		return model.Booking{}, errors.Wrap(err, "insert booking")
	}
	return r.GetBooking(ctx, id)
}

func (r *repository) UpdateBookingStatus(
	ctx context.Context,
	id uuid.UUID,
	status *model.BookingStatus,
	paymentStatus *model.PaymentStatus,
) (model.Booking, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if status != nil {
		set["status"] = *status
	}
	if paymentStatus != nil {
		set["payment_status"] = *paymentStatus
	}
	ok, err := r.execAffected(ctx, qb.Update(bookingsTableName).SetMap(set).Where(sq.Eq{"id": id}))
	if err != nil {
		if pgErr, isPg := pgError(err); isPg && pgErr.Code == pgerrcode.ExclusionViolation {
			return model.Booking{}, errs.ErrTimeSlotConflict
		}
		return model.Booking{}, errors.Wrap(err, "update booking")
	}
	if !ok {
		return model.Booking{}, errs.ErrBookingNotFound
	}
	return r.GetBooking(ctx, id)
}
