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
	"github.com/naratama/library-service/pkg/auth"
)

var userColumns = []string{
	"u.id", "u.name", "u.email", "u.phone_number", "u.password_hash", "u.google_id", "u.role",
	"u.is_active", "u.email_verified", "u.otp_code", "u.otp_expiry", "u.last_login", "u.join_date",
	"u.created_at", "u.updated_at",
	"m.id", "m.user_id", "m.membership_number", "m.start_date", "m.end_date", "m.is_active",
	"m.created_at", "m.updated_at",
}

var membershipColumns = []string{
	"id", "user_id", "membership_number", "start_date", "end_date", "is_active", "created_at", "updated_at",
}

func selectUsers() sq.SelectBuilder {
	return qb.Select(userColumns...).
		From(usersTableName + " u").
		LeftJoin(membershipsTableName + " m on m.user_id = u.id")
}

func scanUser(row pgx.CollectableRow) (model.User, error) {
	var (
		u      model.User
		m      model.Membership
		id     *uuid.UUID
		userID *uuid.UUID

		number      *string
		start, end  *time.Time
		active      *bool
		created, up *time.Time
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.GoogleID, &u.Role,
		&u.IsActive, &u.EmailVerified, &u.OTPCode, &u.OTPExpiry, &u.LastLogin, &u.JoinDate,
		&u.CreatedAt, &u.UpdatedAt,
		&id, &userID, &number, &start, &end, &active, &created, &up,
	)
	if err != nil {
		return model.User{}, err
	}
	u.HasPassword = u.PasswordHash != nil
	if id != nil {
		m.ID = *id
		m.UserID = *userID
		m.MembershipNumber = *number
		m.StartDate = *start
		m.EndDate = *end
		m.IsActive = *active
		m.CreatedAt = *created
		m.UpdatedAt = *up
		u.Membership = &m
	}
	return u, nil
}

func (r *repository) getUserBy(ctx context.Context, pred sq.Sqlizer) (model.User, error) {
	query, args, err := selectUsers().Where(pred).Limit(1).ToSql()
	if err != nil {
		return model.User{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.User{}, err
	}
	defer rows.Close()

	user, err := pgx.CollectOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getUserBy(ctx, sq.Eq{"u.id": id})
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getUserBy(ctx, sq.Expr("lower(u.email) = lower(?)", email))
}

func (r *repository) GetUserByPhone(ctx context.Context, phone string) (model.User, error) {
	return r.getUserBy(ctx, sq.Eq{"u.phone_number": phone})
}

func (r *repository) GetUserByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	return r.getUserBy(ctx, sq.Eq{"u.google_id": googleID})
}

func userWhere(filter model.UserFilter) sq.And {
	where := sq.And{}
	if filter.IsActive != nil {
		where = append(where, sq.Eq{"u.is_active": *filter.IsActive})
	}
	if filter.IsMember != nil {
		if *filter.IsMember {
			where = append(where, sq.Expr("(m.is_active and m.end_date > ?)", filter.Now))
		} else {
			where = append(where, sq.Expr("(m.id is null or not (m.is_active and m.end_date > ?))", filter.Now))
		}
	}
	return where
}

func (r *repository) ListUsers(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	query, args, err := selectUsers().
		Where(userWhere(filter)).
		OrderBy("u.created_at desc").
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

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return users, nil
}

func (r *repository) CountUsers(ctx context.Context, filter model.UserFilter) (int, error) {
	return r.count(ctx, qb.Select("count(*)").
		From(usersTableName+" u").
		LeftJoin(membershipsTableName+" m on m.user_id = u.id").
		Where(userWhere(filter)))
}

func (r *repository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	role := user.Role
	if role == "" {
		role = auth.RoleUser
	}
	query, args, err := qb.Insert(usersTableName).
		Columns("name", "email", "phone_number", "password_hash", "google_id", "role", "email_verified").
		Values(user.Name, user.Email, user.PhoneNumber, user.PasswordHash, user.GoogleID, role, user.EmailVerified).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var id uuid.UUID
	if err = r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return model.User{}, errs.ErrUserExists
		}
		return model.User{}, errors.Wrap(err, "insert user")
	}
	return r.GetUser(ctx, id)
}

func (r *repository) UpdateUser(ctx context.Context, id uuid.UUID, upd model.UpdateUserRequest) (model.User, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PhoneNumber != nil {
		set["phone_number"] = *upd.PhoneNumber
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}
	ok, err := r.execAffected(ctx, qb.Update(usersTableName).SetMap(set).Where(sq.Eq{"id": id}))
	if err != nil {
		if pgErr, isPg := pgError(err); isPg && pgErr.Code == pgerrcode.UniqueViolation {
			return model.User{}, errs.ErrUserExists
		}
		return model.User{}, errors.Wrap(err, "update user")
	}
	if !ok {
		return model.User{}, errs.ErrUserNotFound
	}
	return r.GetUser(ctx, id)
}

func (r *repository) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return r.updateUserFields(ctx, id, map[string]any{"is_active": false})
}

func (r *repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateUserFields(ctx, id, map[string]any{"last_login": at})
}

func (r *repository) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.updateUserFields(ctx, id, map[string]any{"password_hash": hash})
}

func (r *repository) LinkGoogleAccount(ctx context.Context, id uuid.UUID, googleID string) error {
	return r.updateUserFields(ctx, id, map[string]any{"google_id": googleID, "email_verified": true})
}

func (r *repository) SetOTP(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	return r.updateUserFields(ctx, id, map[string]any{"otp_code": code, "otp_expiry": expiry})
}

func (r *repository) VerifyEmail(ctx context.Context, id uuid.UUID) error {
	return r.updateUserFields(ctx, id, map[string]any{"email_verified": true, "otp_code": nil, "otp_expiry": nil})
}

func (r *repository) updateUserFields(ctx context.Context, id uuid.UUID, set map[string]any) error {
	set["updated_at"] = sq.Expr("now()")
	ok, err := r.execAffected(ctx, qb.Update(usersTableName).SetMap(set).Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "update user")
	}
	if !ok {
		return errs.ErrUserNotFound
	}
	return nil
}

// LockMembership locks the user row and returns the membership, errs.ErrNotFound when there is none.
func (r *repository) LockMembership(ctx context.Context, userID uuid.UUID) (model.Membership, error) {
	var locked uuid.UUID
	err := r.db.QueryRow(ctx, `select id from users where id = $1 for update`, userID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Membership{}, errs.ErrUserNotFound
		}
		return model.Membership{}, errors.Wrap(err, "lock user")
	}

	query, args, err := qb.Select(membershipColumns...).
		From(membershipsTableName).
		Where(sq.Eq{"user_id": userID}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.Membership{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Membership{}, err
	}
	defer rows.Close()

	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Membership])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Membership{}, errs.ErrNotFound
		}
		return model.Membership{}, err
	}
	return m, nil
}

func (r *repository) NextMembershipSeq(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `select nextval('membership_number_seq')`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "nextval")
	}
	return n, nil
}

func (r *repository) CreateMembership(ctx context.Context, m model.Membership) (model.Membership, error) {
	query, args, err := qb.Insert(membershipsTableName).
		Columns("user_id", "membership_number", "start_date", "end_date", "is_active").
		Values(m.UserID, m.MembershipNumber, m.StartDate, m.EndDate, m.IsActive).
		Suffix(returning(membershipColumns)).
		ToSql()
	if err != nil {
		return model.Membership{}, err
	}
	return r.collectMembership(ctx, query, args)
}

func (r *repository) UpdateMembership(ctx context.Context, m model.Membership) (model.Membership, error) {
	query, args, err := qb.Update(membershipsTableName).
		Set("start_date", m.StartDate).
		Set("end_date", m.EndDate).
		Set("is_active", m.IsActive).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": m.ID}).
		Suffix(returning(membershipColumns)).
		ToSql()
	if err != nil {
		return model.Membership{}, err
	}
	return r.collectMembership(ctx, query, args)
}

func (r *repository) collectMembership(ctx context.Context, query string, args []any) (model.Membership, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Membership{}, err
	}
	defer rows.Close()

	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Membership])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Membership{}, errs.ErrNotFound
		}
		return model.Membership{}, errors.Wrap(err, "membership")
	}
	return m, nil
}
