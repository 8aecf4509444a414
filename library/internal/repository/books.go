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

var bookColumns = []string{
	"id", "title", "author", "isbn", "publisher", "publish_year", "category", "genre", "language",
	"pages", "description", "cover_image", "location", "quantity", "available_quantity", "is_active",
	"added_date", "created_at", "updated_at",
}

func bookWhere(filter model.BookFilter) sq.And {
	where := sq.And{sq.Eq{"is_active": true}}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": like},
			sq.ILike{"author": like},
			sq.ILike{"isbn": like},
		})
	}
	if filter.Category != "" {
		where = append(where, sq.ILike{"category": filter.Category})
	}
	if filter.Author != "" {
		where = append(where, sq.ILike{"author": "%" + filter.Author + "%"})
	}
	if filter.Available != nil {
		if *filter.Available {
			where = append(where, sq.Gt{"available_quantity": 0})
		} else {
			where = append(where, sq.Eq{"available_quantity": 0})
		}
	}
	if filter.MinYear > 0 {
		where = append(where, sq.GtOrEq{"publish_year": filter.MinYear})
	}
	if filter.MaxYear > 0 {
		where = append(where, sq.LtOrEq{"publish_year": filter.MaxYear})
	}
	return where
}

func bookOrder(filter model.BookFilter) string {
	col, ok := model.BookSortColumns[filter.SortBy]
	if !ok {
		return "created_at desc"
	}
	if filter.SortOrder == "desc" {
		return col + " desc"
	}
	return col + " asc"
}

func (r *repository) collectBooks(ctx context.Context, b sq.SelectBuilder) ([]model.Book, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}
	return books, nil
}

func (r *repository) collectBook(ctx context.Context, query string, args []any) (model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrBookNotFound
		}
		return model.Book{}, bookWriteError(err)
	}
	return book, nil
}

func bookWriteError(err error) error {
	pgErr, ok := pgError(err)
	if !ok {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return errs.ErrISBNExists
	case pgerrcode.CheckViolation:
		return errs.ErrQuantityInvariant
	}
	return err
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	return r.collectBooks(ctx, qb.Select(bookColumns...).
		From(booksTableName).
		Where(bookWhere(filter)).
		OrderBy(bookOrder(filter)).
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset()))
}

func (r *repository) CountBooks(ctx context.Context, filter model.BookFilter) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(booksTableName).Where(bookWhere(filter)))
}

func (r *repository) ListCategories(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("distinct category").
		From(booksTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *repository) ListNewBooks(ctx context.Context, limit int) ([]model.Book, error) {
	return r.collectBooks(ctx, qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("added_date desc").
		Limit(uint64(limit)))
}

func (r *repository) GetBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.collectBook(ctx, query, args)
}

func insertBooks(books []model.Book) sq.InsertBuilder {
	b := qb.Insert(booksTableName).Columns(
		"title", "author", "isbn", "publisher", "publish_year", "category", "genre", "language",
		"pages", "description", "cover_image", "location", "quantity", "available_quantity", "is_active",
	)
	for _, book := range books {
		genre := book.Genre
		if genre == nil {
			genre = []string{}
		}
		b = b.Values(book.Title, book.Author, book.ISBN, book.Publisher, book.PublishYear, book.Category,
			genre, book.Language, book.Pages, book.Description, book.CoverImage, book.Location,
			book.Quantity, book.AvailableQuantity, book.IsActive)
	}
	return b
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := insertBooks([]model.Book{book}).Suffix(returning(bookColumns)).ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.collectBook(ctx, query, args)
}

func (r *repository) CreateBooks(ctx context.Context, books []model.Book) (int, error) {
	query, args, err := insertBooks(books).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, bookWriteError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *repository) ExistingISBNs(ctx context.Context, isbns []string) ([]string, error) {
	if len(isbns) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select("isbn").From(booksTableName).Where(sq.Eq{"isbn": isbns}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *repository) UpdateBook(ctx context.Context, id uuid.UUID, upd model.UpdateBookRequest) (model.Book, error) {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	put := func(col string, v any, ok bool) {
		if ok {
			set[col] = v
		}
	}
	put("title", deref(upd.Title), upd.Title != nil)
	put("author", deref(upd.Author), upd.Author != nil)
	put("isbn", deref(upd.ISBN), upd.ISBN != nil)
	put("publisher", deref(upd.Publisher), upd.Publisher != nil)
	put("publish_year", deref(upd.PublishYear), upd.PublishYear != nil)
	put("category", deref(upd.Category), upd.Category != nil)
	put("genre", upd.Genre, upd.Genre != nil)
	put("language", deref(upd.Language), upd.Language != nil)
	put("pages", deref(upd.Pages), upd.Pages != nil)
	put("description", deref(upd.Description), upd.Description != nil)
	put("cover_image", deref(upd.CoverImage), upd.CoverImage != nil)
	put("location", deref(upd.Location), upd.Location != nil)
	put("quantity", deref(upd.Quantity), upd.Quantity != nil)
	put("available_quantity", deref(upd.AvailableQuantity), upd.AvailableQuantity != nil)

	query, args, err := qb.Update(booksTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix(returning(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.collectBook(ctx, query, args)
}

func (r *repository) UpdateBookQuantity(ctx context.Context, id uuid.UUID, quantity, available int) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("quantity", quantity).
		Set("available_quantity", available).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix(returning(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.collectBook(ctx, query, args)
}

// DeactivateBook soft deletes a book; deleting an inactive book is a no-op.
func (r *repository) DeactivateBook(ctx context.Context, id uuid.UUID) error {
	changed, err := r.execAffected(ctx, qb.Update(booksTableName).
		Set("is_active", false).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "is_active": true}))
	if err != nil {
		return errors.Wrap(err, "deactivate book")
	}
	if changed {
		return nil
	}
	found, err := r.exists(ctx, qb.Select("1").From(booksTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if !found {
		return errs.ErrBookNotFound
	}
	return nil
}

// TakeBookCopy decrements the shelf count only while a copy is left.
func (r *repository) TakeBookCopy(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := r.execAffected(ctx, qb.Update(booksTableName).
		Set("available_quantity", sq.Expr("available_quantity - 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "is_active": true}).
		Where(sq.Gt{"available_quantity": 0}))
	if err != nil {
		return false, errors.Wrap(err, "take book copy")
	}
	return ok, nil
}

func (r *repository) ReturnBookCopy(ctx context.Context, id uuid.UUID) error {
	ok, err := r.execAffected(ctx, qb.Update(booksTableName).
		Set("available_quantity", sq.Expr("least(available_quantity + 1, quantity)")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "return book copy")
	}
	if !ok {
		return errs.ErrBookNotFound
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
