package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

func bookReq(isbn string) model.CreateBookRequest {
	return model.CreateBookRequest{
		Title:       "Bumi Manusia",
		Author:      "Pramoedya Ananta Toer",
		ISBN:        isbn,
		Publisher:   "Hasta Mitra",
		PublishYear: 1980,
		Category:    "Fiksi",
		Genre:       []string{"Sejarah"},
		Pages:       535,
		Location:    "R-3",
		Quantity:    2,
	}
}

func TestService_CreateBooks(t *testing.T) {
	t.Parallel()
	type mockBehavior func(f *fixture)

	tests := []struct {
		name         string
		isbns        []string
		mockBehavior mockBehavior
		wantCreated  int
		wantMsg      string
	}{
		{
			name:  "ok",
			isbns: []string{"9789799731234", "9780306406157"},
			mockBehavior: func(f *fixture) {
				f.repo.EXPECT().ExistingISBNs(gomock.Any(), []string{"9789799731234", "9780306406157"}).Return(nil, nil)
				f.repo.EXPECT().CreateBooks(gomock.Any(), gomock.Len(2)).Return(2, nil)
			},
			wantCreated: 2,
		},
		{
			name:         "err. duplicate inside the batch",
			isbns:        []string{"9789799731234", "9789799731234"},
			mockBehavior: func(f *fixture) {},
			wantMsg:      "Duplicate ISBN in request: 9789799731234",
		},
		{
			name:  "err. already stored",
			isbns: []string{"9789799731234", "9780306406157"},
			mockBehavior: func(f *fixture) {
				f.repo.EXPECT().ExistingISBNs(gomock.Any(), gomock.Any()).Return([]string{"9780306406157"}, nil)
			},
			wantMsg: "ISBN already exists: 9780306406157",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tt.mockBehavior(f)
			req := model.BulkCreateBooksRequest{}
			for _, isbn := range tt.isbns {
				req.Books = append(req.Books, bookReq(isbn))
			}

			res, err := f.svc.CreateBooks(context.Background(), req)
			if tt.wantMsg != "" {
				require.EqualError(t, err, tt.wantMsg)
				require.Equal(t, errs.KindConflict, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCreated, res.Created)
		})
	}
}

func TestService_GetBook(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		active  bool
		repoErr error
		wantErr error
	}{
		{name: "ok", active: true},
		{name: "err. soft deleted", wantErr: errs.ErrBookNotFound},
		{name: "err. unknown", repoErr: errs.ErrBookNotFound, wantErr: errs.ErrBookNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			book := newBook(1)
			book.IsActive = tt.active
			f.repo.EXPECT().GetBook(gomock.Any(), book.ID).Return(book, tt.repoErr)

			got, err := f.svc.GetBook(context.Background(), book.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, errs.KindNotFound, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, book, got)
		})
	}
}

func TestService_UpdateBook_QuantityInvariant(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	book := newBook(5)
	quantity := 3
	f.repo.EXPECT().GetBook(gomock.Any(), book.ID).Return(book, nil)

	_, err := f.svc.UpdateBook(context.Background(), book.ID, model.UpdateBookRequest{Quantity: &quantity})
	require.ErrorIs(t, err, errs.ErrQuantityInvariant)

	_, err = f.svc.UpdateBookQuantity(context.Background(), book.ID, model.UpdateBookQuantityRequest{Quantity: 2, AvailableQuantity: 3})
	require.ErrorIs(t, err, errs.ErrQuantityInvariant)
}

func TestService_ListNewBooks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: 10},
		{name: "clamped", limit: 500, want: 50},
		{name: "as given", limit: 5, want: 5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.repo.EXPECT().ListNewBooks(gomock.Any(), tt.want).Return(nil, nil)

			books, err := f.svc.ListNewBooks(context.Background(), tt.limit)
			require.NoError(t, err)
			require.NotNil(t, books)
			require.Empty(t, books)
		})
	}
}

func TestService_ListBooks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	filter := model.BookFilter{Search: "pelangi", Paging: model.NewPaging(2, 1)}
	f.repo.EXPECT().ListBooks(gomock.Any(), filter).Return([]model.Book{newBook(1)}, nil)
	f.repo.EXPECT().CountBooks(gomock.Any(), filter).Return(3, nil)

	res, err := f.svc.ListBooks(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, 3, res.Total)
	require.Equal(t, 3, res.TotalPages())
	require.Equal(t, 2, res.Page)
}

func TestService_DeleteBook(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := uuid.New()
	f.repo.EXPECT().DeactivateBook(gomock.Any(), id).Return(nil).Times(2)

	require.NoError(t, f.svc.DeleteBook(context.Background(), id))
	require.NoError(t, f.svc.DeleteBook(context.Background(), id))
}
