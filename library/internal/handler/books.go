package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naratama/library-service/library/internal/model"
)

// ListBooks godoc
// @Summary catalog page
// @Tags books
// @Produce json
// @Param search query string false "title, author or isbn"
// @Param category query string false "category"
// @Param author query string false "author"
// @Param available query bool false "only books with copies on the shelf"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} pageResponse
// @Router /api/books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	q := newQuery(c)
	filter := model.BookFilter{
		Search:    q.String("search"),
		Category:  q.String("category"),
		Author:    q.String("author"),
		Available: q.Bool("available"),
		Paging:    q.Paging(),
	}
	if err := q.Err(); err != nil {
		return err
	}
	books, err := h.svc.Books.ListBooks(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return page(c, books)
}

// SearchBooks is the advanced catalog search with year bounds and sorting.
func (h *Handler) SearchBooks(c echo.Context) error {
	q := newQuery(c)
	filter := model.BookFilter{
		Search:    q.String("q"),
		Category:  q.String("category"),
		Author:    q.String("author"),
		Available: q.Bool("available"),
		MinYear:   q.Int("minYear"),
		MaxYear:   q.Int("maxYear"),
		SortBy:    q.String("sortBy"),
		SortOrder: q.String("sortOrder"),
		Paging:    q.Paging(),
	}
	if err := q.Err(); err != nil {
		return err
	}
	if filter.SortBy == "" {
		filter.SortBy = "addedDate"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}
	if _, known := model.BookSortColumns[filter.SortBy]; !known {
		return echo.NewHTTPError(http.StatusBadRequest, "sortBy must be one of [title author publishYear addedDate]")
	}
	if filter.SortOrder != "asc" && filter.SortOrder != "desc" {
		return echo.NewHTTPError(http.StatusBadRequest, "sortOrder must be one of [asc desc]")
	}
	if filter.MinYear > 0 && filter.MaxYear > 0 && filter.MinYear > filter.MaxYear {
		return echo.NewHTTPError(http.StatusBadRequest, "minYear must be less than or equal to maxYear")
	}
	books, err := h.svc.Books.ListBooks(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return page(c, books)
}

func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.svc.Books.ListCategories(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return items(c, categories)
}

func (h *Handler) ListNewBooks(c echo.Context) error {
	q := newQuery(c)
	limit := q.Int("limit")
	if err := q.Err(); err != nil {
		return err
	}
	books, err := h.svc.Books.ListNewBooks(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return items(c, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	book, err := h.svc.Books.GetBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "", book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.svc.Books.CreateBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "Book added successfully", book)
}

// CreateBooks inserts the whole batch or nothing.
func (h *Handler) CreateBooks(c echo.Context) error {
	var req model.BulkCreateBooksRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Books.CreateBooks(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, "Books added successfully", res)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateBookRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	book, err := h.svc.Books.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Book updated successfully", book)
}

func (h *Handler) UpdateBookQuantity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateBookQuantityRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	book, err := h.svc.Books.UpdateBookQuantity(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Book quantity updated successfully", book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err = h.svc.Books.DeleteBook(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Book removed successfully", nil)
}
