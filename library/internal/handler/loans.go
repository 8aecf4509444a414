package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
)

// ListLoans shows staff every loan and everybody else their own.
func (h *Handler) ListLoans(c echo.Context) error {
	q := newQuery(c)
	filter := model.LoanFilter{
		UserID: q.UUID("userId"),
		BookID: q.UUID("bookId"),
		Status: model.LoanStatus(q.String("status")),
		Paging: q.Paging(),
	}
	if err := q.Err(); err != nil {
		return err
	}
	if caller := identity(c); !caller.Role.IsStaff() {
		filter.UserID = &caller.UserID
	}
	loans, err := h.svc.Loans.ListLoans(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}
	return page(c, loans)
}

func (h *Handler) ListOverdueLoans(c echo.Context) error {
	loans, err := h.svc.Loans.ListOverdueLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return items(c, loans)
}

func (h *Handler) GetLoan(c echo.Context) error {
	loan, err := h.ownedLoan(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", loan)
}

// CreateLoan godoc
// @Summary borrow a book
// @Description Members get the loan right away, everyone else a commitment fee transaction.
// @Tags loans
// @Accept json
// @Produce json
// @Param input body model.CreateLoanRequest true "loan"
// @Success 201 {object} response
// @Failure 402 {object} response
// @Router /api/book-loans [post]
func (h *Handler) CreateLoan(c echo.Context) error {
	var req model.CreateLoanRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	caller := identity(c)
	if req.UserID == uuid.Nil {
		req.UserID = caller.UserID
	}
	if req.UserID != caller.UserID && !caller.Role.IsStaff() {
		return httpError(errs.ErrOwnLoansOnly)
	}
	res, err := h.svc.Loans.CreateLoan(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	if res.Payment != nil {
		return c.JSON(http.StatusPaymentRequired, response{
			Message: errs.ErrCommitmentFeeRequired.Msg,
			Data:    res.Payment,
		})
	}
	return respond(c, http.StatusCreated, "Book loan created successfully", res.Loan)
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req model.ReturnLoanRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	loan, err := h.svc.Loans.ReturnLoan(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Book returned successfully", loan)
}

func (h *Handler) ExtendLoan(c echo.Context) error {
	loan, err := h.ownedLoan(c)
	if err != nil {
		return err
	}
	var req model.ExtendLoanRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	extended, err := h.svc.Loans.ExtendLoan(c.Request().Context(), loan.ID, req.ExtensionDays)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, "Book loan extended successfully", extended)
}

func (h *Handler) ownedLoan(c echo.Context) (model.Loan, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return model.Loan{}, err
	}
	loan, err := h.svc.Loans.GetLoan(c.Request().Context(), id)
	if err != nil {
		return model.Loan{}, httpError(err)
	}
	if !identity(c).CanAccess(loan.UserID) {
		return model.Loan{}, httpError(errs.ErrForbidden)
	}
	return loan, nil
}
