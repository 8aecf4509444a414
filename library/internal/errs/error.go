package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindBusiness
	KindConflict
	KindUnauthenticated
	KindForbidden
	KindPaymentRequired
)

// Error is a domain failure with a client facing message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Business builds a formatted business-rule violation.
func Business(format string, args ...any) *Error {
	return &Error{Kind: KindBusiness, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in the chain or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrNotFound = New(KindNotFound, "Not found")

	ErrUserNotFound         = New(KindNotFound, "User not found")
	ErrBookNotFound         = New(KindNotFound, "Book not found")
	ErrLoanNotFound         = New(KindNotFound, "Book loan not found")
	ErrRoomNotFound         = New(KindNotFound, "Room not found")
	ErrBookingNotFound      = New(KindNotFound, "Booking not found")
	ErrAnnouncementNotFound = New(KindNotFound, "Announcement not found")
	ErrPaymentNotFound      = New(KindNotFound, "Payment not found")

	ErrUserInactive              = New(KindBusiness, "User account is inactive")
	ErrBookUnavailable           = New(KindBusiness, "Book not available for loan")
	ErrActiveLoanExists          = New(KindBusiness, "User already has an active loan for this book")
	ErrLoanNotActive             = New(KindBusiness, "Book loan is not active")
	ErrRoomUnavailable           = New(KindBusiness, "Room not available")
	ErrBookingTooShort           = New(KindBusiness, "Minimum booking duration is 1 hour")
	ErrTimeSlotConflict          = New(KindBusiness, "Time slot conflicts with existing booking")
	ErrNoActiveMembership        = New(KindBusiness, "User does not have an active membership")
	ErrQuantityInvariant         = New(KindBusiness, "Available quantity cannot be greater than total quantity")
	ErrBookingNotPayable         = New(KindBusiness, "Booking does not require payment")
	ErrBookingNotAwaitingPayment = New(KindBusiness, "Booking is no longer awaiting payment, refund required")
	ErrPaymentPending            = New(KindBusiness, "Payment is still pending")
	ErrPaymentFailed             = New(KindBusiness, "Payment failed or expired")
	ErrWrongPassword             = New(KindBusiness, "Current password is incorrect")
	ErrPasswordAlreadySet        = New(KindBusiness, "Password already set, use change password instead")
	ErrPasswordNotSet            = New(KindBusiness, "Password is not set, use set password instead")
	ErrInvalidOTP                = New(KindBusiness, "Invalid OTP")
	ErrOTPExpired                = New(KindBusiness, "OTP has expired")
	ErrEndBeforeStart            = New(KindValidation, "End time must be after start time")
	ErrMissingRequired           = New(KindValidation, "Missing required fields")
	ErrInvalidDate               = New(KindValidation, "Invalid date format, use YYYY-MM-DD")

	ErrUserExists          = New(KindConflict, "User with this phone number or email already exists")
	ErrISBNExists          = New(KindConflict, "ISBN already exists")
	ErrDuplicateISBNInBulk = New(KindConflict, "Duplicate ISBN in request")
	ErrRoomNumberUsed      = New(KindConflict, "Room number already exists")

	ErrInvalidCredentials = New(KindUnauthenticated, "Invalid email or password")
	ErrNoPassword         = New(KindUnauthenticated, "Account has no password, use Google login")
	ErrAccountInactive    = New(KindUnauthenticated, "Account is deactivated")
	ErrUnauthenticated    = New(KindUnauthenticated, "Authentication required")

	ErrForbidden       = New(KindForbidden, "Access denied")
	ErrProfileAccess   = New(KindForbidden, "You can only view your own profile or must be staff/admin")
	ErrAdminOnlyFields = New(KindForbidden, "Only admin can change role or active status")
	ErrOwnLoansOnly    = New(KindForbidden, "You can only borrow books for yourself")
	ErrOwnBookingsOnly = New(KindForbidden, "You can only book rooms for yourself")

	ErrCommitmentFeeRequired = New(KindPaymentRequired, "Commitment fee payment required")
)
