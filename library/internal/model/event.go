package model

import "time"

type EventType string

const (
	EventLoanCreated          EventType = "loan.created"
	EventLoanReturned         EventType = "loan.returned"
	EventLoanExtended         EventType = "loan.extended"
	EventBookingCreated       EventType = "booking.created"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventBookingCancelled     EventType = "booking.cancelled"
	EventMembershipActivated  EventType = "membership.activated"
	EventMembershipDeactivate EventType = "membership.deactivated"
	EventPaymentSettled       EventType = "payment.settled"
)

type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}
