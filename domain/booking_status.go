package domain

import "fmt"

type BookingStatus string

const (
	Pending   BookingStatus = "pending"
	Confirmed BookingStatus = "confirmed"
	Cancelled BookingStatus = "cancelled"
)

var BookingStatuses = []BookingStatus{Pending, Confirmed, Cancelled}

// Every status may currently move to every status, including itself.
var bookingStatusTransitions = map[BookingStatus][]BookingStatus{
	Pending:   {Pending, Confirmed, Cancelled},
	Confirmed: {Pending, Confirmed, Cancelled},
	Cancelled: {Pending, Confirmed, Cancelled},
}

// ParseBookingStatus accepts only the exact enum values.
func ParseBookingStatus(value string) (BookingStatus, error) {
	status := BookingStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status %q", value)
	}
	return status, nil
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingStatusTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}
