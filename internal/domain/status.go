package domain

// BookingTransitions is the booking lifecycle as code. Completed and cancelled are terminal.
var BookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// PaymentTransitions is the payment lifecycle, independent of the booking's state.
var PaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

func CanTransitionBooking(from, to BookingStatus) bool {
	for _, s := range BookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, s := range PaymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(BookingTransitions[s]) == 0
}

func (s PaymentStatus) IsTerminal() bool {
	return len(PaymentTransitions[s]) == 0
}
