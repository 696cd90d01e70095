package orderflow

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusCompleted,
	StatusCancelled,
}

var (
	ErrUnknownStatus        = errors.New("unknown order status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// transitions is the only way an order moves. Cancellation is offered
// until the kitchen starts preparing.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusCompleted},
}

var labels = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusPreparing: "Preparing",
	StatusReady:     "Ready",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := labels[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Next lists the states reachable from s in one step.
func Next(s Status) []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Apply moves current to target. Requesting the state the order is already
// in is a no-op. Anything off the graph fails and leaves current as is.
func Apply(current, target Status) (Status, bool, error) {
	if _, err := ParseStatus(string(target)); err != nil {
		return current, false, err
	}
	if current == target {
		return current, false, nil
	}
	if !CanTransition(current, target) {
		return current, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}
	return target, true, nil
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
}
