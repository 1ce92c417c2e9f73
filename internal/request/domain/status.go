package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusSaved     Status = "saved"
	StatusNew       Status = "new"
	StatusInProcess Status = "in_process"
	StatusClosed    Status = "closed"
	StatusRejected  Status = "rejected"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusSaved, StatusNew, StatusInProcess, StatusClosed, StatusRejected}

var statusLabels = map[Status]string{
	StatusSaved:     "Saved to Complete Later",
	StatusNew:       "New",
	StatusInProcess: "In Process",
	StatusClosed:    "Closed",
	StatusRejected:  "Rejected",
}

// transitions maps a status to the statuses it may move to. Closed and
// rejected are terminal. Re-applying a non-terminal status is allowed and
// only refreshes status_changed_at.
var transitions = map[Status]map[Status]struct{}{
	StatusNew:       {StatusNew: {}, StatusSaved: {}, StatusInProcess: {}, StatusClosed: {}, StatusRejected: {}},
	StatusSaved:     {StatusSaved: {}, StatusNew: {}, StatusInProcess: {}, StatusClosed: {}, StatusRejected: {}},
	StatusInProcess: {StatusInProcess: {}, StatusSaved: {}, StatusClosed: {}, StatusRejected: {}},
	StatusClosed:    {},
	StatusRejected:  {},
}

var (
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrIllegalTransition = errors.New("illegal_status_transition")
)

func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := statusLabels[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusRejected
}

// CanTransition reports whether a row in from may be set to to. Rows holding
// a value outside the enum, left by older releases, may be set to anything.
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	allowed, known := transitions[from]
	if !known {
		return true
	}
	_, ok := allowed[to]
	return ok
}

// TransitionError names the first row that blocked a status change.
type TransitionError struct {
	RequestID int64
	From      Status
	To        Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("request %d cannot move from %s to %s", e.RequestID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }
