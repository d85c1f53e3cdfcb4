package models

import (
	"fmt"

	"reservas/constants"
	"reservas/errors"
)

// ReservationState defines the transitions allowed out of one status
type ReservationState interface {
	Pending(r *Reservation) error
	Confirm(r *Reservation) error
	Cancel(r *Reservation) error
}

func transitionError(from, to string) error {
	return errors.NewAppError(errors.ErrCodeInvalidTransition,
		fmt.Sprintf("No se puede pasar de %s a %s", from, to), nil)
}

// PendingState is the initial status
type PendingState struct{}

func (s *PendingState) Pending(r *Reservation) error { return nil }

func (s *PendingState) Confirm(r *Reservation) error {
	r.Status = constants.StatusConfirmed
	return nil
}

func (s *PendingState) Cancel(r *Reservation) error {
	r.Status = constants.StatusCancelled
	return nil
}

// ConfirmedState allows moving back to pending unless strict is set
type ConfirmedState struct {
	strict bool
}

func (s *ConfirmedState) Pending(r *Reservation) error {
	if s.strict {
		return transitionError(constants.StatusConfirmed, constants.StatusPending)
	}
	r.Status = constants.StatusPending
	return nil
}

func (s *ConfirmedState) Confirm(r *Reservation) error { return nil }

func (s *ConfirmedState) Cancel(r *Reservation) error {
	r.Status = constants.StatusCancelled
	return nil
}

// CancelledState is terminal only when strict is set
type CancelledState struct {
	strict bool
}

func (s *CancelledState) Pending(r *Reservation) error {
	if s.strict {
		return transitionError(constants.StatusCancelled, constants.StatusPending)
	}
	r.Status = constants.StatusPending
	return nil
}

func (s *CancelledState) Confirm(r *Reservation) error {
	if s.strict {
		return transitionError(constants.StatusCancelled, constants.StatusConfirmed)
	}
	r.Status = constants.StatusConfirmed
	return nil
}

func (s *CancelledState) Cancel(r *Reservation) error { return nil }

// GetReservationState returns the state for a status. With strict set,
// cancelled is terminal and confirmed can only move to cancelled.
func GetReservationState(status string, strict bool) ReservationState {
	switch status {
	case constants.StatusConfirmed:
		return &ConfirmedState{strict: strict}
	case constants.StatusCancelled:
		return &CancelledState{strict: strict}
	default:
		return &PendingState{}
	}
}

// Transition moves r to target through its current state.
func Transition(r *Reservation, target string, strict bool) error {
	state := GetReservationState(r.Status, strict)
	switch target {
	case constants.StatusPending:
		return state.Pending(r)
	case constants.StatusConfirmed:
		return state.Confirm(r)
	case constants.StatusCancelled:
		return state.Cancel(r)
	default:
		return errors.NewAppError(errors.ErrCodeInvalidStatus, "Estado no válido: "+target, nil)
	}
}
