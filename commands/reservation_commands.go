package commands

import (
	"context"

	"reservas/models"
)

// Writer is the part of the reservation store commands write through
type Writer interface {
	Create(ctx context.Context, r *models.Reservation) error
	Save(ctx context.Context, r *models.Reservation) error
	Delete(ctx context.Context, id uint) error
	DeleteLinkedRooms(ctx context.Context, eventID uint) (int64, error)
	ClearLinks(ctx context.Context, eventID uint) (int64, error)
}

// ReservationCommand is one write executed inside a unit of work
type ReservationCommand interface {
	Execute(ctx context.Context) error
}

// CreateReservationCommand inserts a reservation
type CreateReservationCommand struct {
	reservation *models.Reservation
	store       Writer
}

func NewCreateReservationCommand(r *models.Reservation, store Writer) *CreateReservationCommand {
	return &CreateReservationCommand{
		reservation: r,
		store:       store,
	}
}

func (c *CreateReservationCommand) Execute(ctx context.Context) error {
	return c.store.Create(ctx, c.reservation)
}

// UpdateReservationCommand saves every field of a reservation
type UpdateReservationCommand struct {
	reservation *models.Reservation
	store       Writer
}

func NewUpdateReservationCommand(r *models.Reservation, store Writer) *UpdateReservationCommand {
	return &UpdateReservationCommand{
		reservation: r,
		store:       store,
	}
}

func (c *UpdateReservationCommand) Execute(ctx context.Context) error {
	return c.store.Save(ctx, c.reservation)
}

// DeleteReservationCommand removes a reservation. For events, cascade decides
// whether linked rooms are deleted too or only detached.
type DeleteReservationCommand struct {
	reservationID uint
	event         bool
	cascade       bool
	store         Writer
}

func NewDeleteReservationCommand(id uint, event, cascade bool, store Writer) *DeleteReservationCommand {
	return &DeleteReservationCommand{
		reservationID: id,
		event:         event,
		cascade:       cascade,
		store:         store,
	}
}

func (c *DeleteReservationCommand) Execute(ctx context.Context) error {
	if c.event {
		var err error
		if c.cascade {
			_, err = c.store.DeleteLinkedRooms(ctx, c.reservationID)
		} else {
			_, err = c.store.ClearLinks(ctx, c.reservationID)
		}
		if err != nil {
			return err
		}
	}
	return c.store.Delete(ctx, c.reservationID)
}

// Run executes cmds in order and stops at the first failure. Callers run it
// inside a transaction so a failure leaves nothing behind.
func Run(ctx context.Context, cmds ...ReservationCommand) error {
	for _, cmd := range cmds {
		if err := cmd.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}
