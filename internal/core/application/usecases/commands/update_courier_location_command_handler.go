package commands

import (
	"context"
	"errors"
	"time"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"
)

type UpdateCourierLocationCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewUpdateCourierLocationCommandHandler(uowFactory ports.UnitOfWorkFactory) UpdateCourierLocationCommandHandler {
	return UpdateCourierLocationCommandHandler{uowFactory: uowFactory}
}

// Handle stores the reported position. An unknown courier is registered on the fly,
// which requires the name and vehicle to be present in the command.
func (h UpdateCourierLocationCommandHandler) Handle(ctx context.Context, cmd UpdateCourierLocationCommand) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var updated *courier.Courier
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		couriers := uow.CourierRepository()
		c, err := couriers.Get(ctx, cmd.CourierID())
		if errors.Is(err, errs.ErrObjectNotFound) {
			c, err = courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Vehicle())
		}
		if err != nil {
			return err
		}

		if err = c.ReportLocation(cmd.Location(), cmd.Available(), time.Now()); err != nil {
			return err
		}
		if err = couriers.Save(ctx, c); err != nil {
			return err
		}

		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
