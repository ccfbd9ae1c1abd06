package commands

import (
	"context"
	"time"

	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/services"
	"courierhub/internal/core/ports"
)

// CreateOrderCommandHandler prices and stores a new pending order together with its
// first history entry. OrderCreated is published after commit.
type CreateOrderCommandHandler struct {
	uowFactory    ports.UnitOfWorkFactory
	pricing       services.PricingCalculator
	defaultZoneID kernel.UUID
}

func NewCreateOrderCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	pricing services.PricingCalculator,
	defaultZoneID kernel.UUID,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:    uowFactory,
		pricing:       pricing,
		defaultZoneID: defaultZoneID,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	zoneID := h.defaultZoneID
	if cmd.ZoneID() != nil {
		zoneID = *cmd.ZoneID()
	}

	var created *order.Order
	err := inTransaction(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		z, err := uow.ZoneRepository().Get(ctx, zoneID)
		if err != nil {
			return err
		}
		tariff, err := z.ActiveTariff()
		if err != nil {
			return err
		}

		price, err := h.pricing.Quote(cmd.Pickup().Location, cmd.Dropoff().Location, cmd.Package().Size, tariff)
		if err != nil {
			return err
		}

		now := time.Now()
		o, change, err := order.NewOrder(kernel.NewUUID(), cmd.ClientID(), zoneID,
			cmd.Pickup(), cmd.Dropoff(), cmd.Package(), price, now)
		if err != nil {
			return err
		}

		client := kernel.Actor{ID: cmd.ClientID(), Role: kernel.RoleClient}
		entry, err := order.NewHistoryEntry(o.ID(), change, client, nil)
		if err != nil {
			return err
		}

		orders := uow.OrderRepository()
		if err = orders.Add(ctx, o); err != nil {
			return err
		}
		if err = orders.AddHistory(ctx, entry); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
