package portstest

import (
	"cmp"
	"context"
	"slices"
	"time"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/core/domain/model/zone"
	"courierhub/internal/core/ports"
	"courierhub/internal/pkg/errs"
)

type orderRepo struct{ u *UnitOfWork }

func (r orderRepo) Add(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	err := r.u.run("orders.Add", func(s *state) error {
		if _, ok := s.orders[o.ID()]; ok {
			return errs.NewConflictError("order " + o.ID().String() + " already exists")
		}
		s.orders[o.ID()] = o.Snapshot()
		return nil
	})
	if err == nil {
		r.u.track(ctx, o)
	}
	return err
}

func (r orderRepo) Update(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	err := r.u.run("orders.Update", func(s *state) error {
		if _, ok := s.orders[o.ID()]; !ok {
			return errs.NewObjectNotFoundError("order", o.ID())
		}
		s.orders[o.ID()] = o.Snapshot()
		return nil
	})
	if err == nil {
		r.u.track(ctx, o)
	}
	return err
}

func (r orderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get("orders.Get", id)
}

func (r orderRepo) GetForUpdate(_ context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get("orders.GetForUpdate", id)
}

func (r orderRepo) get(op string, id kernel.UUID) (*order.Order, error) {
	var o *order.Order
	err := r.u.run(op, func(s *state) error {
		snap, ok := s.orders[id]
		if !ok {
			return errs.NewObjectNotFoundError("order", id)
		}
		var err error
		o, err = order.RestoreOrder(snap)
		return err
	})
	return o, err
}

func (r orderRepo) AddHistory(_ context.Context, entry order.HistoryEntry) error {
	return r.u.run("orders.AddHistory", func(s *state) error {
		s.history = append(s.history, entry)
		return nil
	})
}

func (r orderRepo) History(_ context.Context, id kernel.UUID) ([]order.HistoryEntry, error) {
	result := make([]order.HistoryEntry, 0)
	err := r.u.run("orders.History", func(s *state) error {
		for _, e := range s.history {
			if e.OrderID.IsEqual(id) {
				result = append(result, e)
			}
		}
		return nil
	})
	slices.SortStableFunc(result, func(a, b order.HistoryEntry) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return result, err
}

func (r orderRepo) StalePendingIDs(_ context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	var stale []order.Snapshot
	err := r.u.run("orders.StalePendingIDs", func(s *state) error {
		for _, snap := range s.orders {
			if snap.Status == order.Pending && snap.CreatedAt.Before(cutoff) {
				stale = append(stale, snap)
			}
		}
		return nil
	})
	slices.SortFunc(stale, func(a, b order.Snapshot) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}

	ids := make([]kernel.UUID, 0, len(stale))
	for _, snap := range stale {
		ids = append(ids, snap.ID)
	}
	return ids, err
}

func (r orderRepo) PendingInBox(_ context.Context, box kernel.BoundingBox) ([]*order.Order, error) {
	result := make([]*order.Order, 0)
	err := r.u.run("orders.PendingInBox", func(s *state) error {
		for _, snap := range s.orders {
			if snap.Status != order.Pending || !box.Contains(snap.Pickup.Location) {
				continue
			}
			o, err := order.RestoreOrder(snap)
			if err != nil {
				return err
			}
			result = append(result, o)
		}
		return nil
	})
	return result, err
}

type courierRepo struct{ u *UnitOfWork }

func (r courierRepo) Save(_ context.Context, c *courier.Courier) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return r.u.run("couriers.Save", func(s *state) error {
		s.couriers[c.ID()] = courierSnapshot{
			id:        c.ID(),
			name:      c.Name(),
			vehicle:   c.Vehicle(),
			location:  c.Location(),
			available: c.IsAvailable(),
			updatedAt: c.LocationUpdatedAt(),
		}
		return nil
	})
}

func (r courierRepo) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	var c *courier.Courier
	err := r.u.run("couriers.Get", func(s *state) error {
		snap, ok := s.couriers[id]
		if !ok {
			return errs.NewObjectNotFoundError("courier", id)
		}
		var err error
		c, err = snap.restore()
		return err
	})
	return c, err
}

func (r courierRepo) AvailableCouriersNear(_ context.Context, box kernel.BoundingBox) ([]*courier.Courier, error) {
	result := make([]*courier.Courier, 0)
	err := r.u.run("couriers.AvailableCouriersNear", func(s *state) error {
		for _, snap := range s.couriers {
			if !snap.available || snap.location == nil || !box.Contains(*snap.location) {
				continue
			}
			c, err := snap.restore()
			if err != nil {
				return err
			}
			result = append(result, c)
		}
		return nil
	})
	return result, err
}

func (c courierSnapshot) restore() (*courier.Courier, error) {
	return courier.RestoreCourier(c.id, c.name, c.vehicle, c.location, c.available, c.updatedAt)
}

type zoneRepo struct{ u *UnitOfWork }

func (r zoneRepo) Get(_ context.Context, id kernel.UUID) (zone.Zone, error) {
	var z zone.Zone
	err := r.u.run("zones.Get", func(s *state) error {
		found, ok := s.zones[id]
		if !ok {
			return errs.NewObjectNotFoundError("zone", id)
		}
		z = found
		return nil
	})
	return z, err
}

func (r zoneRepo) Save(_ context.Context, z zone.Zone) error {
	return r.u.run("zones.Save", func(s *state) error {
		s.zones[z.ID] = z
		return nil
	})
}

type walletRepo struct{ u *UnitOfWork }

func (r walletRepo) GetForUpdate(_ context.Context, courierID kernel.UUID, now time.Time) (*wallet.Wallet, error) {
	var w *wallet.Wallet
	err := r.u.run("wallets.GetForUpdate", func(s *state) error {
		snap, ok := s.wallets[courierID]
		if !ok {
			created, err := wallet.NewWallet(courierID, now)
			if err != nil {
				return err
			}
			snap = created.Snapshot()
			s.wallets[courierID] = snap
		}
		var err error
		w, err = wallet.RestoreWallet(snap)
		return err
	})
	return w, err
}

func (r walletRepo) Get(_ context.Context, courierID kernel.UUID) (*wallet.Wallet, error) {
	var w *wallet.Wallet
	err := r.u.run("wallets.Get", func(s *state) error {
		snap, ok := s.wallets[courierID]
		if !ok {
			return errs.NewObjectNotFoundError("wallet", courierID)
		}
		var err error
		w, err = wallet.RestoreWallet(snap)
		return err
	})
	return w, err
}

func (r walletRepo) Update(_ context.Context, w *wallet.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return r.u.run("wallets.Update", func(s *state) error {
		if _, ok := s.wallets[w.CourierID()]; !ok {
			return errs.NewObjectNotFoundError("wallet", w.CourierID())
		}
		s.wallets[w.CourierID()] = w.Snapshot()
		return nil
	})
}

func (r walletRepo) HasCredit(_ context.Context, orderID kernel.UUID) (bool, error) {
	var found bool
	err := r.u.run("wallets.HasCredit", func(s *state) error {
		_, found = s.credits[orderID]
		return nil
	})
	return found, err
}

func (r walletRepo) AddCredit(_ context.Context, entry wallet.CreditEntry) error {
	return r.u.run("wallets.AddCredit", func(s *state) error {
		if _, ok := s.credits[entry.OrderID]; ok {
			return errs.NewConflictError("order " + entry.OrderID.String() + " already credited")
		}
		s.credits[entry.OrderID] = entry
		return nil
	})
}

func (r walletRepo) Credits(_ context.Context, courierID kernel.UUID, page ports.Page) ([]wallet.CreditEntry, error) {
	var result []wallet.CreditEntry
	err := r.u.run("wallets.Credits", func(s *state) error {
		for _, e := range s.credits {
			if e.CourierID.IsEqual(courierID) {
				result = append(result, e)
			}
		}
		return nil
	})
	slices.SortFunc(result, func(a, b wallet.CreditEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return paginate(result, page), err
}

type withdrawalRepo struct{ u *UnitOfWork }

func (r withdrawalRepo) Add(ctx context.Context, w *withdrawal.Withdrawal) error {
	if err := w.Validate(); err != nil {
		return err
	}
	err := r.u.run("withdrawals.Add", func(s *state) error {
		s.withdrawals[w.ID()] = w.Snapshot()
		return nil
	})
	if err == nil {
		r.u.track(ctx, w)
	}
	return err
}

func (r withdrawalRepo) Update(ctx context.Context, w *withdrawal.Withdrawal) error {
	if err := w.Validate(); err != nil {
		return err
	}
	err := r.u.run("withdrawals.Update", func(s *state) error {
		if _, ok := s.withdrawals[w.ID()]; !ok {
			return errs.NewObjectNotFoundError("withdrawal", w.ID())
		}
		s.withdrawals[w.ID()] = w.Snapshot()
		return nil
	})
	if err == nil {
		r.u.track(ctx, w)
	}
	return err
}

func (r withdrawalRepo) Get(_ context.Context, id kernel.UUID) (*withdrawal.Withdrawal, error) {
	return r.get("withdrawals.Get", id)
}

func (r withdrawalRepo) GetForUpdate(_ context.Context, id kernel.UUID) (*withdrawal.Withdrawal, error) {
	return r.get("withdrawals.GetForUpdate", id)
}

func (r withdrawalRepo) get(op string, id kernel.UUID) (*withdrawal.Withdrawal, error) {
	var w *withdrawal.Withdrawal
	err := r.u.run(op, func(s *state) error {
		snap, ok := s.withdrawals[id]
		if !ok {
			return errs.NewObjectNotFoundError("withdrawal", id)
		}
		var err error
		w, err = withdrawal.RestoreWithdrawal(snap)
		return err
	})
	return w, err
}

func (r withdrawalRepo) ListByCourier(_ context.Context, courierID kernel.UUID, page ports.Page) ([]*withdrawal.Withdrawal, error) {
	return r.list("withdrawals.ListByCourier", page, func(snap withdrawal.Snapshot) bool {
		return snap.CourierID.IsEqual(courierID)
	})
}

func (r withdrawalRepo) List(_ context.Context, status *withdrawal.Status, page ports.Page) ([]*withdrawal.Withdrawal, error) {
	return r.list("withdrawals.List", page, func(snap withdrawal.Snapshot) bool {
		return status == nil || snap.Status == *status
	})
}

func (r withdrawalRepo) list(op string, page ports.Page, keep func(withdrawal.Snapshot) bool) ([]*withdrawal.Withdrawal, error) {
	var snaps []withdrawal.Snapshot
	err := r.u.run(op, func(s *state) error {
		for _, snap := range s.withdrawals {
			if keep(snap) {
				snaps = append(snaps, snap)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(snaps, func(a, b withdrawal.Snapshot) int {
		return b.RequestedAt.Compare(a.RequestedAt)
	})

	result := make([]*withdrawal.Withdrawal, 0, len(snaps))
	for _, snap := range paginate(snaps, page) {
		w, err := withdrawal.RestoreWithdrawal(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, nil
}

type creditTaskRepo struct{ u *UnitOfWork }

func (r creditTaskRepo) Enqueue(_ context.Context, task *credittask.Task) (bool, error) {
	var stored bool
	err := r.u.run("tasks.Enqueue", func(s *state) error {
		for _, existing := range s.tasks {
			if existing.IdempotencyKey == task.IdempotencyKey {
				return nil
			}
		}
		s.tasks[task.ID] = detach(task)
		stored = true
		return nil
	})
	return stored, err
}

func (r creditTaskRepo) ClaimDue(_ context.Context, now time.Time, lease time.Duration, limit int) ([]*credittask.Task, error) {
	claimed := make([]*credittask.Task, 0)
	err := r.u.run("tasks.ClaimDue", func(s *state) error {
		due := make([]credittask.Task, 0)
		for _, t := range s.tasks {
			if (t.Status == credittask.Queued || t.Status == credittask.Running) && !t.NextRunAt.After(now) {
				due = append(due, t)
			}
		}
		slices.SortFunc(due, func(a, b credittask.Task) int {
			return cmp.Or(a.NextRunAt.Compare(b.NextRunAt), cmp.Compare(a.ID.String(), b.ID.String()))
		})
		if limit > 0 && len(due) > limit {
			due = due[:limit]
		}
		for _, t := range due {
			if err := t.Claim(now, lease); err != nil {
				return err
			}
			s.tasks[t.ID] = t
			claimed = append(claimed, &t)
		}
		return nil
	})
	return claimed, err
}

func (r creditTaskRepo) Get(_ context.Context, id kernel.UUID) (*credittask.Task, error) {
	return r.get("tasks.Get", id)
}

func (r creditTaskRepo) GetForUpdate(_ context.Context, id kernel.UUID) (*credittask.Task, error) {
	return r.get("tasks.GetForUpdate", id)
}

func (r creditTaskRepo) get(op string, id kernel.UUID) (*credittask.Task, error) {
	var task *credittask.Task
	err := r.u.run(op, func(s *state) error {
		t, ok := s.tasks[id]
		if !ok {
			return errs.NewObjectNotFoundError("credit task", id)
		}
		task = &t
		return nil
	})
	return task, err
}

func (r creditTaskRepo) Update(ctx context.Context, task *credittask.Task) error {
	err := r.u.run("tasks.Update", func(s *state) error {
		if _, ok := s.tasks[task.ID]; !ok {
			return errs.NewObjectNotFoundError("credit task", task.ID)
		}
		s.tasks[task.ID] = detach(task)
		return nil
	})
	if err == nil {
		r.u.track(ctx, task)
	}
	return err
}

func (r creditTaskRepo) UpdateLeased(ctx context.Context, task *credittask.Task, leasedUntil time.Time) (bool, error) {
	var stored bool
	err := r.u.run("tasks.UpdateLeased", func(s *state) error {
		current, ok := s.tasks[task.ID]
		if !ok || current.Status != credittask.Running || !current.NextRunAt.Equal(leasedUntil) {
			return nil
		}
		s.tasks[task.ID] = detach(task)
		stored = true
		return nil
	})
	if err == nil && stored {
		r.u.track(ctx, task)
	}
	return stored, err
}

func (r creditTaskRepo) ListFailed(_ context.Context, page ports.Page) ([]*credittask.Task, error) {
	var failed []credittask.Task
	err := r.u.run("tasks.ListFailed", func(s *state) error {
		for _, t := range s.tasks {
			if t.Status == credittask.Failed {
				failed = append(failed, t)
			}
		}
		return nil
	})
	slices.SortFunc(failed, func(a, b credittask.Task) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	result := make([]*credittask.Task, 0, len(failed))
	for _, t := range paginate(failed, page) {
		result = append(result, &t)
	}
	return result, err
}

// detach copies the task without its pending events.
func detach(task *credittask.Task) credittask.Task {
	stored := *task
	stored.ClearDomainEvents()
	return stored
}
