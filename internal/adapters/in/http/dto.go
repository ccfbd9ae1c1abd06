package http

import (
	"time"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/core/domain/services"
	"courierhub/internal/core/ports"
)

// Requests

type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type Stop struct {
	Lat          float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon          float64 `json:"lon" validate:"gte=-180,lte=180"`
	Address      string  `json:"address" validate:"required,max=500"`
	ContactName  string  `json:"contact_name,omitempty" validate:"max=200"`
	ContactPhone string  `json:"contact_phone,omitempty" validate:"max=50"`
}

type Package struct {
	Description string  `json:"description,omitempty" validate:"max=1000"`
	Size        string  `json:"size,omitempty" validate:"omitempty,oneof=small medium large"`
	WeightKg    float64 `json:"weight_kg,omitempty" validate:"gte=0"`
}

type CreateOrderRequest struct {
	Pickup  Stop    `json:"pickup"`
	Dropoff Stop    `json:"dropoff"`
	Package Package `json:"package"`
	ZoneID  *string `json:"zone_id,omitempty" validate:"omitempty,uuid"`
}

type ChangeStatusRequest struct {
	Status string    `json:"status" validate:"required,oneof=assigned picked_up delivered cancelled"`
	Geo    *Location `json:"geo,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type UpdateLocationRequest struct {
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon       float64 `json:"lon" validate:"gte=-180,lte=180"`
	Available bool    `json:"available"`
	Name      string  `json:"name,omitempty" validate:"max=200"`
	Vehicle   string  `json:"vehicle,omitempty" validate:"omitempty,oneof=on_foot bicycle scooter car"`
}

type WithdrawRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=bank_transfer card mobile_money"`
	Destination string `json:"destination" validate:"required,max=200"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CompleteRequest struct {
	ProviderReference string `json:"provider_reference" validate:"required,max=200"`
}

func toKernelLocation(l Location) (kernel.Location, error) {
	return kernel.NewLocation(l.Lat, l.Lon)
}

func (s Stop) toDomain() (order.Stop, error) {
	loc, err := kernel.NewLocation(s.Lat, s.Lon)
	if err != nil {
		return order.Stop{}, err
	}
	return order.NewStop(loc, s.Address, s.ContactName, s.ContactPhone)
}

func toPage(p PageParams) ports.Page {
	var page ports.Page
	if p.Limit != nil {
		page.Limit = *p.Limit
	}
	if p.Offset != nil {
		page.Offset = *p.Offset
	}
	return page.Normalize()
}

// Responses

type Price struct {
	DistanceKm      float64 `json:"distance_km"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	BasePrice       int64   `json:"base_price"`
	DistancePrice   int64   `json:"distance_price"`
	SizeSupplement  int64   `json:"size_supplement"`
	TotalPrice      int64   `json:"total_price"`
	PlatformFee     int64   `json:"platform_fee"`
	CourierEarnings int64   `json:"courier_earnings"`
}

type Order struct {
	ID                 string     `json:"id"`
	ClientID           string     `json:"client_id"`
	CourierID          *string    `json:"courier_id"`
	ZoneID             string     `json:"zone_id"`
	Status             string     `json:"status"`
	Pickup             Stop       `json:"pickup"`
	Dropoff            Stop       `json:"dropoff"`
	Package            Package    `json:"package"`
	Price              Price      `json:"price"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	AssignedAt         *time.Time `json:"assigned_at"`
	PickedUpAt         *time.Time `json:"picked_up_at"`
	DeliveredAt        *time.Time `json:"delivered_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
}

type HistoryEntry struct {
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Geo        *Location `json:"geo,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type OrderDetails struct {
	Order   Order          `json:"order"`
	History []HistoryEntry `json:"history"`
}

type OrderMatch struct {
	Order      Order   `json:"order"`
	DistanceKm float64 `json:"distance_km"`
}

type Courier struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Vehicle           string     `json:"vehicle"`
	Available         bool       `json:"available"`
	Location          *Location  `json:"location,omitempty"`
	LocationUpdatedAt *time.Time `json:"location_updated_at"`
}

type CourierMatch struct {
	Courier    Courier `json:"courier"`
	DistanceKm float64 `json:"distance_km"`
}

type Credit struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type Wallet struct {
	CourierID      string    `json:"courier_id"`
	Balance        int64     `json:"balance"`
	PendingBalance int64     `json:"pending_balance"`
	TotalEarned    int64     `json:"total_earned"`
	TotalWithdrawn int64     `json:"total_withdrawn"`
	UpdatedAt      time.Time `json:"updated_at"`
	Credits        []Credit  `json:"credits"`
}

type Withdrawal struct {
	ID                   string     `json:"id"`
	CourierID            string     `json:"courier_id"`
	Amount               int64      `json:"amount"`
	Method               string     `json:"method"`
	Destination          string     `json:"destination"`
	Status               string     `json:"status"`
	ApproverID           *string    `json:"approver_id"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	TransactionReference string     `json:"transaction_reference,omitempty"`
	RequestedAt          time.Time  `json:"requested_at"`
	ApprovedAt           *time.Time `json:"approved_at"`
	RejectedAt           *time.Time `json:"rejected_at"`
	CompletedAt          *time.Time `json:"completed_at"`
}

type CreditTask struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	NextRunAt time.Time `json:"next_run_at"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func optionalID(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func optionalLocation(l *kernel.Location) *Location {
	if l == nil {
		return nil
	}
	return &Location{Lat: l.Lat(), Lon: l.Lon()}
}

func stopFromDomain(s order.Stop) Stop {
	return Stop{
		Lat:          s.Location.Lat(),
		Lon:          s.Location.Lon(),
		Address:      s.Address,
		ContactName:  s.ContactName,
		ContactPhone: s.ContactPhone,
	}
}

func orderFromDomain(o *order.Order) Order {
	p := o.Price()
	pkg := o.Package()
	return Order{
		ID:        o.ID().String(),
		ClientID:  o.ClientID().String(),
		CourierID: optionalID(o.CourierID()),
		ZoneID:    o.ZoneID().String(),
		Status:    string(o.Status()),
		Pickup:    stopFromDomain(o.Pickup()),
		Dropoff:   stopFromDomain(o.Dropoff()),
		Package: Package{
			Description: pkg.Description,
			Size:        string(pkg.Size),
			WeightKg:    pkg.WeightKg,
		},
		Price: Price{
			DistanceKm:      p.DisplayDistanceKm(),
			SurgeMultiplier: p.SurgeMultiplier,
			BasePrice:       p.BasePrice.Int64(),
			DistancePrice:   p.DistancePrice.Int64(),
			SizeSupplement:  p.SizeSupplement.Int64(),
			TotalPrice:      p.TotalPrice.Int64(),
			PlatformFee:     p.PlatformFee.Int64(),
			CourierEarnings: p.CourierEarnings.Int64(),
		},
		CancellationReason: o.CancellationReason(),
		CreatedAt:          o.CreatedAt(),
		AssignedAt:         o.AssignedAt(),
		PickedUpAt:         o.PickedUpAt(),
		DeliveredAt:        o.DeliveredAt(),
		CancelledAt:        o.CancelledAt(),
	}
}

func historyFromDomain(entries []order.HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{
			From:       string(e.From),
			To:         string(e.To),
			ActorID:    e.Actor.ID.String(),
			ActorRole:  string(e.Actor.Role),
			Geo:        optionalLocation(e.GeoStamp),
			OccurredAt: e.OccurredAt,
		})
	}
	return out
}

func orderMatchesFromDomain(matches []services.OrderMatch) []OrderMatch {
	out := make([]OrderMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, OrderMatch{Order: orderFromDomain(m.Candidate), DistanceKm: kernel.RoundKm(m.DistanceKm)})
	}
	return out
}

func courierFromDomain(c *courier.Courier) Courier {
	return Courier{
		ID:                c.ID().String(),
		Name:              c.Name(),
		Vehicle:           string(c.Vehicle()),
		Available:         c.IsAvailable(),
		Location:          optionalLocation(c.Location()),
		LocationUpdatedAt: c.LocationUpdatedAt(),
	}
}

func courierMatchesFromDomain(matches []services.CourierMatch) []CourierMatch {
	out := make([]CourierMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, CourierMatch{Courier: courierFromDomain(m.Candidate), DistanceKm: kernel.RoundKm(m.DistanceKm)})
	}
	return out
}

func walletFromDomain(w wallet.Snapshot, credits []wallet.CreditEntry) Wallet {
	out := Wallet{
		CourierID:      w.CourierID.String(),
		Balance:        w.Balance.Int64(),
		PendingBalance: w.PendingBalance.Int64(),
		TotalEarned:    w.TotalEarned.Int64(),
		TotalWithdrawn: w.TotalWithdrawn.Int64(),
		UpdatedAt:      w.UpdatedAt,
		Credits:        make([]Credit, 0, len(credits)),
	}
	for _, c := range credits {
		out.Credits = append(out.Credits, Credit{
			ID:        c.ID.String(),
			OrderID:   c.OrderID.String(),
			Amount:    c.Amount.Int64(),
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func withdrawalFromDomain(w *withdrawal.Withdrawal) Withdrawal {
	return Withdrawal{
		ID:                   w.ID().String(),
		CourierID:            w.CourierID().String(),
		Amount:               w.Amount().Int64(),
		Method:               string(w.Method()),
		Destination:          w.Destination(),
		Status:               string(w.Status()),
		ApproverID:           optionalID(w.ApproverID()),
		RejectionReason:      w.RejectionReason(),
		TransactionReference: w.TransactionReference(),
		RequestedAt:          w.RequestedAt(),
		ApprovedAt:           w.ApprovedAt(),
		RejectedAt:           w.RejectedAt(),
		CompletedAt:          w.CompletedAt(),
	}
}

func withdrawalsFromDomain(ws []*withdrawal.Withdrawal) []Withdrawal {
	out := make([]Withdrawal, 0, len(ws))
	for _, w := range ws {
		out = append(out, withdrawalFromDomain(w))
	}
	return out
}

func creditTaskFromDomain(t *credittask.Task) CreditTask {
	return CreditTask{
		ID:        t.ID.String(),
		OrderID:   t.OrderID.String(),
		Status:    string(t.Status),
		Attempts:  t.Attempts,
		NextRunAt: t.NextRunAt,
		LastError: t.LastError,
		UpdatedAt: t.UpdatedAt,
	}
}
