package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"salespulse/internal/core"
)

// SaleRecordedMessage announces a new sale together with the month status
// right after it, so consumers need no access to the session store.
type SaleRecordedMessage struct {
	SaleID            string    `json:"sale_id"`
	AmountCents       int64     `json:"amount_cents"`
	Representative    string    `json:"representative"`
	Product           string    `json:"product"`
	TotalRevenueCents int64     `json:"total_revenue_cents"`
	TargetCents       int64     `json:"target_cents"`
	PercentToGoal     float64   `json:"percent_to_goal"`
	DealsClosed       int       `json:"deals_closed"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewSaleRecordedMessage builds the event for a stored sale.
func NewSaleRecordedMessage(s core.Sale, target core.SalesTarget, k core.KPI) *SaleRecordedMessage {
	return &SaleRecordedMessage{
		SaleID:            s.ID,
		AmountCents:       s.Amount.Cents,
		Representative:    s.Representative,
		Product:           s.Product,
		TotalRevenueCents: k.TotalRevenue.Cents,
		TargetCents:       target.Amount.Cents,
		PercentToGoal:     k.PercentToGoal,
		DealsClosed:       k.DealsClosed,
		Timestamp:         time.Now(),
	}
}

// KPI returns the month status carried by the message.
func (m *SaleRecordedMessage) KPI() core.KPI {
	return core.KPI{
		TotalRevenue:  core.Money{Cents: m.TotalRevenueCents},
		DealsClosed:   m.DealsClosed,
		PercentToGoal: m.PercentToGoal,
	}
}

// ToJSON converts the message to JSON bytes
func (m *SaleRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SaleRecordedMessageFromJSON decodes and sanity-checks a message.
func SaleRecordedMessageFromJSON(data []byte) (*SaleRecordedMessage, error) {
	var msg SaleRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.SaleID == "" {
		return nil, errors.New("missing sale_id")
	}
	return &msg, nil
}
