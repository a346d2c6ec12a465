package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Order State
// ============================================================================

// OrderState represents the lifecycle state of an order.
// Exactly one state is active per order at any time; transitions are the
// sole legal mutator.
type OrderState string

const (
	OrderStatePending   OrderState = "PENDING"
	OrderStatePreflight OrderState = "PREFLIGHT"
	OrderStateWriting   OrderState = "WRITING"
	OrderStateQC        OrderState = "QC"
	OrderStateApproved  OrderState = "APPROVED"
	OrderStateDelivered OrderState = "DELIVERED"
	OrderStateFailed    OrderState = "FAILED"
	OrderStateCancelled OrderState = "CANCELLED"
)

// ValidOrderStates contains all valid order state values.
var ValidOrderStates = []OrderState{
	OrderStatePending,
	OrderStatePreflight,
	OrderStateWriting,
	OrderStateQC,
	OrderStateApproved,
	OrderStateDelivered,
	OrderStateFailed,
	OrderStateCancelled,
}

// legalTransitions is the full transition table. Anything absent here is
// rejected with ErrIllegalTransition; the machine never coerces state.
// FAILED only re-enters the pipeline through PENDING (explicit retry).
var legalTransitions = map[OrderState][]OrderState{
	OrderStatePending:   {OrderStatePreflight, OrderStateCancelled},
	OrderStatePreflight: {OrderStateWriting, OrderStateFailed},
	OrderStateWriting:   {OrderStateQC, OrderStateFailed},
	OrderStateQC:        {OrderStateApproved, OrderStateWriting, OrderStateFailed},
	OrderStateApproved:  {OrderStateDelivered, OrderStateFailed},
	OrderStateDelivered: {},
	OrderStateCancelled: {},
	OrderStateFailed:    {OrderStatePending},
}

// CanTransition reports whether from -> to is a legal order transition.
func CanTransition(from, to OrderState) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions other
// than explicit retry. DELIVERED and CANCELLED end the order for good.
func (s OrderState) IsTerminal() bool {
	return s == OrderStateDelivered || s == OrderStateCancelled
}

// IsValidOrderState checks if the given state is valid.
func IsValidOrderState(s OrderState) bool {
	for _, v := range ValidOrderStates {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Order
// ============================================================================

// OrderConstraints carries the customer-declared constraints on the article.
type OrderConstraints struct {
	WordCount  int      `json:"word_count"`
	Tone       string   `json:"tone"`
	Compliance []string `json:"compliance,omitempty"` // regulated-industry tags, e.g. "gambling"
}

// Order is a request to place one contextual backlink with a given anchor
// text inside an article published on PublicationDomain. Immutable once
// accepted; created externally and consumed by the preflight builder.
type Order struct {
	ID                uuid.UUID        `json:"id"`
	OrderRef          string           `json:"order_ref"`
	CustomerID        string           `json:"customer_id"`
	PublicationDomain string           `json:"publication_domain"`
	TargetURL         string           `json:"target_url"`
	AnchorText        string           `json:"anchor_text"`
	Topic             string           `json:"topic"`
	Locale            string           `json:"locale,omitempty"`
	Constraints       OrderConstraints `json:"constraints"`
	State             OrderState       `json:"state"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TargetWordCount returns the constraint word count, defaulting to 800
// when the order does not declare one.
func (o *Order) TargetWordCount() int {
	if o.Constraints.WordCount > 0 {
		return o.Constraints.WordCount
	}
	return 800
}
