// Package alert holds the duplicate-delivery alert entity and its review
// lifecycle rules.
package alert

import (
	"time"

	id "aidtrack/pkg/domain"
)

// Status is the review lifecycle state of an alert. The order is strictly
// forward: pending → reviewed → resolved, with pending → resolved allowed as
// a shortcut. Resolved is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
)

// rank orders statuses for the forward-only invariant.
var rank = map[Status]int{
	StatusPending:  0,
	StatusReviewed: 1,
	StatusResolved: 2,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is a legal forward
// step. Self-transitions are rejected; resolved accepts nothing.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	return rank[target] > rank[s]
}

// Alert records one suspected repeat handout. Created by the detector in
// state pending; mutated only by lifecycle transitions; hard-deleted only by
// an administrator.
type Alert struct {
	ID            id.AlertID       `json:"id"`
	BeneficiaryID id.BeneficiaryID `json:"beneficiary_id"`
	AidTypeID     id.AidTypeID     `json:"aid_type_id"`
	DeliveryID    id.DeliveryID    `json:"delivery_id"` // the delivery that triggered the alert
	TriggeredAt   time.Time        `json:"triggered_at"`
	DaysSinceLast int              `json:"days_since_last"`
	Status        Status           `json:"status"`
	ReviewedBy    *id.UserID       `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Snapshot is the shape serialized into audit records. A distinct type keeps
// the audit payload stable even if the API representation evolves.
type Snapshot struct {
	Status     Status     `json:"status"`
	ReviewedBy *id.UserID `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Snapshot captures the lifecycle-relevant fields of the alert.
func (a *Alert) Snapshot() Snapshot {
	return Snapshot{
		Status:     a.Status,
		ReviewedBy: a.ReviewedBy,
		ReviewedAt: a.ReviewedAt,
		Reason:     a.Reason,
		Notes:      a.Notes,
	}
}
