package model

import (
	"strings"
	"time"
)

// CodeStatus is the local lifecycle state of an authorization code.
type CodeStatus string

const (
	CodeStatusAvailable CodeStatus = "available"
	CodeStatusAssigned  CodeStatus = "assigned"
)

// HolderKind distinguishes who an assigned code is bound to. A code held by
// a tracked chat user carries the user's id in AssignedTo; a bulk-issued code
// was handed off administratively and is not tied to any tracked identity.
type HolderKind string

const (
	HolderKindUser HolderKind = "user"
	HolderKindBulk HolderKind = "bulk"
)

// AuthCode is one row of the local authorization-code inventory. Codes are
// opaque tokens handed down by the master bot; this service never mints them.
type AuthCode struct {
	ID         int64       `db:"id" json:"id"`
	Code       string      `db:"code" json:"code"`
	Status     CodeStatus  `db:"status" json:"status"`
	HolderKind *HolderKind `db:"holder_kind" json:"holderKind,omitempty"`
	AssignedTo *int64      `db:"assigned_to" json:"assignedTo,omitempty"`
	AssignedAt *time.Time  `db:"assigned_at" json:"assignedAt,omitempty"`
	Note       string      `db:"note" json:"note,omitempty"`
	AddedAt    time.Time   `db:"added_at" json:"addedAt"`
}

// IsAssigned reports whether the code is currently handed out.
func (c *AuthCode) IsAssigned() bool {
	return c.Status == CodeStatusAssigned
}

// HeldBy reports whether the code is assigned to the given tracked user.
func (c *AuthCode) HeldBy(userID int64) bool {
	return c.Status == CodeStatusAssigned &&
		c.HolderKind != nil && *c.HolderKind == HolderKindUser &&
		c.AssignedTo != nil && *c.AssignedTo == userID
}

// StockStats are inventory counters for the admin panel and ops API.
type StockStats struct {
	Total     int `db:"total" json:"total"`
	Available int `db:"available" json:"available"`
	Assigned  int `db:"assigned" json:"assigned"`
}

// NormalizeCode canonicalizes an inbound code token: trimmed, uppercase.
// All store lookups and inserts go through this form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
