package model

import (
	"strings"
	"time"
)

// ExpiresNever is the remote service's sentinel for a code whose session has
// no end time: in use, open-ended, no countdown.
const ExpiresNever = "never"

// RemoteCodeStatus is one entry of the remote meeting service's live listing.
// It is ephemeral: fetched per query, never persisted. The remote service is
// authoritative for liveness; the local store is authoritative for ownership.
type RemoteCodeStatus struct {
	Code           string `json:"code"`
	InUse          int    `json:"in_use"`
	BoundRoom      string `json:"bound_room"`
	ExpiresAt      string `json:"expires_at"`
	ExpiresMinutes int    `json:"expires_minutes"`
}

// Live reports whether the remote service considers the code consumed by a
// running meeting.
func (s *RemoteCodeStatus) Live() bool {
	return s != nil && s.InUse == 1
}

// OpenEnded reports whether the session never expires on its own.
func (s *RemoteCodeStatus) OpenEnded() bool {
	if s == nil {
		return false
	}
	ea := strings.TrimSpace(s.ExpiresAt)
	return ea == "" || strings.EqualFold(ea, ExpiresNever)
}

// ExpiryTime parses the remote expiry timestamp. The remote emits RFC 3339
// with either a Z or a numeric offset. Returns false for the open-ended
// sentinel or an unparseable value.
func (s *RemoteCodeStatus) ExpiryTime() (time.Time, bool) {
	if s == nil || s.OpenEnded() {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(s.ExpiresAt)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RemoteCodeList is the remote list endpoint's response envelope.
type RemoteCodeList struct {
	Codes []RemoteCodeStatus `json:"codes"`
}
