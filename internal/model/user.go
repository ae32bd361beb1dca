package model

import "time"

// Role is the access level of a chat user. The root identity is fixed by
// configuration; at most two admins may be bound at any time.
type Role string

const (
	RoleRoot  Role = "root"
	RoleAdmin Role = "admin"
	RoleNone  Role = ""
)

// Authorized reports whether the role may use the code-distribution surface.
func (r Role) Authorized() bool {
	return r == RoleRoot || r == RoleAdmin
}

// User is one known chat identity. Rows are created on first interaction and
// never deleted; unbinding only clears the role.
type User struct {
	TelegramID int64     `db:"telegram_id" json:"telegramId"`
	Username   string    `db:"username" json:"username,omitempty"`
	FirstName  string    `db:"first_name" json:"firstName,omitempty"`
	FirstSeen  time.Time `db:"first_seen" json:"firstSeen"`
	Role       *Role     `db:"role" json:"role,omitempty"`
}

// RoleOrNone returns the stored role, mapping a NULL column to RoleNone.
func (u *User) RoleOrNone() Role {
	if u == nil || u.Role == nil {
		return RoleNone
	}
	return *u.Role
}

// TrackUserParams contains upsert parameters for recording an interaction.
type TrackUserParams struct {
	TelegramID int64
	Username   string
	FirstName  string
}

// BindResult is the outcome of an attempt to bind an admin.
type BindResult string

const (
	BindOK      BindResult = "ok"
	BindMax     BindResult = "max"
	BindAlready BindResult = "already"
	BindIsRoot  BindResult = "is_root"
)
