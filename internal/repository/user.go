package repository

import (
	"context"
	"time"

	"github.com/cloudmeet/agent-bot-go/internal/database"
	"github.com/cloudmeet/agent-bot-go/internal/model"
)

// UserRepository handles chat identity and role data operations. Rows are
// created on first interaction and never deleted; role changes only flip the
// role column.
type UserRepository interface {
	Track(ctx context.Context, params model.TrackUserParams) error
	Find(ctx context.Context, telegramID int64) (*model.User, error)
	CountAdmins(ctx context.Context) (int, error)
	SetAdmin(ctx context.Context, params model.TrackUserParams) error
	ClearAdmin(ctx context.Context, telegramID int64) (bool, error)
	ListAdmins(ctx context.Context) ([]model.User, error)
	ListUsers(ctx context.Context, limit int) ([]model.User, error)
}

type userRepo struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository. Pass a *sqlx.Tx to run the
// role mutations inside a bind transaction.
func NewUserRepository(db database.DBTX) UserRepository {
	return &userRepo{db: db}
}

// Track upserts an interaction record. first_seen and role are preserved on
// conflict; only the display fields refresh.
func (r *userRepo) Track(ctx context.Context, params model.TrackUserParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, username, first_name, first_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name
	`, params.TelegramID, params.Username, params.FirstName, time.Now())
	return err
}

func (r *userRepo) Find(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE telegram_id = $1
	`, telegramID)
	return HandleNotFound(&user, err)
}

func (r *userRepo) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM users WHERE role = 'admin'
	`)
	return count, err
}

// SetAdmin upserts the row with role='admin'. Display fields are kept when
// the caller passes them empty.
func (r *userRepo) SetAdmin(ctx context.Context, params model.TrackUserParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, username, first_name, first_seen, role)
		VALUES ($1, $2, $3, $4, 'admin')
		ON CONFLICT (telegram_id) DO UPDATE SET
			role = 'admin',
			username = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name)
	`, params.TelegramID, params.Username, params.FirstName, time.Now())
	return err
}

// ClearAdmin drops the admin role. The conditional WHERE keeps this the only
// unbind path: a root row never matches.
func (r *userRepo) ClearAdmin(ctx context.Context, telegramID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET role = NULL WHERE telegram_id = $1 AND role = 'admin'
	`, telegramID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *userRepo) ListAdmins(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users WHERE role = 'admin' ORDER BY first_seen
	`)
	return users, err
}

func (r *userRepo) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users ORDER BY first_seen DESC LIMIT $1
	`, limit)
	return users, err
}
