package repository

import (
	"context"

	"github.com/cloudmeet/agent-bot-go/internal/database"
	"github.com/cloudmeet/agent-bot-go/internal/model"
)

// CodeRepository handles authorization-code inventory data operations.
//
// Every state transition is a single conditional statement whose WHERE clause
// re-checks the status column, so two concurrent claimants can never both win
// the same row: one observes status='available' and flips it, the other sees
// zero rows affected.
type CodeRepository interface {
	Add(ctx context.Context, code, note string) (bool, error)
	FindByCode(ctx context.Context, code string) (*model.AuthCode, error)
	FindByHolder(ctx context.Context, holderID int64) ([]model.AuthCode, error)
	ListAssigned(ctx context.Context) ([]model.AuthCode, error)
	List(ctx context.Context, limit int) ([]model.AuthCode, error)
	Stats(ctx context.Context) (*model.StockStats, error)
	Delete(ctx context.Context, code string) (bool, error)
	ClaimNext(ctx context.Context, holderID int64) (*model.AuthCode, error)
	ClaimSpecific(ctx context.Context, holderID int64, code string) (bool, error)
	Release(ctx context.Context, code string) (bool, error)
	ReleaseOwned(ctx context.Context, code string, holderID int64) (bool, error)
	BulkTake(ctx context.Context, n int) ([]model.AuthCode, error)
}

type codeRepo struct {
	db database.DBTX
}

// NewCodeRepository creates a new code inventory repository.
func NewCodeRepository(db database.DBTX) CodeRepository {
	return &codeRepo{db: db}
}

// Add inserts a normalized code. Returns false without error when the code is
// already in the inventory.
func (r *codeRepo) Add(ctx context.Context, code, note string) (bool, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_codes (code, note)
		VALUES ($1, $2)
	`, model.NormalizeCode(code), note)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *codeRepo) FindByCode(ctx context.Context, code string) (*model.AuthCode, error) {
	var row model.AuthCode
	err := r.db.GetContext(ctx, &row, `
		SELECT * FROM auth_codes WHERE code = $1
	`, model.NormalizeCode(code))
	return HandleNotFound(&row, err)
}

// FindByHolder returns the codes currently assigned to a tracked user,
// newest grant first.
func (r *codeRepo) FindByHolder(ctx context.Context, holderID int64) ([]model.AuthCode, error) {
	var rows []model.AuthCode
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM auth_codes
		WHERE status = 'assigned' AND holder_kind = 'user' AND assigned_to = $1
		ORDER BY assigned_at DESC
	`, holderID)
	return rows, err
}

// ListAssigned returns every assigned code, for the root-scope overview.
func (r *codeRepo) ListAssigned(ctx context.Context) ([]model.AuthCode, error) {
	var rows []model.AuthCode
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM auth_codes
		WHERE status = 'assigned'
		ORDER BY assigned_at DESC NULLS LAST, id
	`)
	return rows, err
}

func (r *codeRepo) List(ctx context.Context, limit int) ([]model.AuthCode, error) {
	var rows []model.AuthCode
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM auth_codes ORDER BY id DESC LIMIT $1
	`, limit)
	return rows, err
}

func (r *codeRepo) Stats(ctx context.Context) (*model.StockStats, error) {
	var stats model.StockStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'available') AS available,
			COUNT(*) FILTER (WHERE status = 'assigned') AS assigned
		FROM auth_codes
	`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Delete removes a code only while it is still available. An assigned code is
// immutable to deletion: its row is the audit trail of who holds the grant.
func (r *codeRepo) Delete(ctx context.Context, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM auth_codes WHERE code = $1 AND status = 'available'
	`, model.NormalizeCode(code))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ClaimNext atomically flips the oldest available code to assigned and stamps
// the holder. The row is picked and re-checked inside one UPDATE; SKIP LOCKED
// makes concurrent claimants fall through to distinct rows instead of
// queueing on the same one. Returns nil when the pool is empty.
func (r *codeRepo) ClaimNext(ctx context.Context, holderID int64) (*model.AuthCode, error) {
	var row model.AuthCode
	err := r.db.GetContext(ctx, &row, `
		UPDATE auth_codes
		SET status = 'assigned', holder_kind = 'user', assigned_to = $1, assigned_at = NOW()
		WHERE id = (
			SELECT id FROM auth_codes
			WHERE status = 'available'
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND status = 'available'
		RETURNING *
	`, holderID)
	return HandleNotFound(&row, err)
}

// ClaimSpecific assigns a named code only if it is still available.
func (r *codeRepo) ClaimSpecific(ctx context.Context, holderID int64, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE auth_codes
		SET status = 'assigned', holder_kind = 'user', assigned_to = $1, assigned_at = NOW()
		WHERE code = $2 AND status = 'available'
	`, holderID, model.NormalizeCode(code))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Release reverts any assigned code to available. Root-scope path; ownership
// is not checked here.
func (r *codeRepo) Release(ctx context.Context, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE auth_codes
		SET status = 'available', holder_kind = NULL, assigned_to = NULL, assigned_at = NULL
		WHERE code = $1 AND status = 'assigned'
	`, model.NormalizeCode(code))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ReleaseOwned reverts a code only when it is held by the requesting user.
func (r *codeRepo) ReleaseOwned(ctx context.Context, code string, holderID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE auth_codes
		SET status = 'available', holder_kind = NULL, assigned_to = NULL, assigned_at = NULL
		WHERE code = $1 AND status = 'assigned'
			AND holder_kind = 'user' AND assigned_to = $2
	`, model.NormalizeCode(code), holderID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// BulkTake marks up to n of the oldest available codes as bulk-issued in one
// statement, so a failure midway leaves no rows half-updated. Bulk-issued
// codes carry no tracked holder.
func (r *codeRepo) BulkTake(ctx context.Context, n int) ([]model.AuthCode, error) {
	var rows []model.AuthCode
	err := r.db.SelectContext(ctx, &rows, `
		UPDATE auth_codes
		SET status = 'assigned', holder_kind = 'bulk', assigned_to = NULL, assigned_at = NOW()
		WHERE id IN (
			SELECT id FROM auth_codes
			WHERE status = 'available'
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		) AND status = 'available'
		RETURNING *
	`, n)
	return rows, err
}
