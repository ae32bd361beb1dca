package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/audit"
	"github.com/cloudmeet/agent-bot-go/internal/config"
	"github.com/cloudmeet/agent-bot-go/internal/database"
	apperrors "github.com/cloudmeet/agent-bot-go/internal/errors"
	"github.com/cloudmeet/agent-bot-go/internal/model"
	"github.com/cloudmeet/agent-bot-go/internal/repository"
)

// RoleService manages the identity/role table: one fixed root plus at most
// two bound admins. Binding is the only write path that can set role=admin;
// the cap is checked at bind time inside a transaction.
type RoleService struct {
	db       *database.DB
	userRepo repository.UserRepository
	rootID   int64
}

func NewRoleService(db *database.DB, userRepo repository.UserRepository, rootID int64) *RoleService {
	return &RoleService{
		db:       db,
		userRepo: userRepo,
		rootID:   rootID,
	}
}

// Role resolves a user's role. The configured root identity is root no
// matter what the stored row says.
func (s *RoleService) Role(ctx context.Context, telegramID int64) (model.Role, error) {
	if telegramID == s.rootID {
		return model.RoleRoot, nil
	}

	user, err := s.userRepo.Find(ctx, telegramID)
	if err != nil {
		return model.RoleNone, apperrors.Database(err)
	}
	return user.RoleOrNone(), nil
}

// IsAuthorized reports whether the user may use the code-distribution surface.
func (s *RoleService) IsAuthorized(ctx context.Context, telegramID int64) (bool, error) {
	role, err := s.Role(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return role.Authorized(), nil
}

// Track records an interaction; every inbound update goes through here.
func (s *RoleService) Track(ctx context.Context, params model.TrackUserParams) error {
	if err := s.userRepo.Track(ctx, params); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// Bind promotes a user to admin. The count check and the upsert run in one
// transaction so two concurrent binds cannot both squeeze under the cap.
func (s *RoleService) Bind(ctx context.Context, params model.TrackUserParams) (model.BindResult, error) {
	var result model.BindResult

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = s.bind(ctx, repository.NewUserRepository(tx), params)
		return err
	})
	if err != nil {
		return "", apperrors.Database(err)
	}

	if result == model.BindOK {
		audit.Log(audit.Event{Type: audit.EventAdminBind, UserID: params.TelegramID})
	}
	return result, nil
}

// bind runs the capacity and role checks against the given repository.
// The cap is the most restrictive condition, so it is checked first.
func (s *RoleService) bind(ctx context.Context, repo repository.UserRepository, params model.TrackUserParams) (model.BindResult, error) {
	if params.TelegramID == s.rootID {
		return model.BindIsRoot, nil
	}

	count, err := repo.CountAdmins(ctx)
	if err != nil {
		return "", fmt.Errorf("count admins: %w", err)
	}
	if count >= config.MaxBoundAdmins {
		return model.BindMax, nil
	}

	existing, err := repo.Find(ctx, params.TelegramID)
	if err != nil {
		return "", fmt.Errorf("find target: %w", err)
	}
	switch existing.RoleOrNone() {
	case model.RoleRoot:
		return model.BindIsRoot, nil
	case model.RoleAdmin:
		return model.BindAlready, nil
	}

	if err := repo.SetAdmin(ctx, params); err != nil {
		return "", fmt.Errorf("set admin: %w", err)
	}
	return model.BindOK, nil
}

// Unbind clears a user's admin role. Root is refused before any write.
func (s *RoleService) Unbind(ctx context.Context, telegramID int64, kicked bool) error {
	if telegramID == s.rootID {
		return apperrors.RootImmutable()
	}

	ok, err := s.userRepo.ClearAdmin(ctx, telegramID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		return apperrors.NotFound("Bound admin")
	}

	eventType := audit.EventAdminUnbind
	if kicked {
		eventType = audit.EventAdminKick
	}
	audit.Log(audit.Event{Type: eventType, UserID: telegramID})

	log.Info().Int64("telegramId", telegramID).Bool("kicked", kicked).Msg("admin unbound")
	return nil
}

func (s *RoleService) Find(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.Find(ctx, telegramID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return user, nil
}

func (s *RoleService) ListAdmins(ctx context.Context) ([]model.User, error) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return admins, nil
}

func (s *RoleService) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	users, err := s.userRepo.ListUsers(ctx, limit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return users, nil
}

// RootID exposes the configured root identity for display and self-checks.
func (s *RoleService) RootID() int64 {
	return s.rootID
}
