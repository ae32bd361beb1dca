package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/audit"
	apperrors "github.com/cloudmeet/agent-bot-go/internal/errors"
	"github.com/cloudmeet/agent-bot-go/internal/model"
	"github.com/cloudmeet/agent-bot-go/internal/repository"
)

// IngestResult reports a batch insert of codes handed down by the master bot.
type IngestResult struct {
	Added      []string
	Duplicates []string
}

// InventoryService owns the authorization-code lifecycle: ingestion, claim,
// release, bulk hand-off and administrative maintenance. The agent never
// mints codes; they only arrive from the master bot.
type InventoryService struct {
	codeRepo    repository.CodeRepository
	bulkTakeMax int
}

func NewInventoryService(codeRepo repository.CodeRepository, bulkTakeMax int) *InventoryService {
	return &InventoryService{
		codeRepo:    codeRepo,
		bulkTakeMax: bulkTakeMax,
	}
}

// AddCode stores one code. Returns DuplicateCode when it was already known;
// callers treat that as a skip signal, not a failure.
func (s *InventoryService) AddCode(ctx context.Context, code, note string) error {
	normalized := model.NormalizeCode(code)
	added, err := s.codeRepo.Add(ctx, normalized, note)
	if err != nil {
		return apperrors.Database(err)
	}
	if !added {
		return apperrors.DuplicateCode(normalized)
	}

	audit.Log(audit.Event{Type: audit.EventCodeIngest, Code: normalized, Details: map[string]interface{}{"note": note}})
	return nil
}

// AddCodes inserts a batch, partitioning new codes from duplicates.
func (s *InventoryService) AddCodes(ctx context.Context, codes []string, note string) (*IngestResult, error) {
	result := &IngestResult{}
	for _, code := range codes {
		normalized := model.NormalizeCode(code)
		added, err := s.codeRepo.Add(ctx, normalized, note)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if added {
			result.Added = append(result.Added, normalized)
		} else {
			result.Duplicates = append(result.Duplicates, normalized)
		}
	}

	if len(result.Added) > 0 {
		audit.Log(audit.Event{
			Type: audit.EventCodeIngest,
			Details: map[string]interface{}{
				"added":      len(result.Added),
				"duplicates": len(result.Duplicates),
				"note":       note,
			},
		})
	}

	return result, nil
}

// Claim hands the oldest available code to a tracked user. The self-service
// flow allows one tracked code per holder; an existing grant is returned in
// the error so the caller can re-show it.
func (s *InventoryService) Claim(ctx context.Context, holderID int64) (*model.AuthCode, error) {
	existing, err := s.codeRepo.FindByHolder(ctx, holderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if len(existing) > 0 {
		return nil, apperrors.AlreadyHoldsCode(existing[0].Code)
	}

	code, err := s.codeRepo.ClaimNext(ctx, holderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if code == nil {
		return nil, apperrors.NoCodesAvailable()
	}

	audit.Log(audit.Event{Type: audit.EventCodeClaim, UserID: holderID, Code: code.Code})
	return code, nil
}

// ClaimSpecific binds a named code to a holder if it is still available.
func (s *InventoryService) ClaimSpecific(ctx context.Context, holderID int64, code string) error {
	normalized := model.NormalizeCode(code)
	ok, err := s.codeRepo.ClaimSpecific(ctx, holderID, normalized)
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		return apperrors.CodeTaken(normalized)
	}

	audit.Log(audit.Event{Type: audit.EventCodeClaim, UserID: holderID, Code: normalized})
	return nil
}

// Release reverts an assigned code to the pool. Root may release any code;
// a regular holder only one assigned to them.
func (s *InventoryService) Release(ctx context.Context, code string, requesterID int64, isRoot bool) error {
	normalized := model.NormalizeCode(code)

	var (
		ok  bool
		err error
	)
	if isRoot {
		ok, err = s.codeRepo.Release(ctx, normalized)
	} else {
		ok, err = s.codeRepo.ReleaseOwned(ctx, normalized, requesterID)
	}
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		return apperrors.NotCodeOwner(normalized)
	}

	audit.Log(audit.Event{
		Type: audit.EventCodeRelease, UserID: requesterID, Code: normalized,
		Details: map[string]interface{}{"as_root": isRoot},
	})
	return nil
}

// BulkTake removes up to n available codes for an off-channel hand-off.
// n is capped so one administrative action cannot drain the whole pool.
func (s *InventoryService) BulkTake(ctx context.Context, n int, requesterID int64) ([]model.AuthCode, error) {
	if n <= 0 {
		return nil, apperrors.InvalidInput("count", "must be positive")
	}
	if n > s.bulkTakeMax {
		n = s.bulkTakeMax
	}

	codes, err := s.codeRepo.BulkTake(ctx, n)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	if len(codes) > 0 {
		audit.Log(audit.Event{
			Type: audit.EventBulkTake, UserID: requesterID,
			Details: map[string]interface{}{"requested": n, "taken": len(codes)},
		})
	}

	return codes, nil
}

// DeleteCode removes an available code. Assigned codes are refused to keep
// the grant history intact.
func (s *InventoryService) DeleteCode(ctx context.Context, code string, requesterID int64) error {
	normalized := model.NormalizeCode(code)
	ok, err := s.codeRepo.Delete(ctx, normalized)
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		return apperrors.CodeNotDeletable(normalized)
	}

	audit.Log(audit.Event{Type: audit.EventCodeDelete, UserID: requesterID, Code: normalized})
	return nil
}

func (s *InventoryService) ListCodes(ctx context.Context, limit int) ([]model.AuthCode, error) {
	codes, err := s.codeRepo.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return codes, nil
}

func (s *InventoryService) HolderCodes(ctx context.Context, holderID int64) ([]model.AuthCode, error) {
	codes, err := s.codeRepo.FindByHolder(ctx, holderID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return codes, nil
}

func (s *InventoryService) Stats(ctx context.Context) (*model.StockStats, error) {
	stats, err := s.codeRepo.Stats(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return stats, nil
}

// LoadFixtures seeds the inventory from a deployment fixture list. Duplicates
// are expected across restarts and skipped silently.
func (s *InventoryService) LoadFixtures(ctx context.Context, fixtures []FixtureCode) error {
	added := 0
	for _, f := range fixtures {
		ok, err := s.codeRepo.Add(ctx, f.Code, f.Note)
		if err != nil {
			return fmt.Errorf("seed fixture code %s: %w", f.Code, err)
		}
		if ok {
			added++
		}
	}
	if added > 0 {
		log.Info().Int("added", added).Int("listed", len(fixtures)).Msg("fixture codes seeded")
	}
	return nil
}
