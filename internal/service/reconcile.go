package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/model"
	"github.com/cloudmeet/agent-bot-go/internal/redis"
	"github.com/cloudmeet/agent-bot-go/internal/repository"
)

// CodeState classifies one assigned code after merging local ownership with
// the remote live status.
type CodeState string

const (
	// StateActive: a meeting is running and the session has time left
	// (or never expires).
	StateActive CodeState = "active"
	// StateExpired: the remote still flags the code in_use but its expiry
	// has passed; the slot stays occupied until explicitly released.
	StateExpired CodeState = "expired"
	// StateIdle: no live meeting on this code.
	StateIdle CodeState = "idle"
)

// CodeReport is the classification of one code in scope.
type CodeReport struct {
	Code      model.AuthCode
	State     CodeState
	OpenEnded bool
	// Remaining is set for active codes with a real expiry; Overdue for
	// expired ones.
	Remaining time.Duration
	Overdue   time.Duration
	Room      string
	// TotalMinutes is the configured session duration hint for idle codes;
	// 0 means the duration is not yet known.
	TotalMinutes int
	// HasTiming is false when the remote gave no usable timing detail.
	HasTiming bool
}

// Overview is the merged in-use / idle partition for a query scope.
type Overview struct {
	InUse []CodeReport
	Idle  []CodeReport
	// RemoteIdleUnclaimed counts codes the remote reports idle that no local
	// holder has claimed: how many more are up for grabs.
	RemoteIdleUnclaimed int
	// Degraded is true when the remote could not be reached and the reports
	// carry local-only information.
	Degraded bool
}

const snapshotCacheKey = "meet:snapshot"

// ReconcileService merges locally-held assignment records with the remote
// service's live status. The store is authoritative for ownership; the remote
// is authoritative for liveness only when reachable.
type ReconcileService struct {
	codeRepo repository.CodeRepository
	meet     MeetAPI
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewReconcileService(
	codeRepo repository.CodeRepository,
	meet MeetAPI,
	cache *redis.Client,
	cacheTTL time.Duration,
) *ReconcileService {
	return &ReconcileService{
		codeRepo: codeRepo,
		meet:     meet,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Classify is a pure function of (local row, remote snapshot entry, now).
// A nil snapshot entry means the remote knows nothing about the code: idle,
// no timing information.
func Classify(row model.AuthCode, snap *model.RemoteCodeStatus, now time.Time) CodeReport {
	report := CodeReport{Code: row}

	if snap == nil {
		report.State = StateIdle
		return report
	}

	report.Room = snap.BoundRoom
	report.TotalMinutes = snap.ExpiresMinutes

	if !snap.Live() {
		report.State = StateIdle
		report.HasTiming = snap.ExpiresMinutes > 0
		return report
	}

	if snap.OpenEnded() {
		report.State = StateActive
		report.OpenEnded = true
		return report
	}

	expiry, ok := snap.ExpiryTime()
	if !ok {
		// In use but the expiry is unreadable: show as active without
		// a countdown rather than guessing.
		report.State = StateActive
		report.OpenEnded = true
		return report
	}

	if expiry.After(now) {
		report.State = StateActive
		report.Remaining = expiry.Sub(now)
		report.HasTiming = true
		return report
	}

	report.State = StateExpired
	report.Overdue = now.Sub(expiry)
	report.HasTiming = true
	return report
}

// Overview reads the assigned rows for a scope and merges them with one
// batched remote snapshot. Remote failure degrades to local-only reports.
// scopeHolder < 0 means root scope: every assigned code.
func (s *ReconcileService) Overview(ctx context.Context, scopeHolder int64) (*Overview, error) {
	var (
		rows []model.AuthCode
		err  error
	)
	if scopeHolder < 0 {
		rows, err = s.codeRepo.ListAssigned(ctx)
	} else {
		rows, err = s.codeRepo.FindByHolder(ctx, scopeHolder)
	}
	if err != nil {
		return nil, fmt.Errorf("load assigned codes: %w", err)
	}

	overview := &Overview{}
	now := time.Now()

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("remote snapshot unavailable, degrading to local-only view")
		overview.Degraded = true
	}

	byCode := make(map[string]*model.RemoteCodeStatus, len(snapshot))
	for i := range snapshot {
		byCode[model.NormalizeCode(snapshot[i].Code)] = &snapshot[i]
	}

	localAssigned := make(map[string]bool, len(rows))
	for _, row := range rows {
		localAssigned[row.Code] = true

		report := Classify(row, byCode[row.Code], now)
		switch report.State {
		case StateIdle:
			overview.Idle = append(overview.Idle, report)
		default:
			overview.InUse = append(overview.InUse, report)
		}
	}

	if !overview.Degraded {
		for i := range snapshot {
			if !snapshot[i].Live() && !localAssigned[model.NormalizeCode(snapshot[i].Code)] {
				overview.RemoteIdleUnclaimed++
			}
		}
	}

	return overview, nil
}

// EndMeeting force-ends a code's live session on the remote service.
func (s *ReconcileService) EndMeeting(ctx context.Context, code string) error {
	if err := s.meet.ReleaseCode(ctx, code); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx)
	return nil
}

// snapshot returns the remote listing, served from a short redis cache so a
// burst of queries costs one upstream call.
func (s *ReconcileService) snapshot(ctx context.Context) ([]model.RemoteCodeStatus, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, snapshotCacheKey).Bytes(); err == nil {
			var codes []model.RemoteCodeStatus
			if err := json.Unmarshal(cached, &codes); err == nil {
				return codes, nil
			}
		}
	}

	codes, err := s.meet.ListCodes(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(codes); err == nil {
			if err := s.cache.Set(ctx, snapshotCacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("snapshot cache write failed")
			}
		}
	}

	return codes, nil
}

func (s *ReconcileService) invalidateSnapshot(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Del(ctx, snapshotCacheKey).Err(); err != nil {
			log.Debug().Err(err).Msg("snapshot cache invalidation failed")
		}
	}
}

// FormatClock renders a duration as 中文 X时Y分, floor semantics.
func FormatClock(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = -secs
	}
	return fmt.Sprintf("%d时%d分", secs/3600, secs%3600/60)
}

// FormatTotalMinutes renders a configured session duration hint.
func FormatTotalMinutes(minutes int) string {
	if minutes <= 0 {
		return "时长待定"
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%d小时", minutes/60)
	}
	if minutes < 60 {
		return fmt.Sprintf("%d分钟", minutes)
	}
	return fmt.Sprintf("%d小时%d分钟", minutes/60, minutes%60)
}
