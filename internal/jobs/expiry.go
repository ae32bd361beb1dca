package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/service"
)

// ExpiryJob periodically scans the remote listing for sessions that have
// passed their expiry but still occupy a slot. The remote does not reap them
// on its own; this watcher surfaces them so the operator can /release.
type ExpiryJob struct {
	meet     service.MeetAPI
	interval time.Duration
	done     chan struct{}
}

func NewExpiryJob(meet service.MeetAPI, interval time.Duration) *ExpiryJob {
	return &ExpiryJob{
		meet:     meet,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *ExpiryJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("expiry watcher started")
}

func (j *ExpiryJob) Stop() {
	close(j.done)
	log.Info().Msg("expiry watcher stopped")
}

func (j *ExpiryJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.watch()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.watch()
		}
	}
}

func (j *ExpiryJob) watch() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := j.scan(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("expiry scan failed")
		return
	}
	if expired > 0 {
		log.Warn().Int("count", expired).Msg("expired sessions still occupying codes")
	}
}

// scan counts live sessions whose expiry has passed. Open-ended sessions are
// never reported.
func (j *ExpiryJob) scan(ctx context.Context, now time.Time) (int, error) {
	codes, err := j.meet.ListCodes(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, snap := range codes {
		if !snap.Live() || snap.OpenEnded() {
			continue
		}
		expiry, ok := snap.ExpiryTime()
		if !ok || expiry.After(now) {
			continue
		}

		expired++
		log.Warn().
			Str("code", snap.Code).
			Str("room", snap.BoundRoom).
			Str("overdue", service.FormatClock(now.Sub(expiry))).
			Msg("session expired but not released")
	}

	return expired, nil
}
