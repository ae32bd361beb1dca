package audit

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventCodeIngest    EventType = "code_ingest"
	EventCodeClaim     EventType = "code_claim"
	EventCodeRelease   EventType = "code_release"
	EventCodeDelete    EventType = "code_delete"
	EventBulkTake      EventType = "bulk_take"
	EventAdminBind     EventType = "admin_bind"
	EventAdminUnbind   EventType = "admin_unbind"
	EventAdminKick     EventType = "admin_kick"
	EventMeetingEnd    EventType = "meeting_end"
	EventAuthFailure   EventType = "auth_failure"
	EventRateLimitHit  EventType = "rate_limit_exceeded"
	EventAgentRegister EventType = "agent_register"
)

type Event struct {
	Type    EventType
	UserID  int64
	Code    string
	Details map[string]interface{}
}

// Log emits a structured audit record alongside the normal request logs.
// Audit events are the trail for every grant, release and role change.
func Log(event Event) {
	logger := log.With().
		Str("audit", "inventory").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != 0 {
		logger = logger.With().Int64("user_id", event.UserID).Logger()
	}
	if event.Code != "" {
		logger = logger.With().Str("code", event.Code).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
