package audit

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventAuthFailure       EventType = "auth_failure"
	EventInvalidSignature  EventType = "invalid_signature"
	EventNonceReplayed     EventType = "nonce_replayed"
	EventCommandRejected   EventType = "command_rejected"
	EventPairingCreated    EventType = "pairing_created"
	EventPairingAccepted   EventType = "pairing_accepted"
	EventPairingRevoked    EventType = "pairing_revoked"
	EventCodeAcceptFailure EventType = "code_accept_failure"
	EventRateLimitExceed   EventType = "rate_limit_exceeded"
)

// Event describes a security-relevant occurrence. Details must never
// contain secrets, full pairing codes, or expected signatures.
type Event struct {
	Type      EventType
	UserID    int64
	PairingID int64
	IP        string
	UserAgent string
	Details   map[string]any
}

func Log(event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.UserID != 0 {
		logger = logger.With().Int64("user_id", event.UserID).Logger()
	}
	if event.PairingID != 0 {
		logger = logger.With().Int64("pairing_id", event.PairingID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		logger = logger.With().Str("user_agent", event.UserAgent).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value any) *zerolog.Event {
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

func LogFromRequest(r *http.Request, event Event) {
	event.IP = getClientIP(r)
	event.UserAgent = r.UserAgent()
	Log(event)
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
