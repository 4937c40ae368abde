package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// signatureWindow is how far a request timestamp may drift from the server
// clock before the request is rejected as a possible replay.
const signatureWindow = 5 * time.Minute

// eventsPayload is the body of an Events API delivery.
type eventsPayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge,omitempty"`
	Event     Event  `json:"event"`
}

// EventsReceiver is the HTTP receiver for the Events API: it validates the
// platform's v0 request signature, answers url_verification challenges, and
// forwards message events to the demultiplexer. It is mounted on the gateway
// router.
type EventsReceiver struct {
	demux         *Demux
	signingSecret string
	logger        *slog.Logger

	// now is injectable for deterministic testing.
	now func() time.Time
}

// NewEventsReceiver creates an EventsReceiver. An empty signingSecret
// disables signature validation (tests only; Validate in internal/config
// rejects it for real deployments).
func NewEventsReceiver(demux *Demux, signingSecret string, logger *slog.Logger) *EventsReceiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsReceiver{
		demux:         demux,
		signingSecret: signingSecret,
		logger:        logger,
		now:           time.Now,
	}
}

// ServeHTTP implements http.Handler.
func (rc *EventsReceiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxResponseBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if rc.signingSecret != "" && !rc.validSignature(body, r.Header) {
		rc.logger.Warn("webhook: invalid signature rejected")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var payload eventsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch payload.Type {
	case "url_verification":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(payload.Challenge))
	case "event_callback":
		if payload.Event.Type == "message" {
			if err := rc.demux.HandleEvent(payload.Event); err != nil {
				// Per-event failure. Acknowledge anyway: the platform would
				// otherwise redeliver an event that will never parse.
				rc.logger.Error("webhook: event rejected", "error", err, "ts", payload.Event.TS)
			}
		}
		w.WriteHeader(http.StatusOK)
	default:
		rc.logger.Debug("webhook: payload ignored", "type", payload.Type)
		w.WriteHeader(http.StatusOK)
	}
}

// validSignature checks the v0 signature scheme: HMAC-SHA256 over
// "v0:<timestamp>:<body>" with the signing secret, hex-encoded, prefixed
// "v0=", compared in constant time, with a freshness window on the
// timestamp.
func (rc *EventsReceiver) validSignature(body []byte, headers http.Header) bool {
	tsHeader := headers.Get("X-Slack-Request-Timestamp")
	signature := headers.Get("X-Slack-Signature")
	if tsHeader == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return false
	}
	drift := rc.now().Unix() - ts
	if drift < 0 {
		drift = -drift
	}
	if time.Duration(drift)*time.Second > signatureWindow {
		return false
	}

	mac := hmac.New(sha256.New, []byte(rc.signingSecret))
	mac.Write([]byte("v0:" + tsHeader + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
