// Package telemetry provides optional Prometheus metrics for the client.
// Counters stay nil until Init is called, so library users who never opt in
// pay nothing and register nothing on the default registry.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// FramesDiscarded counts live chat frames dropped without reaching the
	// caller: malformed frames, binary frames, and protocol-internal events.
	FramesDiscarded prometheus.Counter

	// KeepalivesAnswered counts protocol-level pings answered with a pong.
	KeepalivesAnswered prometheus.Counter

	// ChatMessagesDecoded counts successfully decoded chat messages.
	ChatMessagesDecoded prometheus.Counter

	// APIRequests counts REST API requests sent.
	APIRequests prometheus.Counter

	// APIRetries counts REST API retries after HTTP 429 responses.
	APIRetries prometheus.Counter
)

// Init registers all metrics on the default registry (idempotent).
func Init() {
	once.Do(func() {
		FramesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
			Name: "kick_livechat_frames_discarded_total",
			Help: "Live chat frames discarded without being surfaced to the caller",
		})
		KeepalivesAnswered = promauto.NewCounter(prometheus.CounterOpts{
			Name: "kick_livechat_keepalives_answered_total",
			Help: "Protocol-level pings answered with a pong",
		})
		ChatMessagesDecoded = promauto.NewCounter(prometheus.CounterOpts{
			Name: "kick_livechat_messages_decoded_total",
			Help: "Chat messages successfully decoded from the event stream",
		})
		APIRequests = promauto.NewCounter(prometheus.CounterOpts{
			Name: "kick_api_requests_total",
			Help: "REST API requests sent",
		})
		APIRetries = promauto.NewCounter(prometheus.CounterOpts{
			Name: "kick_api_retries_total",
			Help: "REST API retries after rate limiting",
		})
	})
}

// IncFrameDiscarded increments FramesDiscarded if metrics are initialized.
func IncFrameDiscarded() {
	if FramesDiscarded != nil {
		FramesDiscarded.Inc()
	}
}

// IncKeepaliveAnswered increments KeepalivesAnswered if metrics are initialized.
func IncKeepaliveAnswered() {
	if KeepalivesAnswered != nil {
		KeepalivesAnswered.Inc()
	}
}

// IncChatMessageDecoded increments ChatMessagesDecoded if metrics are initialized.
func IncChatMessageDecoded() {
	if ChatMessagesDecoded != nil {
		ChatMessagesDecoded.Inc()
	}
}

// IncAPIRequest increments APIRequests if metrics are initialized.
func IncAPIRequest() {
	if APIRequests != nil {
		APIRequests.Inc()
	}
}

// IncAPIRetry increments APIRetries if metrics are initialized.
func IncAPIRetry() {
	if APIRetries != nil {
		APIRetries.Inc()
	}
}
