// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers simulation and transport counters.
type Collector struct {
	// Simulation metrics
	GamesStarted    int64
	GamesWon        int64
	GamesLost       int64
	MovesAdvanced   int64
	MonthsSettled   int64
	CardsDrawn      int64
	CardsResolved   int64
	ShortfallsTaken int64

	// Event persistence metrics
	EventsWritten    int64
	EventWriteLatSum int64 // nanoseconds
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordGameStart records a new game.
func (c *Collector) RecordGameStart() {
	atomic.AddInt64(&c.GamesStarted, 1)
}

// RecordGameEnd records a terminal status.
func (c *Collector) RecordGameEnd(won bool) {
	if won {
		atomic.AddInt64(&c.GamesWon, 1)
	} else {
		atomic.AddInt64(&c.GamesLost, 1)
	}
}

// RecordMove records an advanced move.
func (c *Collector) RecordMove() {
	atomic.AddInt64(&c.MovesAdvanced, 1)
}

// RecordSettlement records a month-end settlement.
func (c *Collector) RecordSettlement() {
	atomic.AddInt64(&c.MonthsSettled, 1)
}

// RecordCardDrawn records a materialized event card.
func (c *Collector) RecordCardDrawn() {
	atomic.AddInt64(&c.CardsDrawn, 1)
}

// RecordCardResolved records a resolved event card.
func (c *Collector) RecordCardResolved() {
	atomic.AddInt64(&c.CardsResolved, 1)
}

// RecordShortfall records a deficit routed to the revolving liability.
func (c *Collector) RecordShortfall() {
	atomic.AddInt64(&c.ShortfallsTaken, 1)
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	eventsWritten := atomic.LoadInt64(&c.EventsWritten)
	var eventAvg float64
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"simulation": map[string]interface{}{
			"games_started":    atomic.LoadInt64(&c.GamesStarted),
			"games_won":        atomic.LoadInt64(&c.GamesWon),
			"games_lost":       atomic.LoadInt64(&c.GamesLost),
			"moves_advanced":   atomic.LoadInt64(&c.MovesAdvanced),
			"months_settled":   atomic.LoadInt64(&c.MonthsSettled),
			"cards_drawn":      atomic.LoadInt64(&c.CardsDrawn),
			"cards_resolved":   atomic.LoadInt64(&c.CardsResolved),
			"shortfalls_taken": atomic.LoadInt64(&c.ShortfallsTaken),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP moneyrace_games_total Games by terminal status\n")
		fmt.Fprintf(w, "# TYPE moneyrace_games_total counter\n")
		fmt.Fprintf(w, "moneyrace_games_total{status=\"started\"} %d\n", atomic.LoadInt64(&c.GamesStarted))
		fmt.Fprintf(w, "moneyrace_games_total{status=\"won\"} %d\n", atomic.LoadInt64(&c.GamesWon))
		fmt.Fprintf(w, "moneyrace_games_total{status=\"lost\"} %d\n\n", atomic.LoadInt64(&c.GamesLost))

		fmt.Fprintf(w, "# HELP moneyrace_moves_advanced Total moves advanced\n")
		fmt.Fprintf(w, "# TYPE moneyrace_moves_advanced counter\n")
		fmt.Fprintf(w, "moneyrace_moves_advanced %d\n\n", atomic.LoadInt64(&c.MovesAdvanced))

		fmt.Fprintf(w, "# HELP moneyrace_months_settled Total month-end settlements\n")
		fmt.Fprintf(w, "# TYPE moneyrace_months_settled counter\n")
		fmt.Fprintf(w, "moneyrace_months_settled %d\n\n", atomic.LoadInt64(&c.MonthsSettled))

		fmt.Fprintf(w, "# HELP moneyrace_cards_total Event cards drawn and resolved\n")
		fmt.Fprintf(w, "# TYPE moneyrace_cards_total counter\n")
		fmt.Fprintf(w, "moneyrace_cards_total{stage=\"drawn\"} %d\n", atomic.LoadInt64(&c.CardsDrawn))
		fmt.Fprintf(w, "moneyrace_cards_total{stage=\"resolved\"} %d\n\n", atomic.LoadInt64(&c.CardsResolved))

		fmt.Fprintf(w, "# HELP moneyrace_shortfalls_taken Deficits routed to revolving debt\n")
		fmt.Fprintf(w, "# TYPE moneyrace_shortfalls_taken counter\n")
		fmt.Fprintf(w, "moneyrace_shortfalls_taken %d\n\n", atomic.LoadInt64(&c.ShortfallsTaken))

		fmt.Fprintf(w, "# HELP moneyrace_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE moneyrace_events_written counter\n")
		fmt.Fprintf(w, "moneyrace_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP moneyrace_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE moneyrace_event_write_errors counter\n")
		fmt.Fprintf(w, "moneyrace_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP moneyrace_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE moneyrace_ws_connections gauge\n")
		fmt.Fprintf(w, "moneyrace_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP moneyrace_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE moneyrace_ws_messages_total counter\n")
		fmt.Fprintf(w, "moneyrace_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "moneyrace_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
