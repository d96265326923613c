// Package journal provides the append-only feed of simulation events.
// Transports (WebSocket hub) and persistence (SQLite) consume it; the
// engine's own event history and report list remain the authoritative
// in-memory state.
package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventGameStarted       EventType = "GAME_STARTED"
	EventMoveAdvanced      EventType = "MOVE_ADVANCED"
	EventCardDrawn         EventType = "CARD_DRAWN"
	EventCardResolved      EventType = "CARD_RESOLVED"
	EventMonthSettled      EventType = "MONTH_SETTLED"
	EventLiabilityPaidOff  EventType = "LIABILITY_PAID_OFF"
	EventShortfallCredited EventType = "SHORTFALL_CREDITED"
	EventGameWon           EventType = "GAME_WON"
	EventGameLost          EventType = "GAME_LOST"
)

// SimEvent is an immutable record of something that happened in a run.
type SimEvent struct {
	ID        string      `json:"id"`
	GameID    int         `json:"game_id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Month     int         `json:"month"`
	Move      int         `json:"move"`
	Payload   interface{} `json:"payload"` // event-specific data
}

// Persister defines how an event is durably stored.
type Persister interface {
	Append(event SimEvent) error
}

// Log is the in-memory append-only log of simulation events.
type Log struct {
	mu        sync.RWMutex
	events    []SimEvent
	persister Persister
}

// NewLog creates a new event log with an optional persister.
func NewLog(persister Persister) *Log {
	return &Log{
		events:    make([]SimEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (l *Log) Append(event SimEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)

	if l.persister != nil {
		// Write through to persistent storage off the caller's path
		go func(e SimEvent) {
			_ = l.persister.Append(e)
		}(event)
	}
}

// Replay returns the full history of events.
func (l *Log) Replay() []SimEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.events
}

// Since returns the events appended after the first n, for pollers that
// track their own cursor.
func (l *Log) Since(n int) []SimEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n >= len(l.events) {
		return nil
	}
	return l.events[n:]
}

// Len reports the number of events appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
