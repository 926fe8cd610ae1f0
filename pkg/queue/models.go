package queue

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ActivityQueueName is the Redis list activity events travel through.
const ActivityQueueName = "activity_log_queue"

var ErrInvalidEvent = errors.New("invalid activity event")

// ActivityEvent is one line of a player's activity log, as published by the
// game services and consumed by the activity worker.
type ActivityEvent struct {
	EventID   string    `json:"event_id"`
	PlayerID  int       `json:"player_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewActivityEvent(playerID int, action string) *ActivityEvent {
	return &ActivityEvent{
		EventID:   uuid.New().String(),
		PlayerID:  playerID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects events without a player or an action.
func (e *ActivityEvent) Validate() error {
	if e.PlayerID <= 0 {
		return errors.Join(ErrInvalidEvent, errors.New("player_id is required"))
	}
	if e.Action == "" {
		return errors.Join(ErrInvalidEvent, errors.New("action is required"))
	}
	return nil
}

// ToJSON converts the event to JSON bytes for Redis
func (e *ActivityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event leniently: a missing or malformed timestamp
// becomes now and a missing event ID is generated.
func FromJSON(data []byte) (*ActivityEvent, error) {
	var raw struct {
		EventID   string          `json:"event_id"`
		PlayerID  int             `json:"player_id"`
		Action    string          `json:"action"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrInvalidEvent, err)
	}

	e := &ActivityEvent{
		EventID:  raw.EventID,
		PlayerID: raw.PlayerID,
		Action:   raw.Action,
	}
	if e.EventID == "" {
		e.EventID = uuid.New().String()
	}

	var ts time.Time
	if len(raw.Timestamp) == 0 || json.Unmarshal(raw.Timestamp, &ts) != nil || ts.IsZero() {
		ts = time.Now()
	}
	e.Timestamp = ts.UTC()

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
