package domain

import "time"

// Event types for the event feed
const (
	EventActionRecorded = "action_recorded"
	EventActionUndone   = "action_undone"
	EventActionRedone   = "action_redone"
	EventActionRemoved  = "action_removed"
	EventLogCleared     = "log_cleared"
	EventLogImported    = "log_imported"
	EventRosterChanged  = "roster_changed"
	EventScoreChanged   = "score_changed"
	EventMatchSynced    = "match_synced"
)

// Event is a notification emitted after a state mutation commits
type Event struct {
	Type      string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ActionEvent carries the action affected by record, undo, redo or remove
type ActionEvent struct {
	Action GameAction `json:"action"`
}

// LogEvent is sent when the log is cleared or replaced
type LogEvent struct {
	Count int `json:"count"`
}

// RosterEvent is sent when the player registry is rebuilt
type RosterEvent struct {
	Players   int       `json:"players"`
	TeamNames [2]string `json:"team_names"`
}

// ScoreEvent is sent when a quarter score is edited
type ScoreEvent struct {
	Side    int `json:"side"`
	Quarter int `json:"quarter"`
	Value   int `json:"value"`
}

// MatchSyncedEvent is sent when a normalizer run has been applied
type MatchSyncedEvent struct {
	MatchID  int64  `json:"match_id"`
	HomeName string `json:"home_name"`
	AwayName string `json:"away_name"`
}
