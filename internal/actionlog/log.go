// Package actionlog is the append-only store of recorded game actions with
// undo and redo stacks. It is the single source of truth for game events.
package actionlog

import (
	"errors"
	"time"

	"github.com/ernie/courtside/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNoActorSelected    = errors.New("no player selected")
	ErrUnknownStatType    = errors.New("unknown stat type")
	ErrInvalidImportShape = errors.New("import is not a list of actions")
)

// Log holds history (most recent first) and the redo stack (most recent
// undo first). Redo is only non-empty directly after one or more undos;
// Record, Remove and ReplaceAll clear it.
//
// Log is not safe for concurrent use; callers serialize mutations.
type Log struct {
	history []domain.GameAction
	redo    []domain.GameAction

	now    func() time.Time
	newID  func() string
	lastTS int64
}

// Option configures a Log
type Option func(*Log)

// WithClock overrides the wall clock used for timestamps
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithIDGenerator overrides action ID generation
func WithIDGenerator(newID func() string) Option {
	return func(l *Log) { l.newID = newID }
}

// New creates an empty log
func New(opts ...Option) *Log {
	l := &Log{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an action for actor and clears the redo stack. The
// timestamp never goes backwards even if the wall clock does.
func (l *Log) Record(t domain.StatType, actor *domain.Player) (domain.GameAction, error) {
	if actor == nil {
		return domain.GameAction{}, ErrNoActorSelected
	}
	if !t.Valid() {
		return domain.GameAction{}, ErrUnknownStatType
	}

	ts := l.now().UnixMilli()
	if ts < l.lastTS {
		ts = l.lastTS
	}
	l.lastTS = ts

	action := domain.GameAction{
		ID:         l.newID(),
		PlayerID:   actor.ID,
		PlayerName: actor.Name,
		Team:       actor.Team,
		Type:       t,
		Timestamp:  ts,
	}

	l.history = prepend(l.history, action)
	l.redo = nil
	return action, nil
}

// Undo moves the newest history entry onto the redo stack
func (l *Log) Undo() (domain.GameAction, bool) {
	if len(l.history) == 0 {
		return domain.GameAction{}, false
	}
	action := l.history[0]
	l.history = l.history[1:]
	l.redo = prepend(l.redo, action)
	return action, true
}

// Redo moves the newest redo entry back onto history. It is the exact
// inverse of Undo.
func (l *Log) Redo() (domain.GameAction, bool) {
	if len(l.redo) == 0 {
		return domain.GameAction{}, false
	}
	action := l.redo[0]
	l.redo = l.redo[1:]
	l.history = prepend(l.history, action)
	return action, true
}

// Remove deletes one history entry by ID. It leaves the redo stack alone
// and cannot itself be undone.
func (l *Log) Remove(id string) (domain.GameAction, bool) {
	for i, a := range l.history {
		if a.ID == id {
			history := make([]domain.GameAction, 0, len(l.history)-1)
			history = append(history, l.history[:i]...)
			l.history = append(history, l.history[i+1:]...)
			return a, true
		}
	}
	return domain.GameAction{}, false
}

// Clear empties both stacks
func (l *Log) Clear() {
	l.history = nil
	l.redo = nil
}

// ReplaceAll swaps history for actions (most recent first) and clears redo.
// Nothing changes if any action lacks an ID or player, or has an unknown type.
func (l *Log) ReplaceAll(actions []domain.GameAction) error {
	if actions == nil {
		return ErrInvalidImportShape
	}
	for _, a := range actions {
		if a.ID == "" || a.PlayerID == "" || !a.Type.Valid() {
			return ErrInvalidImportShape
		}
	}

	history := make([]domain.GameAction, len(actions))
	copy(history, actions)
	l.history = history
	l.redo = nil

	for _, a := range actions {
		if a.Timestamp > l.lastTS {
			l.lastTS = a.Timestamp
		}
	}
	return nil
}

// History returns a copy of history, most recent first
func (l *Log) History() []domain.GameAction {
	return clone(l.history)
}

// RedoStack returns a copy of the redo stack, most recent undo first
func (l *Log) RedoStack() []domain.GameAction {
	return clone(l.redo)
}

// Len returns the number of actions in history
func (l *Log) Len() int {
	return len(l.history)
}

// InUndoWindow reports whether a redo is currently possible
func (l *Log) InUndoWindow() bool {
	return len(l.redo) > 0
}

func prepend(s []domain.GameAction, a domain.GameAction) []domain.GameAction {
	out := make([]domain.GameAction, 0, len(s)+1)
	out = append(out, a)
	return append(out, s...)
}

func clone(s []domain.GameAction) []domain.GameAction {
	out := make([]domain.GameAction, len(s))
	copy(out, s)
	return out
}
