// Package session owns the live scoring state: the player registry, the
// action log and the scoreboard. Every mutation is a named method that runs
// to completion under one lock before its event is published.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ernie/courtside/internal/actionlog"
	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/logging"
	"github.com/ernie/courtside/internal/matchdata"
	"github.com/ernie/courtside/internal/roster"
	"github.com/ernie/courtside/internal/storage"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidScore  = errors.New("invalid score")
)

// Settings persists the two operator text fields
type Settings interface {
	SetSetting(ctx context.Context, key, value string) error
}

// Publisher receives events after each committed mutation
type Publisher interface {
	Publish(event domain.Event) error
}

// Fetcher resolves free-form match input into normalized match data
type Fetcher interface {
	Fetch(ctx context.Context, input string) (domain.MatchData, error)
}

// SnapshotWriter caches normalized match data
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, md domain.MatchData) error
}

// Session is the state container behind the operator surface
type Session struct {
	mu         sync.RWMutex
	persistMu  sync.Mutex
	registry   *roster.Registry
	board      domain.ScoreBoard
	log        *actionlog.Log
	matchInput string

	settings  Settings
	publisher Publisher
	snapshots SnapshotWriter
	now       func() time.Time
}

// Option configures a Session
type Option func(*Session)

// WithSettings persists roster text and match input through s
func WithSettings(s Settings) Option {
	return func(sess *Session) { sess.settings = s }
}

// WithPublisher sends mutation events to p
func WithPublisher(p Publisher) Option {
	return func(sess *Session) { sess.publisher = p }
}

// WithSnapshotWriter caches every successfully synced match
func WithSnapshotWriter(w SnapshotWriter) Option {
	return func(sess *Session) { sess.snapshots = w }
}

// WithActionLog replaces the default action log
func WithActionLog(l *actionlog.Log) Option {
	return func(sess *Session) { sess.log = l }
}

// WithClock overrides the clock used for event timestamps
func WithClock(now func() time.Time) Option {
	return func(sess *Session) { sess.now = now }
}

// New creates a session from the initial roster text and match input
func New(rosterText, matchInput string, opts ...Option) *Session {
	s := &Session{
		registry:   roster.NewRegistry(rosterText, [2]string{matchdata.DefaultHomeName, matchdata.DefaultAwayName}),
		matchInput: matchInput,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = actionlog.New()
	}
	return s
}

// SetRoster rebuilds the player registry from text and persists the text
func (s *Session) SetRoster(ctx context.Context, text string) {
	s.mu.Lock()
	s.registry.Rebuild(text)
	event := domain.RosterEvent{Players: len(s.registry.Players()), TeamNames: s.registry.TeamNames()}
	s.unlockAndPersist(ctx, storage.KeyRosterText, text)

	s.emit(domain.EventRosterChanged, event)
}

// SetMatchInput records the match identifier or URL the operator typed
func (s *Session) SetMatchInput(ctx context.Context, input string) {
	s.mu.Lock()
	s.matchInput = input
	s.unlockAndPersist(ctx, storage.KeyMatchInput, input)
}

// Select makes id the actor for subsequent records
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Select(id) {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	return nil
}

// Record logs a stat for playerID, or for the selected player when playerID
// is empty
func (s *Session) Record(t domain.StatType, playerID string) (domain.GameAction, error) {
	s.mu.Lock()
	var actor *domain.Player
	if playerID != "" {
		p, ok := s.registry.Lookup(playerID)
		if !ok {
			s.mu.Unlock()
			return domain.GameAction{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
		}
		actor = &p
	} else {
		actor = s.registry.Selected()
	}
	action, err := s.log.Record(t, actor)
	s.mu.Unlock()

	if err != nil {
		return domain.GameAction{}, err
	}
	s.emit(domain.EventActionRecorded, domain.ActionEvent{Action: action})
	return action, nil
}

// Undo moves the newest action to the redo stack
func (s *Session) Undo() (domain.GameAction, bool) {
	s.mu.Lock()
	action, ok := s.log.Undo()
	s.mu.Unlock()

	if ok {
		s.emit(domain.EventActionUndone, domain.ActionEvent{Action: action})
	}
	return action, ok
}

// Redo restores the most recently undone action
func (s *Session) Redo() (domain.GameAction, bool) {
	s.mu.Lock()
	action, ok := s.log.Redo()
	s.mu.Unlock()

	if ok {
		s.emit(domain.EventActionRedone, domain.ActionEvent{Action: action})
	}
	return action, ok
}

// RemoveAction strikes one action from history without touching redo
func (s *Session) RemoveAction(id string) (domain.GameAction, bool) {
	s.mu.Lock()
	action, ok := s.log.Remove(id)
	s.mu.Unlock()

	if ok {
		s.emit(domain.EventActionRemoved, domain.ActionEvent{Action: action})
	}
	return action, ok
}

// Clear empties history and redo. Callers confirm intent first.
func (s *Session) Clear() {
	s.mu.Lock()
	s.log.Clear()
	s.mu.Unlock()

	s.emit(domain.EventLogCleared, domain.LogEvent{})
}

// Import replaces history with actions. The log is untouched on error.
func (s *Session) Import(actions []domain.GameAction) error {
	s.mu.Lock()
	err := s.log.ReplaceAll(actions)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.emit(domain.EventLogImported, domain.LogEvent{Count: len(actions)})
	return nil
}

// SetQuarterScore edits one scoreboard cell. The side's total override is
// dropped so the displayed total follows the quarters again.
func (s *Session) SetQuarterScore(side, quarter, value int) error {
	if side != domain.SideHome && side != domain.SideAway {
		return fmt.Errorf("%w: side %d", ErrInvalidScore, side)
	}
	if quarter < 0 || quarter >= domain.Quarters {
		return fmt.Errorf("%w: quarter %d", ErrInvalidScore, quarter+1)
	}
	if value < 0 {
		return fmt.Errorf("%w: value %d", ErrInvalidScore, value)
	}

	s.mu.Lock()
	s.board.QuarterScores[side][quarter] = value
	s.board.Totals[side] = nil
	s.mu.Unlock()

	s.emit(domain.EventScoreChanged, domain.ScoreEvent{Side: side, Quarter: quarter, Value: value})
	return nil
}

// ApplyMatchData overwrites roster text, team names and the scoreboard with
// a normalized snapshot. Team names come from the rebuilt roster so they
// always match the players' teams. The action log is never touched.
func (s *Session) ApplyMatchData(ctx context.Context, md domain.MatchData) {
	text := matchdata.RosterText(md)

	s.mu.Lock()
	s.registry.Rebuild(text)
	names := s.registry.TeamNames()
	s.board.QuarterScores = [2][domain.Quarters]int{md.Home.Scores, md.Away.Scores}
	home, away := md.Home.Total, md.Away.Total
	s.board.Totals = [2]*int{&home, &away}
	s.unlockAndPersist(ctx, storage.KeyRosterText, text)

	s.emit(domain.EventMatchSynced, domain.MatchSyncedEvent{
		MatchID:  md.MatchID,
		HomeName: names[domain.SideHome],
		AwayName: names[domain.SideAway],
	})
}

// Sync persists input, fetches the match and applies it. Input without a
// resolvable match ID changes nothing. The fetch runs without holding the
// lock; on fetch failure nothing but the input is changed.
func (s *Session) Sync(ctx context.Context, fetcher Fetcher, input string) (domain.MatchData, error) {
	if _, err := matchdata.ParseInput(input); err != nil {
		slog.Warn("Match input not resolvable", slog.String("input", input))
		return domain.MatchData{}, err
	}
	s.SetMatchInput(ctx, input)

	slog.Info("Syncing match", slog.String("input", input))
	md, err := fetcher.Fetch(ctx, input)
	if err != nil {
		slog.Warn("Match sync failed", slog.String("input", input), logging.ErrAttr(err))
		return domain.MatchData{}, err
	}

	s.ApplyMatchData(ctx, md)
	slog.Info("Match synced",
		slog.Int64("match_id", md.MatchID),
		slog.String("home", md.Home.Name),
		slog.String("away", md.Away.Name),
		slog.Int("players", len(md.Home.Players)+len(md.Away.Players)))

	if s.snapshots != nil {
		if err := s.snapshots.WriteSnapshot(ctx, md); err != nil {
			slog.Warn("Failed to cache match snapshot", slog.Int64("match_id", md.MatchID), logging.ErrAttr(err))
		}
	}
	return md, nil
}

// unlockAndPersist releases s.mu, which the caller holds, and writes the
// setting. Writes reach storage in the order their mutations were applied.
func (s *Session) unlockAndPersist(ctx context.Context, key, value string) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.mu.Unlock()

	s.persist(ctx, key, value)
}

func (s *Session) persist(ctx context.Context, key, value string) {
	if s.settings == nil {
		return
	}
	if err := s.settings.SetSetting(ctx, key, value); err != nil {
		slog.Error("Failed to persist setting", slog.String("key", key), logging.ErrAttr(err))
	}
}

func (s *Session) emit(eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	event := domain.Event{Type: eventType, Timestamp: s.now(), Data: data}
	if err := s.publisher.Publish(event); err != nil {
		slog.Warn("Failed to publish event", slog.String("event", eventType), logging.ErrAttr(err))
	}
}
