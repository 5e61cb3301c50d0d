package session

import (
	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/stats"
)

// State is a consistent snapshot of the session for display
type State struct {
	RosterText    string              `json:"roster_text"`
	MatchInput    string              `json:"match_input"`
	TeamNames     [2]string           `json:"team_names"`
	Players       []domain.Player     `json:"players"`
	SelectedID    string              `json:"selected_id"`
	ScoreBoard    domain.ScoreBoard   `json:"scoreboard"`
	Totals        [2]int              `json:"totals"`
	RunningScores [2]int              `json:"running_scores"`
	History       []domain.GameAction `json:"history"`
	RedoDepth     int                 `json:"redo_depth"`
	InUndoWindow  bool                `json:"in_undo_window"`
}

// State returns the current snapshot. The scoreboard totals and the running
// scores derived from the log are reported side by side, never reconciled.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board := s.board
	board.TeamNames = s.registry.TeamNames()
	history := s.log.History()

	return State{
		RosterText:    s.registry.Text(),
		MatchInput:    s.matchInput,
		TeamNames:     board.TeamNames,
		Players:       s.registry.Players(),
		SelectedID:    s.registry.SelectedID(),
		ScoreBoard:    board,
		Totals:        [2]int{board.Total(domain.SideHome), board.Total(domain.SideAway)},
		RunningScores: stats.RunningScores(history, board.TeamNames),
		History:       history,
		RedoDepth:     len(s.log.RedoStack()),
		InUndoWindow:  s.log.InUndoWindow(),
	}
}

// Players returns the current roster
func (s *Session) Players() []domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Players()
}

// History returns the action log, most recent first
func (s *Session) History() []domain.GameAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.History()
}

// PlayerStats aggregates the log for one player. Players no longer on the
// roster are still reported if the log mentions them.
func (s *Session) PlayerStats(id string) (domain.Player, domain.PlayerStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.log.History()
	player, ok := s.registry.Lookup(id)
	if !ok {
		for _, a := range history {
			if a.PlayerID == id {
				player, ok = domain.Player{ID: a.PlayerID, Name: a.PlayerName, Team: a.Team}, true
				break
			}
		}
	}
	if !ok {
		return domain.Player{}, domain.PlayerStat{}, ErrUnknownPlayer
	}
	return player, stats.Aggregate(history, id), nil
}

// BoxScore aggregates every rostered player and team
func (s *Session) BoxScore() domain.BoxScore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stats.BoxScore(s.registry.Players(), s.log.History())
}
