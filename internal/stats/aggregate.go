// Package stats replays the action log into box-score counters. Every
// function here is a pure fold over history; nothing is cached.
package stats

import (
	"github.com/ernie/courtside/internal/domain"
)

// effects is the scoring rule set: the counter delta applied per StatType
var effects = map[domain.StatType]domain.PlayerStat{
	domain.StatFTMade:   {PTS: 1, FTM: 1, FTA: 1},
	domain.StatFTMiss:   {FTA: 1},
	domain.Stat2PTMade:  {PTS: 2, FG2M: 1, FG2A: 1},
	domain.Stat2PTMiss:  {FG2A: 1},
	domain.Stat3PTMade:  {PTS: 3, FG3M: 1, FG3A: 1},
	domain.Stat3PTMiss:  {FG3A: 1},
	domain.StatOffReb:   {REB: 1, OREB: 1},
	domain.StatDefReb:   {REB: 1, DREB: 1},
	domain.StatAssist:   {AST: 1},
	domain.StatSteal:    {STL: 1},
	domain.StatBlock:    {BLK: 1},
	domain.StatTurnover: {TOV: 1},
	domain.StatFoul:     {Foul: 1},
}

// Effect returns the counter delta for one action type; unknown types have none
func Effect(t domain.StatType) domain.PlayerStat {
	return effects[t]
}

// Aggregate folds every action of playerID in history into a PlayerStat
func Aggregate(history []domain.GameAction, playerID string) domain.PlayerStat {
	return fold(history, func(a domain.GameAction) bool { return a.PlayerID == playerID })
}

// AggregateTeam folds every action recorded against team
func AggregateTeam(history []domain.GameAction, team string) domain.PlayerStat {
	return fold(history, func(a domain.GameAction) bool { return a.Team == team })
}

// TeamPoints is the running score for team derived from the log. It is
// independent of the operator-edited scoreboard.
func TeamPoints(history []domain.GameAction, team string) int {
	return AggregateTeam(history, team).PTS
}

// BoxScore builds one line per player in roster order plus one line per team,
// teams ordered by first appearance in players
func BoxScore(players []domain.Player, history []domain.GameAction) domain.BoxScore {
	box := domain.BoxScore{
		Players: make([]domain.BoxScoreLine, 0, len(players)),
		Teams:   []domain.TeamLine{},
	}

	seen := make(map[string]bool)
	for _, p := range players {
		box.Players = append(box.Players, domain.BoxScoreLine{
			Player: p,
			Stats:  Aggregate(history, p.ID),
		})
		if !seen[p.Team] {
			seen[p.Team] = true
			team := AggregateTeam(history, p.Team)
			box.Teams = append(box.Teams, domain.TeamLine{Team: p.Team, Points: team.PTS, Stats: team})
		}
	}
	return box
}

// RunningScores returns the log-derived points for both scoreboard sides
func RunningScores(history []domain.GameAction, teamNames [2]string) [2]int {
	return [2]int{
		TeamPoints(history, teamNames[domain.SideHome]),
		TeamPoints(history, teamNames[domain.SideAway]),
	}
}

func fold(history []domain.GameAction, match func(domain.GameAction) bool) domain.PlayerStat {
	var s domain.PlayerStat
	for _, a := range history {
		if match(a) {
			s = s.Add(effects[a.Type])
		}
	}
	return s
}
