package stats

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ernie/courtside/internal/domain"
	"github.com/stretchr/testify/require"
)

func action(n int, p domain.Player, t domain.StatType) domain.GameAction {
	return domain.GameAction{
		ID:         fmt.Sprintf("a%d", n),
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Team:       p.Team,
		Type:       t,
		Timestamp:  int64(n),
	}
}

var (
	x = domain.NewPlayer("A", "x")
	y = domain.NewPlayer("A", "y")
	z = domain.NewPlayer("B", "z")
)

func TestAggregateExample(t *testing.T) {
	history := []domain.GameAction{
		action(3, x, domain.Stat2PTMade),
		action(2, x, domain.StatFTMiss),
		action(1, x, domain.StatFTMade),
	}
	require.Equal(t, domain.PlayerStat{PTS: 3, FTM: 1, FTA: 2, FG2M: 1, FG2A: 1}, Aggregate(history, x.ID))
	require.Equal(t, domain.PlayerStat{}, Aggregate(history, z.ID))
}

func TestEffectTable(t *testing.T) {
	tests := []struct {
		t    domain.StatType
		want domain.PlayerStat
	}{
		{domain.StatFTMade, domain.PlayerStat{PTS: 1, FTM: 1, FTA: 1}},
		{domain.StatFTMiss, domain.PlayerStat{FTA: 1}},
		{domain.Stat2PTMade, domain.PlayerStat{PTS: 2, FG2M: 1, FG2A: 1}},
		{domain.Stat2PTMiss, domain.PlayerStat{FG2A: 1}},
		{domain.Stat3PTMade, domain.PlayerStat{PTS: 3, FG3M: 1, FG3A: 1}},
		{domain.Stat3PTMiss, domain.PlayerStat{FG3A: 1}},
		{domain.StatOffReb, domain.PlayerStat{REB: 1, OREB: 1}},
		{domain.StatDefReb, domain.PlayerStat{REB: 1, DREB: 1}},
		{domain.StatAssist, domain.PlayerStat{AST: 1}},
		{domain.StatSteal, domain.PlayerStat{STL: 1}},
		{domain.StatBlock, domain.PlayerStat{BLK: 1}},
		{domain.StatTurnover, domain.PlayerStat{TOV: 1}},
		{domain.StatFoul, domain.PlayerStat{Foul: 1}},
	}
	require.Len(t, tests, len(domain.StatTypes))
	for _, tc := range tests {
		got := Aggregate([]domain.GameAction{action(1, x, tc.t)}, x.ID)
		require.Equalf(t, tc.want, got, "type %s", tc.t)
	}
}

func TestAggregateInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	players := []domain.Player{x, y, z}
	var history []domain.GameAction
	for i := 0; i < 500; i++ {
		p := players[rng.Intn(len(players))]
		st := domain.StatTypes[rng.Intn(len(domain.StatTypes))]
		history = append([]domain.GameAction{action(i, p, st)}, history...)
	}

	total := 0
	for _, p := range players {
		s := Aggregate(history, p.ID)
		require.Equal(t, s.FTM+2*s.FG2M+3*s.FG3M, s.PTS)
		require.GreaterOrEqual(t, s.FTA, s.FTM)
		require.GreaterOrEqual(t, s.FG2A, s.FG2M)
		require.GreaterOrEqual(t, s.FG3A, s.FG3M)
		require.Equal(t, s.OREB+s.DREB, s.REB)
		require.Equal(t, s, Aggregate(history, p.ID))
		total += s.PTS
	}
	require.Equal(t, total, TeamPoints(history, "A")+TeamPoints(history, "B"))
}

func TestTeamPointsIgnoresRoster(t *testing.T) {
	// Actions keep their recorded team even if the roster changed since
	history := []domain.GameAction{
		action(2, z, domain.Stat3PTMade),
		action(1, domain.NewPlayer("Gone", "q"), domain.Stat2PTMade),
	}
	require.Equal(t, 3, TeamPoints(history, "B"))
	require.Equal(t, 2, TeamPoints(history, "Gone"))
	require.Equal(t, [2]int{0, 3}, RunningScores(history, [2]string{"A", "B"}))
}

func TestBoxScore(t *testing.T) {
	history := []domain.GameAction{
		action(4, z, domain.StatDefReb),
		action(3, y, domain.StatAssist),
		action(2, x, domain.Stat3PTMade),
		action(1, x, domain.StatFTMade),
	}
	box := BoxScore([]domain.Player{x, y, z}, history)
	require.Len(t, box.Players, 3)
	require.Equal(t, 4, box.Players[0].Stats.PTS)
	require.Equal(t, 1, box.Players[1].Stats.AST)
	require.Equal(t, 1, box.Players[2].Stats.DREB)

	require.Equal(t, []domain.TeamLine{
		{Team: "A", Points: 4, Stats: domain.PlayerStat{PTS: 4, FTM: 1, FTA: 1, FG3M: 1, FG3A: 1, AST: 1}},
		{Team: "B", Points: 0, Stats: domain.PlayerStat{REB: 1, DREB: 1}},
	}, box.Teams)

	empty := BoxScore(nil, nil)
	require.Empty(t, empty.Players)
	require.Empty(t, empty.Teams)
}
