package matchdata

import (
	"encoding/json"
	"testing"

	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/roster"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

const detailFixture = `{
	"modeData": [
		{"title": "summary", "homePlayers": "not a list"},
		{"sectionList": []},
		{"sectionList": [{"homeList": ["9", 20, "21", 22, null, "x", 85, "http://img"], "awayList": [0, 18, 19, "", 25, 0, 62]}]},
		{"homePlayers": [{"playerName": "刘竞"}, {"playerName": ""}, "junk", {"playerName": "吴维"}],
		 "awayPlayers": [{"playerName": "张伟"}]}
	]
}`

func TestNormalize(t *testing.T) {
	info := mustJSON(t, `{"homeTeamName": "宏疆队", "awayTeamName": "沐骁队"}`)
	md := Normalize(info, mustJSON(t, detailFixture))

	require.Equal(t, domain.TeamData{
		Name:    "宏疆队",
		Scores:  [4]int{20, 21, 22, 0},
		Players: []string{"刘竞", "Unknown", "Unknown", "吴维"},
		Total:   85,
	}, md.Home)
	require.Equal(t, domain.TeamData{
		Name:    "沐骁队",
		Scores:  [4]int{18, 19, 0, 25},
		Players: []string{"张伟"},
		Total:   62,
	}, md.Away)
}

func TestNormalizeShortScoreList(t *testing.T) {
	detail := mustJSON(t, `{"modeData": [{"sectionList": [{"homeList": [40, 10, 10], "awayList": []}]}]}`)
	md := Normalize(nil, detail)
	require.Equal(t, [4]int{10, 10, 0, 0}, md.Home.Scores)
	require.Equal(t, 40, md.Home.Total)
	require.Equal(t, [4]int{}, md.Away.Scores)
	require.Equal(t, 0, md.Away.Total)
}

func TestNormalizeNoScoreSection(t *testing.T) {
	detail := mustJSON(t, `{"modeData": [{"homePlayers": [{"playerName": "a"}]}, {"sectionList": [{"awayList": [1,2,3]}]}]}`)
	md := Normalize(map[string]interface{}{}, detail)

	require.Equal(t, DefaultHomeName, md.Home.Name)
	require.Equal(t, DefaultAwayName, md.Away.Name)
	require.Equal(t, [4]int{}, md.Home.Scores)
	require.Equal(t, [4]int{}, md.Away.Scores)
	require.Zero(t, md.Home.Total)
	require.Zero(t, md.Away.Total)
	require.Equal(t, []string{"a"}, md.Home.Players)
	require.Empty(t, md.Away.Players)
}

func TestNormalizeEmpty(t *testing.T) {
	for _, detail := range []string{`{}`, `{"modeData": "nope"}`, `{"modeData": [1, "two", null]}`} {
		md := Normalize(nil, mustJSON(t, detail))
		require.Equal(t, [4]int{}, md.Home.Scores)
		require.Empty(t, md.Home.Players)
		require.NotNil(t, md.Away.Players)
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		v    interface{}
		want int
	}{
		{float64(12), 12},
		{"31", 31},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{nil, 0},
		{true, 0},
		{float64(-3), 0},
		{json.Number("15"), 15},
		{map[string]interface{}{}, 0},
	}
	for _, tc := range tests {
		require.Equalf(t, tc.want, parseScore(tc.v), "value %v", tc.v)
	}
}

func TestRosterTextRoundTrip(t *testing.T) {
	md := Normalize(mustJSON(t, `{"homeTeamName": "A", "awayTeamName": "B"}`), mustJSON(t, detailFixture))
	text := RosterText(md)
	require.Equal(t, "A:刘竞,Unknown,Unknown,吴维;B:张伟", text)

	players, names := roster.Parse(text)
	require.Equal(t, []string{"A", "B"}, names)
	require.Len(t, players, 5)
	require.Equal(t, "B-张伟", players[4].ID)
}
