package matchdata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/roster"
)

// Fallback names when the info payload lacks them
const (
	DefaultHomeName   = "主队"
	DefaultAwayName   = "客队"
	UnknownPlayerName = "Unknown"
)

// Positions in a score section's homeList/awayList: [id?, q1, q2, q3, q4, ?, total, ...]
const (
	idxFirstQuarter = 1
	idxTotal        = 6
	idxTotalShort   = 0
)

// Normalize merges the "match info" and "match detail" payloads into a
// canonical snapshot. The detail payload is an untyped tree; only two
// structural predicates are assumed, and anything missing or malformed
// falls back to zero scores, default names or "Unknown" players.
func Normalize(info, detail map[string]interface{}) domain.MatchData {
	md := domain.MatchData{
		Home: domain.TeamData{Name: extractString(info, "homeTeamName"), Players: []string{}},
		Away: domain.TeamData{Name: extractString(info, "awayTeamName"), Players: []string{}},
	}
	if md.Home.Name == "" {
		md.Home.Name = DefaultHomeName
	}
	if md.Away.Name == "" {
		md.Away.Name = DefaultAwayName
	}

	sections := extractArray(detail, "modeData")

	if section := findRosterSection(sections); section != nil {
		md.Home.Players = playerNames(extractArray(section, "homePlayers"))
		md.Away.Players = playerNames(extractArray(section, "awayPlayers"))
	}

	if scores := findScoreSection(sections); scores != nil {
		md.Home.Scores, md.Home.Total = parseScoreList(extractArray(scores, "homeList"))
		md.Away.Scores, md.Away.Total = parseScoreList(extractArray(scores, "awayList"))
	}

	return md
}

// RosterText renders the snapshot's players in the roster grammar, home first
func RosterText(md domain.MatchData) string {
	return roster.Format(
		roster.Team{Name: md.Home.Name, Players: md.Home.Players},
		roster.Team{Name: md.Away.Name, Players: md.Away.Players},
	)
}

// findRosterSection returns the first section whose homePlayers is an array
func findRosterSection(sections []interface{}) map[string]interface{} {
	for _, s := range sections {
		section, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := section["homePlayers"].([]interface{}); ok {
			return section
		}
	}
	return nil
}

// findScoreSection returns sectionList[0] of the first section that has a homeList there
func findScoreSection(sections []interface{}) map[string]interface{} {
	for _, s := range sections {
		section, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		list := extractArray(section, "sectionList")
		if len(list) == 0 {
			continue
		}
		first, ok := list[0].(map[string]interface{})
		if !ok {
			continue
		}
		if v, ok := first["homeList"]; ok && v != nil {
			return first
		}
	}
	return nil
}

func playerNames(players []interface{}) []string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		name := ""
		if m, ok := p.(map[string]interface{}); ok {
			name = strings.TrimSpace(extractString(m, "playerName"))
		}
		if name == "" {
			name = UnknownPlayerName
		}
		names = append(names, name)
	}
	return names
}

// parseScoreList reads quarters from offsets 1-4 and the total from offset 6,
// or offset 0 for short lists. An empty list yields all zeros.
func parseScoreList(list []interface{}) ([domain.Quarters]int, int) {
	var quarters [domain.Quarters]int
	if len(list) == 0 {
		return quarters, 0
	}

	for i := range quarters {
		quarters[i] = elementInt(list, idxFirstQuarter+i)
	}

	total := elementInt(list, idxTotalShort)
	if len(list) > idxTotal {
		total = elementInt(list, idxTotal)
	}
	return quarters, total
}

func elementInt(list []interface{}, i int) int {
	if i < 0 || i >= len(list) {
		return 0
	}
	return parseScore(list[i])
}

// parseScore converts an upstream value to a non-negative score. Missing,
// non-numeric, non-finite and negative values become 0.
func parseScore(v interface{}) int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// extractString safely extracts a string from a map
func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// extractArray safely extracts an array from a map
func extractArray(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]interface{}); ok {
			return arrVal
		}
	}
	return []interface{}{}
}
