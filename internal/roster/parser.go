// Package roster turns operator-edited roster text into a player registry.
//
// The grammar is "TeamA:Name1,Name2;TeamB:Name3". Full-width ':', ',' and ';'
// are accepted. Malformed input never errors; the worst case is an empty roster.
package roster

import (
	"strings"

	"github.com/ernie/courtside/internal/domain"
)

const (
	teamSep   = ";"
	memberSep = ","
	nameSep   = ":"
)

var punctuation = strings.NewReplacer("：", nameSep, "，", memberSep, "；", teamSep)

// separators removes grammar punctuation from names written back by Format
var separators = strings.NewReplacer(
	nameSep, " ", memberSep, " ", teamSep, " ",
	"：", " ", "，", " ", "；", " ",
)

// Parse returns the players in text order and the team names of every
// segment that had a ':' separator. Segments without one are dropped.
func Parse(text string) ([]domain.Player, []string) {
	var (
		players   []domain.Player
		teamNames []string
	)

	for _, segment := range strings.Split(punctuation.Replace(text), teamSep) {
		teamName, members, ok := strings.Cut(segment, nameSep)
		if !ok {
			continue
		}
		teamName = strings.TrimSpace(teamName)
		teamNames = append(teamNames, teamName)

		for _, name := range strings.Split(members, memberSep) {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			players = append(players, domain.NewPlayer(teamName, name))
		}
	}

	return players, teamNames
}

// Team is one roster segment used by Format
type Team struct {
	Name    string
	Players []string
}

// Format renders teams back into the roster grammar. Separator characters in
// names are replaced with spaces so the output parses back to the same players.
func Format(teams ...Team) string {
	segments := make([]string, 0, len(teams))
	for _, t := range teams {
		names := make([]string, 0, len(t.Players))
		for _, p := range t.Players {
			if p = clean(p); p != "" {
				names = append(names, p)
			}
		}
		segments = append(segments, clean(t.Name)+nameSep+strings.Join(names, memberSep))
	}
	return strings.Join(segments, teamSep)
}

func clean(name string) string {
	return strings.TrimSpace(separators.Replace(name))
}
