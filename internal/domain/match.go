package domain

// Quarters is the number of regulation periods on the scoreboard
const Quarters = 4

// Scoreboard sides
const (
	SideHome = 0
	SideAway = 1
)

// ScoreBoard is the operator-edited scoreboard. Totals, when set, override
// the sum of quarters for that side.
type ScoreBoard struct {
	TeamNames     [2]string        `json:"team_names"`
	QuarterScores [2][Quarters]int `json:"quarter_scores"`
	Totals        [2]*int          `json:"totals,omitempty"`
}

// Total returns the override for side if present, else the sum of its quarters
func (b *ScoreBoard) Total(side int) int {
	if b.Totals[side] != nil {
		return *b.Totals[side]
	}
	sum := 0
	for _, q := range b.QuarterScores[side] {
		sum += q
	}
	return sum
}

// TeamData is one side of a normalized upstream match
type TeamData struct {
	Name    string        `json:"name"`
	Scores  [Quarters]int `json:"scores"`
	Players []string      `json:"players"`
	Total   int           `json:"total"`
}

// Source is a link back to where match data came from
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// MatchData is the canonical roster and score snapshot produced by the normalizer
type MatchData struct {
	MatchID   int64    `json:"match_id"`
	SportType int      `json:"sport_type"`
	Home      TeamData `json:"home"`
	Away      TeamData `json:"away"`
	Sources   []Source `json:"sources,omitempty"`
}
