package domain

// PlayerStat holds the counters derived by replaying the log for one player
type PlayerStat struct {
	PTS  int `json:"pts"`
	REB  int `json:"reb"`
	OREB int `json:"oreb"`
	DREB int `json:"dreb"`
	AST  int `json:"ast"`
	STL  int `json:"stl"`
	BLK  int `json:"blk"`
	TOV  int `json:"tov"`
	Foul int `json:"foul"`
	FTM  int `json:"ftm"`
	FTA  int `json:"fta"`
	FG2M int `json:"fg2m"`
	FG2A int `json:"fg2a"`
	FG3M int `json:"fg3m"`
	FG3A int `json:"fg3a"`
}

// Add returns the field-wise sum of s and o
func (s PlayerStat) Add(o PlayerStat) PlayerStat {
	return PlayerStat{
		PTS:  s.PTS + o.PTS,
		REB:  s.REB + o.REB,
		OREB: s.OREB + o.OREB,
		DREB: s.DREB + o.DREB,
		AST:  s.AST + o.AST,
		STL:  s.STL + o.STL,
		BLK:  s.BLK + o.BLK,
		TOV:  s.TOV + o.TOV,
		Foul: s.Foul + o.Foul,
		FTM:  s.FTM + o.FTM,
		FTA:  s.FTA + o.FTA,
		FG2M: s.FG2M + o.FG2M,
		FG2A: s.FG2A + o.FG2A,
		FG3M: s.FG3M + o.FG3M,
		FG3A: s.FG3A + o.FG3A,
	}
}

// BoxScoreLine is one player's row in a box score
type BoxScoreLine struct {
	Player Player     `json:"player"`
	Stats  PlayerStat `json:"stats"`
}

// TeamLine is a team's aggregate row. Points is the running score derived
// from the log, independent of the scoreboard.
type TeamLine struct {
	Team   string     `json:"team"`
	Points int        `json:"points"`
	Stats  PlayerStat `json:"stats"`
}

// BoxScore groups player and team lines
type BoxScore struct {
	Players []BoxScoreLine `json:"players"`
	Teams   []TeamLine     `json:"teams"`
}
