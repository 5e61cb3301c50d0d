package domain

// StatType is one of the recordable event kinds
type StatType string

// StatType constants
const (
	StatFTMade   StatType = "FT_MADE"
	StatFTMiss   StatType = "FT_MISS"
	Stat2PTMade  StatType = "2PT_MADE"
	Stat2PTMiss  StatType = "2PT_MISS"
	Stat3PTMade  StatType = "3PT_MADE"
	Stat3PTMiss  StatType = "3PT_MISS"
	StatOffReb   StatType = "OFF_REB"
	StatDefReb   StatType = "DEF_REB"
	StatAssist   StatType = "ASSIST"
	StatSteal    StatType = "STEAL"
	StatBlock    StatType = "BLOCK"
	StatTurnover StatType = "TURNOVER"
	StatFoul     StatType = "FOUL"
)

// StatTypes lists every StatType in display order
var StatTypes = []StatType{
	StatFTMade, StatFTMiss,
	Stat2PTMade, Stat2PTMiss,
	Stat3PTMade, Stat3PTMiss,
	StatDefReb, StatOffReb,
	StatAssist, StatSteal,
	StatBlock, StatTurnover,
	StatFoul,
}

var statLabels = map[StatType]string{
	StatFTMade:   "罚球命中",
	StatFTMiss:   "罚球不中",
	Stat2PTMade:  "两分命中",
	Stat2PTMiss:  "两分不中",
	Stat3PTMade:  "三分命中",
	Stat3PTMiss:  "三分不中",
	StatDefReb:   "防守篮板",
	StatOffReb:   "进攻篮板",
	StatAssist:   "助攻",
	StatSteal:    "抢断",
	StatBlock:    "盖帽",
	StatTurnover: "失误",
	StatFoul:     "犯规",
}

// Valid reports whether t is a member of the closed enumeration
func (t StatType) Valid() bool {
	_, ok := statLabels[t]
	return ok
}

// Label returns the operator-facing label, or the raw value if unknown
func (t StatType) Label() string {
	if l, ok := statLabels[t]; ok {
		return l
	}
	return string(t)
}

// GameAction is one immutable recorded event. PlayerName and Team are copies
// taken at record time; later roster edits do not change them.
type GameAction struct {
	ID         string   `json:"id"`
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Team       string   `json:"team"`
	Type       StatType `json:"type"`
	Timestamp  int64    `json:"timestamp"` // unix milliseconds
}
