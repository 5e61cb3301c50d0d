package domain

// Player is one roster entry. ID is derived from team and name, so two
// entries with the same team and name share an ID and are indistinguishable
// in the log and in aggregates.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team string `json:"team"`
}

// PlayerID builds the join key used by actions and aggregates
func PlayerID(team, name string) string {
	return team + "-" + name
}

// NewPlayer creates a player with its derived ID
func NewPlayer(team, name string) Player {
	return Player{ID: PlayerID(team, name), Name: name, Team: team}
}
