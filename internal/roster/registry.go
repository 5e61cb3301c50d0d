package roster

import (
	"github.com/ernie/courtside/internal/domain"
)

// Registry is the player set built from the current roster text. It is
// rebuilt wholesale on every change and keeps no identity across rebuilds
// except the selected player ID.
type Registry struct {
	text      string
	players   []domain.Player
	teamNames [2]string
	selected  string
}

// NewRegistry creates a registry with fallback team names and builds it from text
func NewRegistry(text string, teamNames [2]string) *Registry {
	r := &Registry{teamNames: teamNames}
	r.Rebuild(text)
	return r
}

// Rebuild replaces the player set from text. Team names are only replaced
// when at least two team segments were found, so a half-typed edit does not
// wipe the scoreboard labels. The selection survives if its ID still exists,
// otherwise the first player (if any) is selected.
func (r *Registry) Rebuild(text string) {
	players, names := Parse(text)

	r.text = text
	r.players = players
	if len(names) >= 2 {
		r.teamNames = [2]string{names[0], names[1]}
	}

	if _, ok := r.Lookup(r.selected); !ok {
		r.selected = ""
		if len(players) > 0 {
			r.selected = players[0].ID
		}
	}
}

// Text returns the roster text the registry was built from
func (r *Registry) Text() string {
	return r.text
}

// Players returns a copy of the players in roster order
func (r *Registry) Players() []domain.Player {
	out := make([]domain.Player, len(r.players))
	copy(out, r.players)
	return out
}

// TeamNames returns the current scoreboard team labels
func (r *Registry) TeamNames() [2]string {
	return r.teamNames
}

// Teams returns the distinct team names of the players, in first-seen order
func (r *Registry) Teams() []string {
	var teams []string
	seen := make(map[string]bool)
	for _, p := range r.players {
		if !seen[p.Team] {
			seen[p.Team] = true
			teams = append(teams, p.Team)
		}
	}
	return teams
}

// Lookup finds a player by ID. With colliding IDs the first entry wins.
func (r *Registry) Lookup(id string) (domain.Player, bool) {
	if id == "" {
		return domain.Player{}, false
	}
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Player{}, false
}

// Select marks id as the selected player; it reports false if id is unknown
func (r *Registry) Select(id string) bool {
	if _, ok := r.Lookup(id); !ok {
		return false
	}
	r.selected = id
	return true
}

// Selected returns the selected player, or nil if none
func (r *Registry) Selected() *domain.Player {
	p, ok := r.Lookup(r.selected)
	if !ok {
		return nil
	}
	return &p
}

// SelectedID returns the selected player ID, empty if none
func (r *Registry) SelectedID() string {
	return r.selected
}
