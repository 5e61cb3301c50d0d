package export

import (
	"encoding/json"
	"fmt"

	"github.com/ernie/courtside/internal/actionlog"
	"github.com/ernie/courtside/internal/domain"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidImportShape is returned when imported JSON is not an action list
var ErrInvalidImportShape = actionlog.ErrInvalidImportShape

// ToJSON serializes history in its current order (most recent first)
func ToJSON(history []domain.GameAction) ([]byte, error) {
	if history == nil {
		history = []domain.GameAction{}
	}
	return json.MarshalIndent(history, "", "  ")
}

// importedAction uses pointers so missing fields can be told apart from zero values
type importedAction struct {
	ID         *string          `json:"id"`
	PlayerID   *string          `json:"playerId"`
	PlayerName *string          `json:"playerName"`
	Team       *string          `json:"team"`
	Type       *domain.StatType `json:"type"`
	Timestamp  *int64           `json:"timestamp"`
}

// FromJSON parses an exported action list. The value must be a JSON array of
// action records with every field present and a known type; a leading
// byte-order mark is ignored. The result is never nil on success.
func FromJSON(data []byte) ([]domain.GameAction, error) {
	data, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImportShape, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImportShape, err)
	}
	if raw == nil {
		// "null" decodes into a nil slice without error
		return nil, ErrInvalidImportShape
	}

	actions := make([]domain.GameAction, 0, len(raw))
	for i, r := range raw {
		var a importedAction
		if err := json.Unmarshal(r, &a); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidImportShape, i, err)
		}
		if a.ID == nil || a.PlayerID == nil || a.PlayerName == nil || a.Team == nil || a.Type == nil || a.Timestamp == nil {
			return nil, fmt.Errorf("%w: entry %d: missing field", ErrInvalidImportShape, i)
		}
		if *a.ID == "" || *a.PlayerID == "" || !a.Type.Valid() {
			return nil, fmt.Errorf("%w: entry %d: invalid id or type", ErrInvalidImportShape, i)
		}
		actions = append(actions, domain.GameAction{
			ID:         *a.ID,
			PlayerID:   *a.PlayerID,
			PlayerName: *a.PlayerName,
			Team:       *a.Team,
			Type:       *a.Type,
			Timestamp:  *a.Timestamp,
		})
	}
	return actions, nil
}
