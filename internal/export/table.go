// Package export serializes the action log and box score for download and
// reads a JSON action log back in.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/stats"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TableHeader is the fixed column order of the tabular export
var TableHeader = []string{
	"姓名", "球队", "得分", "篮板", "进攻篮板", "防守篮板",
	"助攻", "抢断", "盖帽", "失误", "犯规",
	"罚球", "两分", "三分",
}

// WriteTable writes one CSV row per player, prefixed with a UTF-8 byte-order
// mark so spreadsheet tools detect the encoding
func WriteTable(w io.Writer, players []domain.Player, history []domain.GameAction) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(TableHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, line := range stats.BoxScore(players, history).Players {
		if err := cw.Write(tableRow(line)); err != nil {
			return fmt.Errorf("writing row for %s: %w", line.Player.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Close()
}

func tableRow(line domain.BoxScoreLine) []string {
	s := line.Stats
	return []string{
		line.Player.Name,
		line.Player.Team,
		strconv.Itoa(s.PTS),
		strconv.Itoa(s.REB),
		strconv.Itoa(s.OREB),
		strconv.Itoa(s.DREB),
		strconv.Itoa(s.AST),
		strconv.Itoa(s.STL),
		strconv.Itoa(s.BLK),
		strconv.Itoa(s.TOV),
		strconv.Itoa(s.Foul),
		split(s.FTM, s.FTA),
		split(s.FG2M, s.FG2A),
		split(s.FG3M, s.FG3A),
	}
}

// split formats a shooting split as "made-attempted"
func split(made, attempted int) string {
	return fmt.Sprintf("%d-%d", made, attempted)
}
