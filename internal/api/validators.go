package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ernie/courtside/internal/domain"
)

var validSides = map[string]int{
	"home": domain.SideHome, "0": domain.SideHome,
	"away": domain.SideAway, "1": domain.SideAway,
}

// parseID parses an ID from the URL path
func parseID(req *http.Request, param string) (int64, error) {
	return strconv.ParseInt(req.PathValue(param), 10, 64)
}

// parseLimit parses and validates a limit parameter with default and max values
func parseLimit(r *http.Request, defaultLimit, maxLimit int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLimit {
			return parsed
		}
	}
	return defaultLimit
}

// parseOffset parses and validates an offset parameter
func parseOffset(r *http.Request) int {
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return 0
}

// parseSide accepts "home"/"away" or the side index
func parseSide(s string) (int, bool) {
	side, ok := validSides[strings.ToLower(s)]
	return side, ok
}

// parseQuarter converts a 1-based quarter number to an index
func parseQuarter(s string) (int, bool) {
	q, err := strconv.Atoi(s)
	if err != nil || q < 1 || q > domain.Quarters {
		return 0, false
	}
	return q - 1, true
}
