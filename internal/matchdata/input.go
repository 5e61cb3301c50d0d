package matchdata

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSportType is basketball on the provider
const DefaultSportType = 1

// MatchRef identifies a match on the provider
type MatchRef struct {
	ID        int64
	SportType int
}

var (
	digitsRegex     = regexp.MustCompile(`^\d+$`)
	detailPathRegex = regexp.MustCompile(`(?i)/match/detail/(\d+)`)
	matchPathRegex  = regexp.MustCompile(`(?i)/match/(\d+)`)
	queryIDRegex    = regexp.MustCompile(`(?i)[?&]matchid=(\d+)`)
	longNumberRegex = regexp.MustCompile(`(\d{6,})`)
	querySportRegex = regexp.MustCompile(`(?i)[?&]sportType=(\d+)`)
)

// ParseInput extracts a match ID and sport type from a bare ID or a pasted
// link. Strategies are tried in order and the first hit wins: bare digits,
// the matchid query parameter, a match-detail path, a query string inside
// the hash fragment, then a regex scan of the raw text.
func ParseInput(input string) (MatchRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return MatchRef{}, ErrUnresolvableMatchID
	}

	if digitsRegex.MatchString(input) {
		if id, ok := parseID(input); ok {
			return MatchRef{ID: id, SportType: DefaultSportType}, nil
		}
		return MatchRef{}, ErrUnresolvableMatchID
	}

	ref := MatchRef{SportType: DefaultSportType}

	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		query := u.Query()
		hash := hashQuery(u)

		if st, ok := parseSport(query.Get("sportType")); ok {
			ref.SportType = st
		}
		if st, ok := parseSport(hash.Get("sportType")); ok {
			ref.SportType = st
		}

		if id, ok := parseID(query.Get("matchid")); ok {
			ref.ID = id
			return ref, nil
		}
		if id, ok := pathID(u.Path); ok {
			ref.ID = id
			return ref, nil
		}
		if id, ok := parseID(hash.Get("matchid")); ok {
			ref.ID = id
			return ref, nil
		}
	} else if m := querySportRegex.FindStringSubmatch(input); m != nil {
		if st, ok := parseSport(m[1]); ok {
			ref.SportType = st
		}
	}

	for _, re := range []*regexp.Regexp{queryIDRegex, matchPathRegex, longNumberRegex} {
		if m := re.FindStringSubmatch(input); m != nil {
			if id, ok := parseID(m[1]); ok {
				ref.ID = id
				return ref, nil
			}
		}
	}

	return MatchRef{}, ErrUnresolvableMatchID
}

// hashQuery parses the query string of an SPA-style fragment like "#/match?matchid=1"
func hashQuery(u *url.URL) url.Values {
	_, raw, ok := strings.Cut(u.Fragment, "?")
	if !ok {
		return url.Values{}
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return values
}

func pathID(path string) (int64, bool) {
	for _, re := range []*regexp.Regexp{detailPathRegex, matchPathRegex} {
		if m := re.FindStringSubmatch(path); m != nil {
			return parseID(m[1])
		}
	}
	return 0, false
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseSport(s string) (int, bool) {
	st, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || st <= 0 {
		return 0, false
	}
	return st, true
}
