// Package matchdata bootstraps rosters and quarter scores from a third-party
// match provider whose responses have no fixed schema.
package matchdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/ernie/courtside/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultSourceURLFormat links back to the provider's match page
const DefaultSourceURLFormat = "https://www.xiaoqiumi.com/m/match/detail/%d"

// Upstream is the pair of provider calls the normalizer depends on
type Upstream interface {
	FetchMatchInfo(ctx context.Context, ref MatchRef) (map[string]interface{}, error)
	FetchMatchDetail(ctx context.Context, ref MatchRef) (map[string]interface{}, error)
}

// Fetcher resolves operator input to a match and normalizes the provider's answer
type Fetcher struct {
	upstream        Upstream
	sourceTitle     string
	sourceURLFormat string
}

// NewFetcher creates a Fetcher. An empty sourceURLFormat uses the default.
func NewFetcher(upstream Upstream, sourceURLFormat string) *Fetcher {
	if sourceURLFormat == "" {
		sourceURLFormat = DefaultSourceURLFormat
	}
	return &Fetcher{
		upstream:        upstream,
		sourceTitle:     "小球迷网",
		sourceURLFormat: sourceURLFormat,
	}
}

// Fetch resolves input, issues the info and detail calls concurrently and
// joins them. It fails as a unit: if either call fails nothing is returned.
func (f *Fetcher) Fetch(ctx context.Context, input string) (domain.MatchData, error) {
	ref, err := ParseInput(input)
	if err != nil {
		return domain.MatchData{}, err
	}

	var info, detail map[string]interface{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var errInfo error
		info, errInfo = f.upstream.FetchMatchInfo(gctx, ref)
		return errInfo
	})
	g.Go(func() error {
		var errDetail error
		detail, errDetail = f.upstream.FetchMatchDetail(gctx, ref)
		return errDetail
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrUpstreamFetch) {
			err = fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
		}
		return domain.MatchData{}, fmt.Errorf("match %d: %w", ref.ID, err)
	}

	md := Normalize(info, detail)
	md.MatchID = ref.ID
	md.SportType = ref.SportType
	md.Sources = []domain.Source{{
		Title: f.sourceTitle,
		URI:   fmt.Sprintf(f.sourceURLFormat, ref.ID),
	}}
	return md, nil
}
