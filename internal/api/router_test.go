package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ernie/courtside/internal/cache"
	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/matchdata"
	"github.com/ernie/courtside/internal/session"
	"github.com/stretchr/testify/require"
)

type memSnapshots map[int64]domain.MatchData

func (m memSnapshots) WriteSnapshot(_ context.Context, md domain.MatchData) error {
	m[md.MatchID] = md
	return nil
}

func (m memSnapshots) ReadSnapshot(_ context.Context, id int64) (domain.MatchData, error) {
	md, ok := m[id]
	if !ok {
		return domain.MatchData{}, cache.ErrMiss
	}
	return md, nil
}

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T, sess *session.Session, fetcher session.Fetcher, snapshots SnapshotReader, gateway http.Handler) *testServer {
	t.Helper()
	srv := httptest.NewServer(NewRouter(sess, fetcher, snapshots, gateway, "").Handler())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (s *testServer) do(method, path string, body interface{}) *http.Response {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, r)
	require.NoError(s.t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestScoringFlow(t *testing.T) {
	sess := session.New("A:x,y;B:z", "")
	s := newTestServer(t, sess, nil, nil, nil)

	resp := s.do(http.MethodPost, "/api/actions", map[string]string{"type": "FT_MADE"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	action := decode[domain.GameAction](t, resp)
	require.Equal(t, "A-x", action.PlayerID)

	resp = s.do(http.MethodPost, "/api/select", map[string]string{"player_id": "B-z"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/actions", map[string]string{"type": "3PT_MADE"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/actions", map[string]string{"type": "2PT_MADE", "player_id": "A-y"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	state := decode[session.State](t, s.do(http.MethodGet, "/api/state", nil))
	require.Len(t, state.History, 3)
	require.Equal(t, [2]int{3, 3}, state.RunningScores)
	require.Equal(t, "B-z", state.SelectedID)

	undo := decode[ActionResult](t, s.do(http.MethodPost, "/api/undo", nil))
	require.True(t, undo.Applied)
	require.Equal(t, "A-y", undo.Action.PlayerID)
	redo := decode[ActionResult](t, s.do(http.MethodPost, "/api/redo", nil))
	require.True(t, redo.Applied)
	require.Equal(t, undo.Action, redo.Action)
	redo = decode[ActionResult](t, s.do(http.MethodPost, "/api/redo", nil))
	require.False(t, redo.Applied)
	require.Nil(t, redo.Action)

	line := decode[domain.BoxScoreLine](t, s.do(http.MethodGet, "/api/stats/players/A-x", nil))
	require.Equal(t, 1, line.Stats.PTS)
	require.Equal(t, "x", line.Player.Name)

	box := decode[domain.BoxScore](t, s.do(http.MethodGet, "/api/stats/boxscore", nil))
	require.Len(t, box.Players, 3)
	require.Equal(t, 3, box.Teams[0].Points)

	listing := decode[struct {
		Actions []ActionEntry `json:"actions"`
		Total   int           `json:"total"`
	}](t, s.do(http.MethodGet, "/api/actions?limit=2&offset=1", nil))
	require.Equal(t, 3, listing.Total)
	require.Len(t, listing.Actions, 2)
	require.Equal(t, domain.Stat3PTMade, listing.Actions[0].Type)
	require.Equal(t, domain.Stat3PTMade.Label(), listing.Actions[0].Label)

	resp = s.do(http.MethodDelete, "/api/actions/"+action.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(http.MethodDelete, "/api/actions/"+action.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/api/actions", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Len(t, sess.History(), 2)
	resp = s.do(http.MethodDelete, "/api/actions?confirm=true", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, sess.History())
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, session.New("", ""), nil, nil, nil)

	resp := s.do(http.MethodPost, "/api/actions", map[string]string{"type": "FOUL"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, decode[map[string]string](t, resp)["error"], "no player selected")

	resp = s.do(http.MethodPost, "/api/select", map[string]string{"player_id": "A-x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/actions", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/stats/players/A-x", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/sync", map[string]string{"input": "1"})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/matches/1/snapshot", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRosterAndScoreboard(t *testing.T) {
	sess := session.New("", "")
	s := newTestServer(t, sess, nil, nil, nil)

	state := decode[session.State](t, s.do(http.MethodPut, "/api/roster", map[string]string{"text": "宏疆队：刘竞，吴维；沐骁队：张伟"}))
	require.Equal(t, [2]string{"宏疆队", "沐骁队"}, state.TeamNames)
	require.Len(t, state.Players, 3)

	resp := s.do(http.MethodPut, "/api/scoreboard/away/2", map[string]int{"value": 17})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[domain.ScoreBoard](t, resp)
	require.Equal(t, 17, board.QuarterScores[domain.SideAway][1])

	for path, body := range map[string]interface{}{
		"/api/scoreboard/left/1": map[string]int{"value": 1},
		"/api/scoreboard/home/5": map[string]int{"value": 1},
		"/api/scoreboard/home/1": map[string]int{"value": -2},
		"/api/scoreboard/0/1":    map[string]string{},
	} {
		resp := s.do(http.MethodPut, path, body)
		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "path %s", path)
	}
}

func TestExportImport(t *testing.T) {
	sess := session.New("A:x;B:z", "")
	s := newTestServer(t, sess, nil, nil, nil)
	s.do(http.MethodPost, "/api/actions", map[string]string{"type": "2PT_MADE"})
	s.do(http.MethodPost, "/api/actions", map[string]string{"type": "OFF_REB"})

	resp := s.do(http.MethodGet, "/api/export/table", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")
	table, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(table, []byte("\xef\xbb\xbf")))
	require.Contains(t, string(table), "x,A,2,1,1,0")

	resp = s.do(http.MethodGet, "/api/export/json", nil)
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	history := sess.History()

	s.do(http.MethodDelete, "/api/actions?confirm=true", nil)
	require.Empty(t, sess.History())

	resp = s.do(http.MethodPost, "/api/import", string(exported))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]int{"imported": 2}, decode[map[string]int](t, resp))
	require.Equal(t, history, sess.History())

	resp = s.do(http.MethodPost, "/api/import", "{}")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, history, sess.History())
}

func TestGzip(t *testing.T) {
	sess := session.New("A:x;B:z", "")
	s := newTestServer(t, sess, nil, nil, nil)
	for i := 0; i < 40; i++ {
		s.do(http.MethodPost, "/api/actions", map[string]string{"type": "ASSIST"})
	}

	req, err := http.NewRequest(http.MethodGet, s.srv.URL+"/api/export/json", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Contains(t, string(data), `"ASSIST"`)
}

func TestSyncThroughGateway(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case matchdata.MatchInfoPath:
			_, _ = w.Write([]byte(`{"data": {"homeTeamName": "宏疆队", "awayTeamName": "沐骁队"}}`))
		case matchdata.MatchDetailPath:
			_, _ = w.Write([]byte(`{"data": {"modeData": [
				{"homePlayers": [{"playerName": "刘竞"}], "awayPlayers": [{"playerName": "张伟"}]},
				{"sectionList": [{"homeList": [0, 26, 34, 30, 30, 0, 120], "awayList": [0, 30, 25, 31, 30, 0, 116]}]}
			]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(provider.Close)

	gateway, err := NewGateway(GatewayConfig{Target: provider.URL})
	require.NoError(t, err)
	gatewaySrv := httptest.NewServer(gateway)
	t.Cleanup(gatewaySrv.Close)

	snapshots := memSnapshots{}
	sess := session.New("A:x;B:z", "", session.WithSnapshotWriter(snapshots))
	fetcher := matchdata.NewFetcher(matchdata.NewClient(gatewaySrv.URL), "")
	s := newTestServer(t, sess, fetcher, snapshots, gateway)

	resp := s.do(http.MethodPost, "/api/sync", map[string]string{"input": "https://www.xiaoqiumi.com/m/match/detail/400302960"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	md := decode[domain.MatchData](t, resp)
	require.Equal(t, int64(400302960), md.MatchID)

	state := sess.State()
	require.Equal(t, "宏疆队:刘竞;沐骁队:张伟", state.RosterText)
	require.Equal(t, [2]int{120, 116}, state.Totals)

	cached := decode[domain.MatchData](t, s.do(http.MethodGet, "/api/matches/400302960/snapshot", nil))
	require.Equal(t, md.Home, cached.Home)
	resp = s.do(http.MethodGet, "/api/matches/5/snapshot", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Stored input is reused when the body omits it
	resp = s.do(http.MethodPost, "/api/sync", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/sync", map[string]string{"input": "no id"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	provider.Close()
	resp = s.do(http.MethodPost, "/api/sync", map[string]string{"input": "400302960"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, "宏疆队:刘竞;沐骁队:张伟", sess.State().RosterText)
}

func TestStaticWithGateway(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>courtside</html>"), 0o644))

	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("gateway " + r.Method + " " + r.URL.Path))
	})
	srv := httptest.NewServer(NewRouter(session.New("A:x;B:z", ""), nil, nil, gateway, staticDir))
	t.Cleanup(srv.Close)

	body := func(resp *http.Response, err error) string {
		t.Helper()
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(data)
	}

	require.Contains(t, body(http.Get(srv.URL+"/")), "courtside")
	require.Contains(t, body(http.Get(srv.URL+"/match/400302960")), "courtside")
	require.Equal(t, "gateway POST "+matchdata.MatchInfoPath,
		body(http.Post(srv.URL+"/api/proxy"+matchdata.MatchInfoPath, "application/json", strings.NewReader("{}"))))
	require.Equal(t, "gateway GET /ping", body(http.Get(srv.URL+"/api/proxy/ping")))
	require.Contains(t, body(http.Get(srv.URL+"/health")), "ok")
}
