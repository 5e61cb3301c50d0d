// courtside - live basketball scoring and box scores
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ernie/courtside/internal/api"
	"github.com/ernie/courtside/internal/cache"
	"github.com/ernie/courtside/internal/config"
	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/logging"
	"github.com/ernie/courtside/internal/matchdata"
	"github.com/ernie/courtside/internal/notify"
	"github.com/ernie/courtside/internal/session"
	"github.com/ernie/courtside/internal/storage"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

var version = "dev"

const defaultConfigPath = "/etc/courtside/config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "roster":
		cmdRoster(os.Args[2:])
	case "select":
		cmdSelect(os.Args[2:])
	case "record":
		cmdRecord(os.Args[2:])
	case "actions":
		cmdActions(os.Args[2:])
	case "undo":
		cmdUndoRedo("undo", os.Args[2:])
	case "redo":
		cmdUndoRedo("redo", os.Args[2:])
	case "remove":
		cmdRemove(os.Args[2:])
	case "clear":
		cmdClear(os.Args[2:])
	case "stats":
		cmdStats(os.Args[2:])
	case "score":
		cmdScore(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "sync":
		cmdSync(os.Args[2:])
	case "version":
		fmt.Printf("courtside %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: courtside <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                               Start the scoring server")
	fmt.Println("  roster [text]                       Show the roster, or replace it with text")
	fmt.Println("  select <player-id>                  Select the player subsequent records apply to")
	fmt.Println("  record <type> [player-id]           Record a stat for a player (default: selected)")
	fmt.Println("  actions [--recent N]                Show recent actions (default: 20)")
	fmt.Println("  undo                                Undo the most recent action")
	fmt.Println("  redo                                Redo the most recently undone action")
	fmt.Println("  remove <action-id>                  Strike one action from the log")
	fmt.Println("  clear [--yes]                       Clear the action log")
	fmt.Println("  stats [--player ID]                 Show the box score, or one player's line")
	fmt.Println("  score <home|away> <quarter> <value> Set a quarter score on the scoreboard")
	fmt.Println("  export [--format table|json] [--out FILE]")
	fmt.Println("                                      Export the box score or the action log")
	fmt.Println("  import [--yes] <file>               Replace the action log with a JSON export")
	fmt.Println("  sync [input]                        Load rosters and scores for a match id or URL")
	fmt.Println("  version                             Show version")
	fmt.Println("  help                                Show this help")
	fmt.Println()
	fmt.Println("Stat types:")
	for _, t := range domain.StatTypes {
		fmt.Printf("  %-10s %s\n", t, t.Label())
	}
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  --config <path>    Path to configuration file (default /etc/courtside/config.yml)")
	fmt.Println("  --url <url>        Base URL of the courtside server (default: derived from config)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  courtside serve --config /etc/courtside/config.yml")
	fmt.Println("  courtside roster '宏疆队:刘竞,吴维;沐骁队:张伟'")
	fmt.Println("  courtside record 3PT_MADE 宏疆队-刘竞")
	fmt.Println("  courtside sync https://www.xiaoqiumi.com/m/match?matchid=400302960")
	fmt.Println("  courtside export --format table --out boxscore.csv")
}

// cmdServe starts the scoring server
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	// Determine config path
	cfgPath := *configPath
	if cfgPath == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			cfgPath = defaultConfigPath
		} else {
			fmt.Fprintf(os.Stderr, "No config file found at %s. Use --config to specify a config file.\n", defaultConfigPath)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	closeLog := logging.MustCreateLogger(cfg.Log.Level, cfg.Log.File)
	defer closeLog()

	slog.Info("Courtside starting", slog.String("version", version))

	// Initialize storage
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		fatal("Failed to initialize database", err)
	}
	defer store.Close()
	slog.Info("Database initialized", slog.String("path", cfg.Database.Path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rosterText, err := store.GetSettingOr(ctx, storage.KeyRosterText, cfg.Defaults.Roster)
	if err != nil {
		fatal("Failed to read roster text", err)
	}
	matchInput, err := store.GetSettingOr(ctx, storage.KeyMatchInput, cfg.Defaults.MatchInput)
	if err != nil {
		fatal("Failed to read match input", err)
	}

	opts := []session.Option{session.WithSettings(store)}

	// Event feed
	natsURL := cfg.Events.NATSURL
	if cfg.Events.Embedded {
		port := cfg.Events.EmbeddedPort
		if port == 0 {
			port = 4222
		}
		ns, err := notify.StartEmbedded(cfg.Server.ListenAddr, port)
		if err != nil {
			fatal("Failed to start embedded NATS server", err)
		}
		defer ns.Shutdown()
		natsURL = ns.ClientURL()
		slog.Info("Embedded NATS server started", slog.String("url", natsURL))
	}
	if natsURL != "" {
		publisher, err := notify.Connect(natsURL, cfg.Events.SubjectPrefix)
		if err != nil {
			slog.Warn("Event feed disabled", logging.ErrAttr(err))
		} else {
			defer publisher.Close()
			opts = append(opts, session.WithPublisher(publisher))
			slog.Info("Publishing events", slog.String("url", natsURL), slog.String("prefix", cfg.Events.SubjectPrefix))
		}
	}

	// Snapshot cache
	var snapshots api.SnapshotReader
	if cfg.Cache.RedisAddr != "" {
		writer := cache.NewRedisWriter(redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}), cfg.Cache.TTL)
		if err := writer.Ping(ctx); err != nil {
			slog.Warn("Snapshot cache disabled", slog.String("addr", cfg.Cache.RedisAddr), logging.ErrAttr(err))
			writer.Close()
		} else {
			defer writer.Close()
			snapshots = writer
			opts = append(opts, session.WithSnapshotWriter(writer))
			slog.Info("Connected to Redis", slog.String("addr", cfg.Cache.RedisAddr))
		}
	}

	// Match data provider
	gateway, err := api.NewGateway(api.GatewayConfig{
		Target:             cfg.Upstream.GatewayURL,
		Referer:            cfg.Upstream.Referer,
		Origin:             cfg.Upstream.Origin,
		InsecureSkipVerify: cfg.Upstream.InsecureSkipVerify,
		Timeout:            cfg.Upstream.Timeout,
	})
	if err != nil {
		fatal("Failed to create gateway", err)
	}
	clientOpts := []matchdata.ClientOption{
		matchdata.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		matchdata.WithHeaders(cfg.Upstream.Headers),
	}
	if cfg.Upstream.DetailTabID != "" {
		clientOpts = append(clientOpts, matchdata.WithDetailTabID(cfg.Upstream.DetailTabID))
	}
	fetcher := matchdata.NewFetcher(matchdata.NewClient(cfg.Upstream.BaseURL, clientOpts...), cfg.Upstream.SourceURLFormat)

	sess := session.New(rosterText, matchInput, opts...)
	router := api.NewRouter(sess, fetcher, snapshots, gateway, cfg.Server.StaticDir)
	if cfg.Server.StaticDir != "" {
		slog.Info("Serving static files", slog.String("dir", cfg.Server.StaticDir))
	}

	// Start HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", addr), slog.String("upstream", cfg.Upstream.BaseURL))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for signal or error
	select {
	case sig := <-sigCh:
		slog.Info("Shutting down", slog.String("signal", sig.String()))
	case err := <-serverErr:
		fatal("HTTP server error", err)
	}

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := server.Shutdown(httpCtx); err != nil {
		slog.Error("HTTP server shutdown error", logging.ErrAttr(err))
	}

	cancel()
	slog.Info("Shutdown complete")
}

func fatal(msg string, err error) {
	slog.Error(msg, logging.ErrAttr(err))
	os.Exit(1)
}

// CLI helper variables
var baseURL = "http://localhost:8080"

// cliFlags returns a flag set carrying the global --config and --url options
func cliFlags(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	url := fs.String("url", "", "base URL of the courtside server")
	return fs, configPath, url
}

// loadCLIConfigFromFlags derives the server URL from config unless --url is given
func loadCLIConfigFromFlags(configPath, url string) {
	if url != "" {
		baseURL = url
		return
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		// Fall back to the default URL; only warn if a config was expected
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config from %s: %v\n", configPath, err)
		}
		return
	}
	baseURL = fmt.Sprintf("http://%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getJSON(path string, target interface{}) error {
	return doJSON(http.MethodGet, path, nil, target)
}

// doJSON sends body as JSON and decodes the response into target when non-nil
func doJSON(method, path string, body, target interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	return doRaw(method, path, "application/json", reader, target)
}

func doRaw(method, path, contentType string, body io.Reader, target interface{}) error {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(data))
	}

	if target == nil {
		return nil
	}
	if w, ok := target.(io.Writer); ok {
		_, err = io.Copy(w, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// confirm asks a yes/no question on an interactive terminal. Without a
// terminal it refuses, so scripts must pass --yes explicitly.
func confirm(prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Refusing without confirmation; pass --yes when not running interactively")
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func cmdRoster(args []string) {
	fs, configPath, url := cliFlags("roster")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	var state session.State
	if fs.NArg() > 0 {
		exitOnError(doJSON(http.MethodPut, "/api/roster", map[string]string{"text": strings.Join(fs.Args(), " ")}, &state))
	} else {
		exitOnError(getJSON("/api/state", &state))
	}

	fmt.Printf("Roster: %s\n", state.RosterText)
	fmt.Printf("Teams:  %s vs %s\n\n", state.TeamNames[0], state.TeamNames[1])

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTEAM\tNAME\tSELECTED")
	fmt.Fprintln(w, "--\t----\t----\t--------")
	for _, p := range state.Players {
		selected := ""
		if p.ID == state.SelectedID {
			selected = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Team, p.Name, selected)
	}
	w.Flush()
}

func cmdSelect(args []string) {
	fs, configPath, url := cliFlags("select")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	if fs.NArg() < 1 {
		exitOnError(fmt.Errorf("usage: courtside select <player-id>"))
	}
	exitOnError(doJSON(http.MethodPost, "/api/select", map[string]string{"player_id": fs.Arg(0)}, nil))
	fmt.Printf("Selected %s\n", fs.Arg(0))
}

func cmdRecord(args []string) {
	fs, configPath, url := cliFlags("record")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	if fs.NArg() < 1 {
		exitOnError(fmt.Errorf("usage: courtside record <type> [player-id]"))
	}
	body := map[string]string{"type": strings.ToUpper(fs.Arg(0))}
	if fs.NArg() > 1 {
		body["player_id"] = fs.Arg(1)
	}

	var action domain.GameAction
	exitOnError(doJSON(http.MethodPost, "/api/actions", body, &action))
	fmt.Printf("%s %s (%s) %s\n", action.ID, action.PlayerName, action.Team, action.Type.Label())
}

func cmdActions(args []string) {
	fs, configPath, url := cliFlags("actions")
	limit := fs.Int("recent", 20, "number of recent actions to show")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	var response struct {
		Actions []api.ActionEntry `json:"actions"`
		Total   int               `json:"total"`
	}
	exitOnError(getJSON(fmt.Sprintf("/api/actions?limit=%d", *limit), &response))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTEAM\tPLAYER\tACTION\tID")
	fmt.Fprintln(w, "----\t----\t------\t------\t--")
	for _, a := range response.Actions {
		ts := time.UnixMilli(a.Timestamp).Format("15:04:05")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ts, a.Team, a.PlayerName, a.Label, a.ID)
	}
	w.Flush()
	fmt.Printf("\n%d of %d actions\n", len(response.Actions), response.Total)
}

func cmdUndoRedo(op string, args []string) {
	fs, configPath, url := cliFlags(op)
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	var result api.ActionResult
	exitOnError(doJSON(http.MethodPost, "/api/"+op, nil, &result))
	if !result.Applied {
		fmt.Printf("Nothing to %s\n", op)
		return
	}
	a := result.Action
	fmt.Printf("%s: %s (%s) %s\n", op, a.PlayerName, a.Team, a.Type.Label())
}

func cmdRemove(args []string) {
	fs, configPath, url := cliFlags("remove")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	if fs.NArg() < 1 {
		exitOnError(fmt.Errorf("usage: courtside remove <action-id>"))
	}
	var action domain.GameAction
	exitOnError(doJSON(http.MethodDelete, "/api/actions/"+fs.Arg(0), nil, &action))
	fmt.Printf("Removed %s (%s) %s\n", action.PlayerName, action.Team, action.Type.Label())
}

func cmdClear(args []string) {
	fs, configPath, url := cliFlags("clear")
	yes := fs.Bool("yes", false, "skip confirmation")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	if !*yes && !confirm("Clear every recorded action?") {
		os.Exit(1)
	}
	exitOnError(doJSON(http.MethodDelete, "/api/actions?confirm=true", nil, nil))
	fmt.Println("Action log cleared")
}

func cmdStats(args []string) {
	fs, configPath, url := cliFlags("stats")
	playerID := fs.String("player", "", "show a single player")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	var lines []domain.BoxScoreLine
	var teams []domain.TeamLine
	if *playerID != "" {
		var line domain.BoxScoreLine
		exitOnError(getJSON("/api/stats/players/"+*playerID, &line))
		lines = append(lines, line)
	} else {
		var box domain.BoxScore
		exitOnError(getJSON("/api/stats/boxscore", &box))
		lines, teams = box.Players, box.Teams
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tTEAM\tPTS\tREB\tOREB\tDREB\tAST\tSTL\tBLK\tTOV\tPF\tFT\t2P\t3P")
	for _, l := range lines {
		printStatRow(w, l.Player.Name, l.Player.Team, l.Stats)
	}
	for _, t := range teams {
		printStatRow(w, "TEAM", t.Team, t.Stats)
	}
	w.Flush()
}

func printStatRow(w io.Writer, name, team string, s domain.PlayerStat) {
	fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d-%d\t%d-%d\t%d-%d\n",
		name, team, s.PTS, s.REB, s.OREB, s.DREB, s.AST, s.STL, s.BLK, s.TOV, s.Foul,
		s.FTM, s.FTA, s.FG2M, s.FG2A, s.FG3M, s.FG3A)
}

func cmdScore(args []string) {
	fs, configPath, url := cliFlags("score")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	if fs.NArg() < 3 {
		exitOnError(fmt.Errorf("usage: courtside score <home|away> <quarter> <value>"))
	}
	value, err := strconv.Atoi(fs.Arg(2))
	if err != nil {
		exitOnError(fmt.Errorf("invalid value %q", fs.Arg(2)))
	}

	var board domain.ScoreBoard
	exitOnError(doJSON(http.MethodPut, fmt.Sprintf("/api/scoreboard/%s/%s", fs.Arg(0), fs.Arg(1)), map[string]int{"value": value}, &board))
	printScoreBoard(board)
}

func printScoreBoard(board domain.ScoreBoard) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEAM\tQ1\tQ2\tQ3\tQ4\tTOTAL")
	for side := range board.TeamNames {
		q := board.QuarterScores[side]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", board.TeamNames[side], q[0], q[1], q[2], q[3], board.Total(side))
	}
	w.Flush()
}

func cmdExport(args []string) {
	fs, configPath, url := cliFlags("export")
	format := fs.String("format", "table", "export format: table or json")
	out := fs.String("out", "", "write to file instead of stdout")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	if *format != "table" && *format != "json" {
		exitOnError(fmt.Errorf("unknown format %q (use: table, json)", *format))
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		exitOnError(err)
		defer f.Close()
		w = f
	}
	exitOnError(doRaw(http.MethodGet, "/api/export/"+*format, "", nil, w))
}

func cmdImport(args []string) {
	fs, configPath, url := cliFlags("import")
	yes := fs.Bool("yes", false, "skip confirmation")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	if fs.NArg() < 1 {
		exitOnError(fmt.Errorf("usage: courtside import [--yes] <file>"))
	}
	data, err := os.ReadFile(fs.Arg(0))
	exitOnError(err)

	if !*yes && !confirm("Replace the current action log with "+fs.Arg(0)+"?") {
		os.Exit(1)
	}

	var result map[string]int
	exitOnError(doRaw(http.MethodPost, "/api/import", "application/json", bytes.NewReader(data), &result))
	fmt.Printf("Imported %d actions\n", result["imported"])
}

func cmdSync(args []string) {
	fs, configPath, url := cliFlags("sync")
	fs.Parse(args)
	loadCLIConfigFromFlags(*configPath, *url)

	var md domain.MatchData
	exitOnError(doJSON(http.MethodPost, "/api/sync", map[string]string{"input": strings.Join(fs.Args(), " ")}, &md))

	fmt.Printf("Match %d: %s vs %s\n", md.MatchID, md.Home.Name, md.Away.Name)
	for _, src := range md.Sources {
		fmt.Printf("Source: %s %s\n", src.Title, src.URI)
	}
	fmt.Println()

	var state session.State
	exitOnError(getJSON("/api/state", &state))
	printScoreBoard(state.ScoreBoard)
	fmt.Printf("\nRoster: %s\n", state.RosterText)
}
