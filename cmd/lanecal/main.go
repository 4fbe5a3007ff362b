package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hylla/lanecal/internal/adapters/ics"
	"github.com/hylla/lanecal/internal/adapters/server"
	"github.com/hylla/lanecal/internal/adapters/server/common"
	"github.com/hylla/lanecal/internal/adapters/storage/sqlite"
	"github.com/hylla/lanecal/internal/app"
	"github.com/hylla/lanecal/internal/config"
	"github.com/hylla/lanecal/internal/domain"
	"github.com/hylla/lanecal/internal/platform"
	"github.com/hylla/lanecal/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serverRunner starts serve mode and blocks until ctx ends.
var serverRunner = server.Run

// main handles main.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("lanecal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		appName    string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("LANECAL_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("LANECAL_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = platform.DefaultAppName
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to sqlite database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "lanecal %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
		return nil
	case "", "init", "list", "export", "import", "serve":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("LANECAL_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("LANECAL_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	defaultCfg := config.Default(dbPath)
	if command == "init" {
		if err := config.Save(configPath, defaultCfg); err != nil {
			return fmt.Errorf("run init command: %w", err)
		}
		_, _ = fmt.Fprintf(stdout, "wrote config: %s\n", configPath)
		return nil
	}

	cfg, err := config.Load(configPath, defaultCfg)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, appName, devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the calendar is active.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Info("opening sqlite store", "db_path", cfg.Database.Path)
	kv, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer func() {
		if closeErr := kv.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()
	logger.Info("sqlite store ready", "db_path", cfg.Database.Path, "migrations", "ensured")

	store, err := app.OpenStore(ctx, kv, uuid.NewString, app.StoreConfig{
		Palette:       cfg.Calendar.Palette,
		SeedResources: cfg.Calendar.SeedResources,
		Logger:        logger.StoreLogger(),
	})
	if err != nil {
		logger.Error("calendar store open failed", "err", err)
		return fmt.Errorf("open calendar store: %w", err)
	}
	logger.Debug("calendar store initialized", "resources", len(store.Resources()), "events", len(store.Events()), "next_counter", store.Counter())

	switch command {
	case "":
		logger.Info("command flow start", "command", "tui")
	case "list":
		logger.Info("command flow start", "command", "list")
		if err := runList(ctx, store, kv, fs.Args()[1:], stdout); err != nil {
			logger.Error("command flow failed", "command", "list", "err", err)
			return fmt.Errorf("run list command: %w", err)
		}
		logger.Info("command flow complete", "command", "list")
		return nil
	case "export":
		logger.Info("command flow start", "command", "export")
		if err := runExport(store, fs.Args()[1:], stdout, time.Now); err != nil {
			logger.Error("command flow failed", "command", "export", "err", err)
			return fmt.Errorf("run export command: %w", err)
		}
		logger.Info("command flow complete", "command", "export")
		return nil
	case "import":
		logger.Info("command flow start", "command", "import")
		if err := runImport(ctx, store, fs.Args()[1:]); err != nil {
			logger.Error("command flow failed", "command", "import", "err", err)
			return fmt.Errorf("run import command: %w", err)
		}
		logger.Info("command flow complete", "command", "import")
		return nil
	case "serve":
		logger.Info("command flow start", "command", "serve")
		if err := runServe(ctx, store, cfg.Server, logger.StoreLogger(), fs.Args()[1:]); err != nil {
			logger.Error("command flow failed", "command", "serve", "err", err)
			return fmt.Errorf("run serve command: %w", err)
		}
		logger.Info("command flow complete", "command", "serve")
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	m := tui.NewModel(
		store,
		tui.WithContext(ctx),
		tui.WithDayWidth(cfg.Calendar.DayWidth),
		tui.WithConfirmDelete(cfg.Calendar.ConfirmDelete),
	)
	logger.Info("starting tui program loop")
	_, err = programFactory(m).Run()
	if err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// runList prints events, or the persisted storage keys, as a table.
func runList(ctx context.Context, store *app.Store, kv *sqlite.Store, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lanecal list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		monthRaw string
		showKeys bool
	)
	fs.StringVar(&monthRaw, "month", "", "only events overlapping this month (YYYY-MM)")
	fs.BoolVar(&showKeys, "keys", false, "list persisted storage keys instead of events")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse list flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected list arguments: %v", fs.Args())
	}

	if showKeys {
		keys, err := kv.Keys(ctx)
		if err != nil {
			return err
		}
		t := newListTable("Key", "Bytes", "Updated")
		for _, info := range keys {
			t.Row(info.Key, strconv.Itoa(info.Size), info.UpdatedAt.Format(time.RFC3339))
		}
		_, _ = fmt.Fprintln(stdout, t.Render())
		return nil
	}

	events := store.Snapshot(time.Now()).Events
	if monthRaw != "" {
		parsed, err := time.Parse("2006-01", strings.TrimSpace(monthRaw))
		if err != nil {
			return fmt.Errorf("parse --month %q: %w", monthRaw, err)
		}
		month := domain.MonthOf(domain.DayOf(parsed))
		filtered := events[:0]
		for _, ev := range events {
			if domain.Overlaps(ev.StartDate, ev.EndDate, month.First(), month.Last()) {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	lanes := map[string]int{}
	for _, placed := range app.AssignLanesByResource(store.Events()) {
		for _, pe := range placed {
			lanes[pe.ID] = pe.Lane
		}
	}
	t := newListTable("Resource", "Lane", "Start", "End", "Days", "Title")
	for _, ev := range events {
		resource := ev.ResourceID + " (missing)"
		if r, ok := store.Resource(ev.ResourceID); ok {
			resource = r.Name
		}
		t.Row(
			resource,
			strconv.Itoa(lanes[ev.ID]),
			ev.StartDate.String(),
			ev.EndDate.String(),
			strconv.Itoa(ev.DurationDays()),
			lipgloss.NewStyle().Foreground(lipgloss.Color(ev.Color)).Render(ev.Title),
		)
	}
	_, _ = fmt.Fprintln(stdout, t.Render())
	_, _ = fmt.Fprintf(stdout, "%d events\n", len(events))
	return nil
}

// newListTable builds the rounded table used by list output.
func newListTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// runExport runs the requested command flow.
func runExport(store *app.Store, args []string, stdout io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("lanecal export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		outPath string
		format  string
	)
	fs.StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	fs.StringVar(&format, "format", "json", "output format: json or ics")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse export flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected export arguments: %v", fs.Args())
	}

	snap := store.Snapshot(now())
	var encoded bytes.Buffer
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		raw, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot json: %w", err)
		}
		encoded.Write(raw)
		encoded.WriteByte('\n')
	case "ics":
		if err := ics.Export(&encoded, snap, now()); err != nil {
			return fmt.Errorf("encode snapshot ics: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	if outPath == "-" {
		if _, err := stdout.Write(encoded.Bytes()); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport runs the requested command flow.
func runImport(ctx context.Context, store *app.Store, args []string) error {
	fs := flag.NewFlagSet("lanecal import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var inPath string
	fs.StringVar(&inPath, "in", "", "input snapshot JSON file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse import flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected import arguments: %v", fs.Args())
	}
	if inPath == "" {
		return fmt.Errorf("--in is required")
	}

	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := store.Import(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// runServe exposes the calendar over HTTP and MCP until ctx is canceled.
func runServe(ctx context.Context, store *app.Store, cfg config.ServerConfig, logger *charmLog.Logger, args []string) error {
	fs := flag.NewFlagSet("lanecal serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bind := cfg.Bind
	apiEndpoint := cfg.APIEndpoint
	mcpEndpoint := cfg.MCPEndpoint
	fs.StringVar(&bind, "bind", bind, "listen address (host:port)")
	fs.StringVar(&apiEndpoint, "api-endpoint", apiEndpoint, "REST API mount path")
	fs.StringVar(&mcpEndpoint, "mcp-endpoint", mcpEndpoint, "MCP streamable HTTP mount path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected serve arguments: %v", fs.Args())
	}

	return serverRunner(ctx, server.Config{
		HTTPBind:      bind,
		APIEndpoint:   apiEndpoint,
		MCPEndpoint:   mcpEndpoint,
		ServerName:    "lanecal",
		ServerVersion: version,
	}, server.Dependencies{
		Calendar: common.NewCalendarAdapter(store, logger, time.Now),
		Logger:   logger,
	})
}

// firstArg handles first arg.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	fileSink       *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.fileSink = fileLogger
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// StoreLogger picks the single sink handed to the calendar store: the dev file when one is
// open, otherwise the console while it is enabled.
func (l *runtimeLogger) StoreLogger() *charmLog.Logger {
	switch {
	case l == nil:
		return nil
	case l.fileSink != nil:
		return l.fileSink
	case l.consoleEnabled:
		return l.consoleSink
	default:
		return nil
	}
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Debug(msg, keyvals...) })
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Info(msg, keyvals...) })
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Warn(msg, keyvals...) })
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.each(func(sink *charmLog.Logger) { sink.Error(msg, keyvals...) })
}

func (l *runtimeLogger) each(fn func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if l.shouldLogToSink(sink) {
			fn(sink)
		}
	}
}

// devLogFilePath resolves a workspace-local dev log file path for the current run day.
func devLogFilePath(configDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(configDir)
	if baseDir == "" {
		baseDir = ".lanecal/log"
	}
	if !filepath.IsAbs(baseDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		baseDir = filepath.Join(workspaceRootFrom(cwd), baseDir)
	}
	fileStem := sanitizeLogFileStem(appName)
	fileName := fmt.Sprintf("%s-%s.log", fileStem, now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// workspaceRootFrom resolves the nearest ancestor workspace marker for stable local log placement.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	dir := start
	for {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// hasWorkspaceMarker reports whether a directory looks like a project workspace root.
func hasWorkspaceMarker(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	stem := strings.TrimSpace(appName)
	if stem == "" {
		return platform.DefaultAppName
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem = strings.Trim(replacer.Replace(stem), "-")
	if stem == "" {
		return platform.DefaultAppName
	}
	return stem
}
