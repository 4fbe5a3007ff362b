package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/lanecal/internal/adapters/server"
	"github.com/hylla/lanecal/internal/app"
	"github.com/hylla/lanecal/internal/config"
	"github.com/hylla/lanecal/internal/domain"
	"github.com/hylla/lanecal/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("LANECAL_DEV_MODE", "false")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// scriptedProgram represents program data used to exercise model flows inside run() tests.
type scriptedProgram struct {
	model tea.Model
	runFn func(tea.Model) (tea.Model, error)
}

// Run runs scripted model interactions and returns the final state.
func (p scriptedProgram) Run() (tea.Model, error) {
	if p.runFn == nil {
		return p.model, nil
	}
	return p.runFn(p.model)
}

// applyModelMsg applies one message and any resulting command chain.
func applyModelMsg(t *testing.T, model tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	updated, cmd := model.Update(msg)
	return applyModelCmd(t, updated, cmd)
}

// applyModelCmd executes one command chain to completion (bounded for safety).
func applyModelCmd(t *testing.T, model tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	out := model
	currentCmd := cmd
	for i := 0; i < 8 && currentCmd != nil; i++ {
		msg := currentCmd()
		if _, quit := msg.(tea.QuitMsg); quit {
			break
		}
		updated, nextCmd := out.Update(msg)
		out = updated
		currentCmd = nextCmd
	}
	return out
}

func testSnapshot() app.Snapshot {
	return app.Snapshot{
		Version: app.SnapshotVersion,
		Resources: []domain.Resource{
			{ID: "r1", Name: "Crane"},
			{ID: "r2", Name: "Excavator"},
		},
		Events: []domain.Event{
			{ID: "e1", ResourceID: "r1", StartDate: domain.MustParseDay("2024-03-05"), EndDate: domain.MustParseDay("2024-03-07"), Title: "Pour slab", Color: "#3b82f6"},
			{ID: "e2", ResourceID: "r1", StartDate: domain.MustParseDay("2024-03-06"), EndDate: domain.MustParseDay("2024-03-06"), Title: "Inspection", Color: "#ef4444"},
			{ID: "e3", ResourceID: "r2", StartDate: domain.MustParseDay("2024-04-02"), EndDate: domain.MustParseDay("2024-04-03"), Title: "Trenching", Color: "#10b981"},
		},
		NextEventCounter: 4,
	}
}

func writeSnapshotFile(t *testing.T, path string, snap app.Snapshot) {
	t.Helper()
	encoded, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--version"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "lanecal") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgram verifies behavior for the covered scenario.
func TestRunStartsProgram(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })

	var started tea.Model
	programFactory = func(m tea.Model) program {
		started = m
		return fakeProgram{}
	}

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, ok := started.(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", started)
	}
}

// TestRunTUICreatesEventThroughProgram verifies a create gesture in the program persists to sqlite.
func TestRunTUICreatesEventThroughProgram(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(m tea.Model) program {
		return scriptedProgram{
			model: m,
			runFn: func(model tea.Model) (tea.Model, error) {
				model = applyModelCmd(t, model, model.Init())
				model = applyModelMsg(t, model, tea.WindowSizeMsg{Width: 120, Height: 30})
				model = applyModelMsg(t, model, tea.KeyPressMsg{Code: 'n', Text: "n"})
				return model, nil
			},
		}
	}

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(snap.Events) != 1 || snap.Events[0].Title != "Event 1" {
		t.Fatalf("expected one created event, got %#v", snap.Events)
	}
	if snap.NextEventCounter != 2 {
		t.Fatalf("expected counter 2, got %d", snap.NextEventCounter)
	}
	if len(snap.Resources) != config.Default(dbPath).Calendar.SeedResources {
		t.Fatalf("expected seeded resources, got %d", len(snap.Resources))
	}
}

// TestRunInvalidFlag verifies behavior for the covered scenario.
func TestRunInvalidFlag(t *testing.T) {
	err := run(context.Background(), []string{"--unknown-flag"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected flag parse error")
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"unknown-command"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

// TestRunExportCommandWritesSnapshot verifies behavior for the covered scenario.
func TestRunExportCommandWritesSnapshot(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	outPath := filepath.Join(tmp, "out", "snapshot.json")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--out", outPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if snap.Version != app.SnapshotVersion {
		t.Fatalf("unexpected snapshot version %q", snap.Version)
	}
	if len(snap.Events) != 0 {
		t.Fatalf("expected no events in fresh export, got %d", len(snap.Events))
	}
	if snap.NextEventCounter != 1 {
		t.Fatalf("expected counter 1, got %d", snap.NextEventCounter)
	}
}

// TestRunImportThenExportICS verifies behavior for the covered scenario.
func TestRunImportThenExportICS(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	inPath := filepath.Join(tmp, "in.json")
	writeSnapshotFile(t, inPath, testSnapshot())

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--format", "ics"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export ics) error = %v", err)
	}
	ics := out.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:Pour slab", "DTSTART", "20240305", "20240308", "CATEGORIES:Crane"} {
		if !strings.Contains(ics, want) {
			t.Fatalf("expected %q in ics output:\n%s", want, ics)
		}
	}

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export", "--format", "yaml"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

// TestRunImportErrors verifies behavior for the covered scenario.
func TestRunImportErrors(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "missing.toml")

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import error for missing --in")
	}

	badIn := filepath.Join(tmp, "bad.json")
	if err := os.WriteFile(badIn, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", badIn}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected import decode error")
	}

	snap := testSnapshot()
	snap.Events[0].ResourceID = "missing"
	orphanIn := filepath.Join(tmp, "orphan.json")
	writeSnapshotFile(t, orphanIn, snap)
	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", orphanIn}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unknown resource") {
		t.Fatalf("expected unknown resource error, got %v", err)
	}
}

// TestRunListCommand verifies behavior for the covered scenario.
func TestRunListCommand(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	inPath := filepath.Join(tmp, "in.json")
	writeSnapshotFile(t, inPath, testSnapshot())
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "import", "--in", inPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(import) error = %v", err)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "list", "--month", "2024-03"}, &out, io.Discard); err != nil {
		t.Fatalf("run(list) error = %v", err)
	}
	listing := out.String()
	for _, want := range []string{"Resource", "Crane", "Pour slab", "Inspection", "2024-03-05", "2 events"} {
		if !strings.Contains(listing, want) {
			t.Fatalf("expected %q in list output:\n%s", want, listing)
		}
	}
	if strings.Contains(listing, "Trenching") {
		t.Fatalf("expected April event filtered out:\n%s", listing)
	}

	out.Reset()
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "list", "--keys"}, &out, io.Discard); err != nil {
		t.Fatalf("run(list keys) error = %v", err)
	}
	for _, want := range []string{app.KeyResources, app.KeyEvents, app.KeyNextEventCounter} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected key %q in output:\n%s", want, out.String())
		}
	}

	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "list", "--month", "March"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected invalid month error")
	}
}

// TestRunInitWritesDefaultConfig verifies behavior for the covered scenario.
func TestRunInitWritesDefaultConfig(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "cfg", "config.toml")

	var out strings.Builder
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "init"}, &out, io.Discard); err != nil {
		t.Fatalf("run(init) error = %v", err)
	}
	if !strings.Contains(out.String(), cfgPath) {
		t.Fatalf("expected config path in output, got %q", out.String())
	}
	cfg, err := config.Load(cfgPath, config.Default("/tmp/other.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != dbPath {
		t.Fatalf("expected db path %q, got %q", dbPath, cfg.Database.Path)
	}
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "init"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected init to refuse overwriting an existing config")
	}
}

// TestRunConfigAndDBEnvOverrides verifies behavior for the covered scenario.
func TestRunConfigAndDBEnvOverrides(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "env.db")
	cfgPath := filepath.Join(tmp, "env.toml")
	cfgContent := "[database]\npath = \"/tmp/ignore-me.db\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("LANECAL_CONFIG", cfgPath)
	t.Setenv("LANECAL_DB_PATH", dbPath)

	err := run(context.Background(), []string{"export", "--out", filepath.Join(tmp, "out.json")}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run(export with env paths) error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db created at env path, stat error %v", err)
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--app", "lanecalx", "--dev", "paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "app: lanecalx") {
		t.Fatalf("expected app name in paths output, got %q", output)
	}
	if !strings.Contains(output, "dev_mode: true") {
		t.Fatalf("expected dev mode in paths output, got %q", output)
	}
	if !strings.Contains(output, "log_dir:") {
		t.Fatalf("expected log dir in paths output, got %q", output)
	}
}

// TestParseBoolEnv verifies behavior for the covered scenario.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("LANECAL_BOOL_TEST", "true")
	got, ok := parseBoolEnv("LANECAL_BOOL_TEST")
	if !ok || !got {
		t.Fatalf("expected true bool env parse, got value=%t ok=%t", got, ok)
	}

	t.Setenv("LANECAL_BOOL_TEST", "not-bool")
	_, ok = parseBoolEnv("LANECAL_BOOL_TEST")
	if ok {
		t.Fatal("expected invalid bool env to return ok=false")
	}
}

// TestRunTUIModeWritesRuntimeLogsToFileOnly verifies TUI runtime logs stay out of stderr and persist to the dev log file.
func TestRunTUIModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	workspace := t.TempDir()
	t.Chdir(workspace)

	dbPath := filepath.Join(workspace, "lanecal.db")
	cfgPath := filepath.Join(workspace, "missing.toml")
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--db", dbPath, "--config", cfgPath}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".lanecal", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		logPath = filepath.Join(logDir, entry.Name())
		break
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	logOutput := string(content)
	if !strings.Contains(logOutput, "starting tui program loop") {
		t.Fatalf("expected runtime log file to include TUI lifecycle entries, got %q", logOutput)
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies workspace-root resolution behavior.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "lanecal")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	got := workspaceRootFrom(nested)
	if filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePathNamesFileByDay verifies behavior for the covered scenario.
func TestDevLogFilePathNamesFileByDay(t *testing.T) {
	dir := t.TempDir()
	got, err := devLogFilePath(dir, "lane cal/dev", time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	want := filepath.Join(dir, "lane-cal-dev-20240305.log")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if stem := sanitizeLogFileStem(" /// "); stem != "lanecal" {
		t.Fatalf("expected fallback stem, got %q", stem)
	}
}

// TestRunRejectsInvalidLoggingLevelFromConfig verifies behavior for the covered scenario.
func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "lanecal.toml")
	cfgContent := "[logging]\nlevel = \"verbose\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected invalid logging level error")
	}
	if !strings.Contains(err.Error(), "invalid logging.level") {
		t.Fatalf("expected logging level validation error, got %v", err)
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies behavior for the covered scenario.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/lanecal.db").Logging

	logger, err := newRuntimeLogger(&console, "lanecal", false, cfg, func() time.Time {
		return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	if logger.StoreLogger() == nil {
		t.Fatal("expected console sink for store logging")
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	if logger.StoreLogger() != nil {
		t.Fatal("expected no store sink while console is muted without a dev file")
	}
	logger.SetConsoleEnabled(true)
	logger.Info("after")

	out := console.String()
	if !strings.Contains(out, "before") {
		t.Fatalf("expected console log to include 'before', got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Fatalf("expected console log to include 'after', got %q", out)
	}
}

// TestRunServeCommandMutatesStore verifies serve wiring through the composed handler.
func TestRunServeCommandMutatesStore(t *testing.T) {
	origRunner := serverRunner
	t.Cleanup(func() { serverRunner = origRunner })

	var gotCfg server.Config
	serverRunner = func(_ context.Context, cfg server.Config, deps server.Dependencies) error {
		gotCfg = cfg
		handler, _, err := server.NewHandler(cfg, deps)
		if err != nil {
			return err
		}
		resources := httptest.NewRecorder()
		handler.ServeHTTP(resources, httptest.NewRequest(http.MethodGet, "/api/v1/resources", nil))
		var listed struct {
			Resources []domain.Resource `json:"resources"`
		}
		if err := json.NewDecoder(resources.Body).Decode(&listed); err != nil {
			return err
		}
		body := `{"resource_id":"` + listed.Resources[0].ID + `","day":"2024-03-05"}`
		created := httptest.NewRecorder()
		handler.ServeHTTP(created, httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body)))
		if created.Code != http.StatusCreated {
			t.Errorf("create status = %d, body %s", created.Code, created.Body.String())
		}
		return nil
	}

	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "lanecal.db")
	cfgPath := filepath.Join(tmp, "missing.toml")
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "serve", "--bind", "127.0.0.1:9999"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run(serve) error = %v", err)
	}
	if gotCfg.HTTPBind != "127.0.0.1:9999" || gotCfg.APIEndpoint != "/api/v1" || gotCfg.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected server config %#v", gotCfg)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"--db", dbPath, "--config", cfgPath, "export"}, &out, io.Discard); err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(snap.Events) != 1 || snap.Events[0].Title != "Event 1" {
		t.Fatalf("expected served create to persist, got %#v", snap.Events)
	}
}

// TestRunServeRejectsExtraArgs verifies serve argument validation.
func TestRunServeRejectsExtraArgs(t *testing.T) {
	origRunner := serverRunner
	t.Cleanup(func() { serverRunner = origRunner })
	serverRunner = func(context.Context, server.Config, server.Dependencies) error {
		t.Fatal("server should not start")
		return nil
	}

	tmp := t.TempDir()
	err := run(context.Background(), []string{"--db", filepath.Join(tmp, "lanecal.db"), "--config", filepath.Join(tmp, "missing.toml"), "serve", "extra"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "unexpected serve arguments") {
		t.Fatalf("expected extra-arg error, got %v", err)
	}
}
