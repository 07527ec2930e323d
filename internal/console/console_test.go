package console

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chemviz-client/internal/export"
	"chemviz-client/internal/gateway"
	"chemviz-client/internal/model"
	"chemviz-client/internal/orchestrator"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/server"
	"chemviz-client/internal/session"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	console *Console
	out     *bytes.Buffer
	store   *session.Store
	orch    *orchestrator.Orchestrator
	api     *server.Server
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	log := logger.NewIsolatedLogger(filepath.Join(dir, "client.log"))
	api := server.New("0", logger.NewNopLogger())
	api.AddFixture("plant.csv", []model.EquipmentRecord{
		{Name: "Pump-1", Type: "Pump", Flowrate: 100, Pressure: 5, Temperature: 110},
		{Name: "Valve-1", Type: "Valve", Flowrate: 50, Pressure: 4, Temperature: 100},
		{Name: "Pump-2", Type: "Pump", Flowrate: 120, Pressure: 6, Temperature: 115},
	})

	gw := gateway.NewClient("http://chemviz.test/api", log, gateway.WithTransport(api.Transport()))
	store := session.NewStore(session.NewMemoryStorage(""), gw, nil, log)
	gw.SetTokenSource(store)
	orch := orchestrator.New(gw, nil, log)
	store.OnClear(orch.Reset)

	out := &bytes.Buffer{}
	c := New(Deps{
		Session:  store,
		Data:     orch,
		Exporter: export.NewTrigger(gw, export.NewFileSaver(filepath.Join(dir, "downloads")), log),
		Logger:   log,
		ChartDir: filepath.Join(dir, "charts"),
	}, out)

	csv := filepath.Join(dir, "plant.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Equipment Name,Type,Flowrate,Pressure,Temperature\n"), 0o644))

	return &harness{console: c, out: out, store: store, orch: orch, api: api, dir: dir}
}

// run executes one line and returns what it printed.
func (h *harness) run(line string) string {
	h.out.Reset()
	h.console.Execute(context.Background(), line)
	return h.out.String()
}

func TestConsole_LoginScreenUntilAuthenticated(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ScreenLogin, h.console.Screen())

	assert.Contains(t, h.run("table"), `Unknown command "table"`)
	assert.Contains(t, h.run("login ana"), "Password is required")
	assert.Contains(t, h.run("login ana wrong"), "Invalid credentials")
	assert.Equal(t, ScreenLogin, h.console.Screen())

	out := h.run("register ana secret")
	assert.Contains(t, out, "Account ana created.")
	assert.Contains(t, out, "No uploads yet.")
	assert.Equal(t, ScreenDashboard, h.console.Screen())

	assert.Contains(t, h.run("register ana secret"), `Unknown command "register"`)
}

func TestConsole_DashboardFlowAndLogoutCascade(t *testing.T) {
	h := newHarness(t)
	h.run("register ana secret")

	out := h.run("upload " + filepath.Join(h.dir, "plant.csv"))
	assert.Contains(t, out, "File uploaded successfully")
	assert.Contains(t, out, "plant.csv")
	assert.Contains(t, out, "Total equipment:  3")
	assert.Contains(t, out, "Pump")

	out = h.run("search valve")
	assert.Contains(t, out, "Equipment (1 of 3)")
	assert.Contains(t, out, "Valve-1")
	assert.NotContains(t, out, "Pump-1")

	out = h.run("search")
	assert.Contains(t, out, "Equipment (3 of 3)")

	out = h.run("export excel")
	assert.Contains(t, out, "equipment_data_1.xlsx (Sheet1, 3 rows)")
	out = h.run("export pdf")
	assert.Contains(t, out, "equipment_report_1.pdf")
	assert.Contains(t, h.run("export csv"), `Unknown export format "csv"`)

	out = h.run("chart")
	assert.Contains(t, out, "type_distribution.png")
	assert.Contains(t, out, "average_parameters.png")

	assert.Contains(t, h.run("logs info 50"), "Export saved")

	out = h.run("logout")
	assert.Contains(t, out, "Logged out.")
	assert.Equal(t, ScreenLogin, h.console.Screen())

	snap := h.orch.Snapshot()
	assert.False(t, snap.Active.HasActive)
	assert.Nil(t, snap.Summary)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.History)
	assert.Empty(t, h.orch.FilteredRecords())

	// Logging back in shows the same server-side history but no active dataset.
	out = h.run("login ana secret")
	assert.Contains(t, out, "plant.csv")
	assert.NotContains(t, out, "Summary (upload")
	assert.False(t, h.orch.Active().HasActive)
}

func TestConsole_ErrorsAreReportedInline(t *testing.T) {
	h := newHarness(t)
	h.run("register ana secret")

	assert.Contains(t, h.run("upload"), "Please select a file")
	assert.Contains(t, h.run("upload /does/not/exist.csv"), "Cannot read /does/not/exist.csv")
	assert.Contains(t, h.run("select abc"), `Invalid upload id "abc"`)
	assert.Contains(t, h.run("select 42"), "Upload not found")
	assert.Contains(t, h.run("export pdf"), "No data loaded")
	assert.Contains(t, h.run("latest"), "No uploads yet.")
	assert.Contains(t, h.run("chart"), "Nothing to chart yet.")
}

func TestConsole_SelectAndLatest(t *testing.T) {
	h := newHarness(t)
	h.run("register ana secret")
	csv := filepath.Join(h.dir, "plant.csv")
	h.run("upload " + csv)
	h.run("upload " + csv)

	out := h.run("select 1")
	assert.Contains(t, out, "Summary (upload 1)")
	assert.Equal(t, int64(1), h.orch.Active().UploadId)

	out = h.run("latest")
	assert.Contains(t, out, "Summary (upload 2)")

	out = h.run("history")
	assert.Equal(t, 2, strings.Count(out, "plant.csv"))
}

func TestConsole_RejectedTokenEndsSession(t *testing.T) {
	h := newHarness(t)
	h.run("register ana secret")

	// Another process logged out and the token is no longer valid.
	storage := session.NewMemoryStorage("stale-token")
	stale := session.NewStore(storage, nil, nil, logger.NewNopLogger())
	require.NoError(t, stale.Init(context.Background()))
	h.console.session = stale
	gw := gateway.NewClient("http://chemviz.test/api", logger.NewNopLogger(), gateway.WithTransport(h.api.Transport()))
	gw.SetTokenSource(stale)
	h.console.data = orchestrator.New(gw, nil, logger.NewNopLogger())

	out := h.run("history")
	assert.Contains(t, out, "Session expired, please log in again.")
	assert.Equal(t, ScreenLogin, h.console.Screen())
}

func TestConsole_Run(t *testing.T) {
	h := newHarness(t)
	h.out.Reset()

	in := strings.NewReader("register ana secret\nhelp\nquit\nsummary\n")
	require.NoError(t, h.console.Run(context.Background(), in))

	out := h.out.String()
	assert.Contains(t, out, "Chemical Equipment Parameter Visualizer")
	assert.Contains(t, out, "login> ")
	assert.Contains(t, out, "dashboard> ")
	assert.Contains(t, out, "export pdf|excel")
	assert.NotContains(t, out, "No dataset selected.", "input after quit is ignored")
}

func TestConsole_RunStartsWithStoredSession(t *testing.T) {
	h := newHarness(t)
	auth, err := h.api.SeedUser(context.Background(), "ana", "secret")
	require.NoError(t, err)

	storage := session.NewMemoryStorage(auth.Token)
	gw := gateway.NewClient("http://chemviz.test/api", logger.NewNopLogger(), gateway.WithTransport(h.api.Transport()))
	store := session.NewStore(storage, gw, nil, logger.NewNopLogger())
	gw.SetTokenSource(store)
	require.NoError(t, store.Init(context.Background()))

	h.console.session = store
	h.console.data = orchestrator.New(gw, nil, logger.NewNopLogger())
	h.out.Reset()

	require.NoError(t, h.console.Run(context.Background(), strings.NewReader("")))
	assert.Contains(t, h.out.String(), "Upload history")
	assert.Contains(t, h.out.String(), "dashboard> ")
}

// stickyStorage keeps the token on disk: Delete always fails.
type stickyStorage struct {
	*session.MemoryStorage
}

func (stickyStorage) Delete(context.Context) error {
	return errors.New("read-only file system")
}

func (h *harness) useStickySession(t *testing.T, token string) {
	t.Helper()
	gw := gateway.NewClient("http://chemviz.test/api", logger.NewNopLogger(), gateway.WithTransport(h.api.Transport()))
	store := session.NewStore(stickyStorage{session.NewMemoryStorage(token)}, gw, nil, logger.NewNopLogger())
	gw.SetTokenSource(store)
	require.NoError(t, store.Init(context.Background()))
	h.console.session = store
	h.console.data = orchestrator.New(gw, nil, logger.NewNopLogger())
}

func (h *harness) errorLogs(t *testing.T) []string {
	t.Helper()
	entries, err := h.console.logger.GetLogs("ERROR", 10, 0)
	require.NoError(t, err)
	var messages []string
	for _, e := range entries {
		messages = append(messages, e.Message)
	}
	return messages
}

func TestConsole_LogoutWithStorageFailure(t *testing.T) {
	h := newHarness(t)
	auth, err := h.api.SeedUser(context.Background(), "ana", "secret")
	require.NoError(t, err)
	h.useStickySession(t, auth.Token)

	out := h.run("logout")
	assert.Contains(t, out, "Logged out, but the saved session could not be removed.")
	assert.NotContains(t, out, "Logged out.\n")
	assert.NotContains(t, out, "read-only file system")
	assert.Equal(t, ScreenLogin, h.console.Screen())
	assert.Contains(t, h.errorLogs(t), "Failed to clear stored session")
}

func TestConsole_ExpiredSessionLogsStorageFailure(t *testing.T) {
	h := newHarness(t)
	h.useStickySession(t, "stale-token")

	out := h.run("history")
	assert.Contains(t, out, "Session expired, please log in again.")
	assert.Equal(t, ScreenLogin, h.console.Screen())
	assert.Contains(t, h.errorLogs(t), "Failed to clear stored session")
}
