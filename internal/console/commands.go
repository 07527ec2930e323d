package console

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/gateway"
	"chemviz-client/pkg/chart"
)

type command func(ctx context.Context, args []string) error

func (c *Console) loginCommands() map[string]command {
	return map[string]command{
		"login":    c.cmdLogin,
		"register": c.cmdRegister,
	}
}

func (c *Console) dashboardCommands() map[string]command {
	return map[string]command{
		"logout":  c.cmdLogout,
		"upload":  c.cmdUpload,
		"history": c.cmdHistory,
		"select":  c.cmdSelect,
		"latest":  c.cmdLatest,
		"search":  c.cmdSearch,
		"table":   c.cmdTable,
		"summary": c.cmdSummary,
		"chart":   c.cmdChart,
		"export":  c.cmdExport,
		"logs":    c.cmdLogs,
	}
}

func credentials(args []string) (string, string) {
	var username, password string
	if len(args) > 0 {
		username = args[0]
	}
	if len(args) > 1 {
		password = args[1]
	}
	return username, password
}

func (c *Console) cmdLogin(ctx context.Context, args []string) error {
	username, password := credentials(args)
	if _, err := c.session.Login(ctx, username, password); err != nil {
		return err
	}
	c.ok.Fprintf(c.out, "Welcome, %s.\n", username)
	c.refreshHistory(ctx)
	c.Render()
	return nil
}

func (c *Console) cmdRegister(ctx context.Context, args []string) error {
	username, password := credentials(args)
	if _, err := c.session.Register(ctx, username, password); err != nil {
		return err
	}
	c.ok.Fprintf(c.out, "Account %s created.\n", username)
	c.refreshHistory(ctx)
	c.Render()
	return nil
}

func (c *Console) cmdLogout(ctx context.Context, _ []string) error {
	if !c.clearSession(ctx, c.session.Logout) {
		c.warn.Fprintln(c.out, "Logged out, but the saved session could not be removed.")
		return nil
	}
	c.ok.Fprintln(c.out, "Logged out.")
	return nil
}

func (c *Console) cmdUpload(ctx context.Context, args []string) error {
	var file *gateway.UploadFile
	if len(args) > 0 {
		path := strings.Join(args, " ")
		data, err := c.readFile(path)
		if err != nil {
			return &apperr.ValidationError{Field: "file", Message: fmt.Sprintf("Cannot read %s", path)}
		}
		file = &gateway.UploadFile{Name: filepath.Base(path), Data: data}
	}

	if _, err := c.data.SubmitUpload(ctx, file); err != nil {
		return err
	}
	c.Render()
	return nil
}

func (c *Console) cmdHistory(ctx context.Context, _ []string) error {
	if err := c.data.RefreshHistory(ctx); err != nil {
		return err
	}
	c.renderHistory(c.data.Snapshot())
	return nil
}

func (c *Console) cmdSelect(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &apperr.ValidationError{Field: "id", Message: "Usage: select <id>"}
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return &apperr.ValidationError{Field: "id", Message: fmt.Sprintf("Invalid upload id %q", args[0])}
	}
	if err := c.data.SelectHistoryEntry(ctx, id); err != nil {
		return err
	}
	c.Render()
	return nil
}

func (c *Console) cmdLatest(ctx context.Context, _ []string) error {
	loaded, err := c.data.LoadLatest(ctx)
	if err != nil {
		return err
	}
	if !loaded {
		c.warn.Fprintln(c.out, "No uploads yet.")
		return nil
	}
	c.Render()
	return nil
}

func (c *Console) cmdSearch(_ context.Context, args []string) error {
	c.data.SetSearchTerm(strings.Join(args, " "))
	c.renderTable()
	return nil
}

func (c *Console) cmdTable(_ context.Context, _ []string) error {
	c.renderTable()
	return nil
}

func (c *Console) cmdSummary(_ context.Context, _ []string) error {
	c.renderSummary(c.data.Snapshot())
	return nil
}

func (c *Console) cmdChart(_ context.Context, args []string) error {
	dir := c.chartDir
	if len(args) > 0 {
		dir = args[0]
	}
	paths, err := chart.WriteFiles(dir, c.data)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		c.warn.Fprintln(c.out, "Nothing to chart yet.")
		return nil
	}
	for _, p := range paths {
		c.ok.Fprintf(c.out, "Wrote %s\n", p)
	}
	return nil
}

func (c *Console) cmdExport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &apperr.ValidationError{Field: "kind", Message: "Usage: export pdf|excel"}
	}
	kind, ok := gateway.ParseExportKind(args[0])
	if !ok {
		return &apperr.ValidationError{Field: "kind", Message: fmt.Sprintf("Unknown export format %q", args[0])}
	}

	res, err := c.exporter.ExportActive(ctx, kind, c.data)
	if err != nil {
		return err
	}
	if res.Sheet != "" {
		c.ok.Fprintf(c.out, "Saved %s (%s, %d rows)\n", res.Path, res.Sheet, res.Rows)
	} else {
		c.ok.Fprintf(c.out, "Saved %s (%d bytes)\n", res.Path, res.Bytes)
	}
	return nil
}

func (c *Console) cmdLogs(_ context.Context, args []string) error {
	level, limit := "", 20
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil {
			limit = n
			continue
		}
		level = strings.ToUpper(a)
	}

	entries, err := c.logger.GetLogs(level, limit, 0)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.dimmed.Fprintln(c.out, "No log entries.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "%s %-5s %-12s %s\n", e.Timestamp, e.Level, e.Module, e.Message)
	}
	return nil
}

// refreshHistory loads the history after authentication. Failures are shown
// but do not block the dashboard.
func (c *Console) refreshHistory(ctx context.Context) {
	if err := c.data.RefreshHistory(ctx); err != nil {
		c.report(ctx, err)
	}
}
