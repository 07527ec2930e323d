// Package console is the interactive host: a login form while logged out
// and a dashboard of commands once a session exists.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/export"
	"chemviz-client/internal/gateway"
	"chemviz-client/internal/orchestrator"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/session"

	"github.com/fatih/color"
)

const logModule = "CONSOLE"

type Screen string

const (
	ScreenLogin     Screen = "LOGIN"
	ScreenDashboard Screen = "DASHBOARD"
)

// Exporter is satisfied by *export.Trigger.
type Exporter interface {
	ExportActive(ctx context.Context, kind gateway.ExportKind, src export.ActiveSource) (*export.Result, error)
}

type Deps struct {
	Session  session.IStore
	Data     orchestrator.IOrchestrator
	Exporter Exporter
	Logger   logger.ILogger
	ChartDir string
}

type Console struct {
	session  session.IStore
	data     orchestrator.IOrchestrator
	exporter Exporter
	logger   logger.ILogger
	chartDir string
	readFile func(string) ([]byte, error)

	out    io.Writer
	title  *color.Color
	ok     *color.Color
	warn   *color.Color
	fail   *color.Color
	dimmed *color.Color
}

func New(deps Deps, out io.Writer) *Console {
	return &Console{
		session:  deps.Session,
		data:     deps.Data,
		exporter: deps.Exporter,
		logger:   deps.Logger,
		chartDir: deps.ChartDir,
		readFile: os.ReadFile,
		out:      out,
		title:    color.New(color.FgCyan, color.Bold),
		ok:       color.New(color.FgGreen),
		warn:     color.New(color.FgYellow),
		fail:     color.New(color.FgRed),
		dimmed:   color.New(color.Faint),
	}
}

// Screen is derived from the session alone: without a token the login form
// is shown.
func (c *Console) Screen() Screen {
	if c.session.IsAuthenticated() {
		return ScreenDashboard
	}
	return ScreenLogin
}

// Run reads commands from in until quit or EOF.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.title.Fprintln(c.out, "Chemical Equipment Parameter Visualizer")

	if c.Screen() == ScreenDashboard {
		c.refreshHistory(ctx)
		c.Render()
	} else {
		c.printHelp()
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(c.out, "%s> ", strings.ToLower(string(c.Screen())))
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if quit := c.Execute(ctx, scanner.Text()); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Execute runs one command line. It reports whether the user asked to quit.
// Errors are printed, never returned.
func (c *Console) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit":
		return true
	case "help":
		c.printHelp()
		return false
	}

	handlers := c.dashboardCommands()
	if c.Screen() == ScreenLogin {
		handlers = c.loginCommands()
	}

	handler, ok := handlers[name]
	if !ok {
		c.warn.Fprintf(c.out, "Unknown command %q. Type help for the list of commands.\n", name)
		return false
	}

	c.logger.Debug(logModule, "Command", map[string]interface{}{"command": name, "screen": string(c.Screen())})
	if err := handler(ctx, args); err != nil {
		c.report(ctx, err)
	}
	return false
}

// report prints err as one line. A rejected token ends the session.
func (c *Console) report(ctx context.Context, err error) {
	if apperr.IsUnauthorized(err) && c.session.IsAuthenticated() {
		c.clearSession(ctx, c.session.Clear)
		c.fail.Fprintln(c.out, "Session expired, please log in again.")
		return
	}
	if msg := apperr.Message(err); msg != "" {
		c.fail.Fprintln(c.out, msg)
	}
}

// clearSession runs fn and logs a failed storage delete. The in-memory
// session is gone either way; it reports whether the stored token went too.
func (c *Console) clearSession(ctx context.Context, fn func(context.Context) error) bool {
	if err := fn(ctx); err != nil {
		c.logger.Error(logModule, "Failed to clear stored session", map[string]interface{}{"error": err.Error()})
		return false
	}
	return true
}

func (c *Console) printHelp() {
	if c.Screen() == ScreenLogin {
		c.title.Fprintln(c.out, "Login")
		fmt.Fprintln(c.out, "  login <username> <password>      sign in")
		fmt.Fprintln(c.out, "  register <username> <password>   create an account")
		fmt.Fprintln(c.out, "  quit                             leave")
		return
	}
	c.title.Fprintln(c.out, "Dashboard")
	fmt.Fprintln(c.out, "  upload <file.csv>    upload a dataset")
	fmt.Fprintln(c.out, "  history              list recent uploads")
	fmt.Fprintln(c.out, "  select <id>          open an upload from history")
	fmt.Fprintln(c.out, "  latest               open the newest upload")
	fmt.Fprintln(c.out, "  search [term]        filter the table by name or type")
	fmt.Fprintln(c.out, "  table                show equipment records")
	fmt.Fprintln(c.out, "  summary              show summary and chart data")
	fmt.Fprintln(c.out, "  chart [dir]          write chart images")
	fmt.Fprintln(c.out, "  export pdf|excel     download the report")
	fmt.Fprintln(c.out, "  logs [level] [n]     show recent log entries")
	fmt.Fprintln(c.out, "  logout               end the session")
	fmt.Fprintln(c.out, "  quit                 leave")
}
