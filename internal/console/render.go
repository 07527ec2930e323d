package console

import (
	"fmt"
	"text/tabwriter"

	"chemviz-client/internal/orchestrator"
)

// Render prints the dashboard for the current state.
func (c *Console) Render() {
	if c.Screen() != ScreenDashboard {
		c.printHelp()
		return
	}

	snap := c.data.Snapshot()
	c.renderStatus(snap)
	c.renderHistory(snap)
	if snap.Active.HasActive {
		c.renderSummary(snap)
	}
}

func (c *Console) renderStatus(snap orchestrator.Snapshot) {
	switch snap.Status {
	case orchestrator.StatusError:
		c.fail.Fprintf(c.out, "[%s] %s\n", snap.Status, snap.Message)
	case orchestrator.StatusReady:
		if snap.Message != "" {
			c.ok.Fprintf(c.out, "[%s] %s\n", snap.Status, snap.Message)
		}
	default:
		if snap.Message != "" {
			c.warn.Fprintf(c.out, "[%s] %s\n", snap.Status, snap.Message)
		}
	}
}

func (c *Console) renderHistory(snap orchestrator.Snapshot) {
	c.title.Fprintln(c.out, "Upload history")
	if len(snap.History) == 0 {
		c.dimmed.Fprintln(c.out, "  No uploads yet.")
		return
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  \tID\tFILE\tUPLOADED\tITEMS")
	for _, h := range snap.History {
		marker := " "
		if snap.Active.HasActive && snap.Active.UploadId == h.Id {
			marker = "*"
		}
		fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%d\n", marker, h.Id, h.Filename, h.UploadedAt.Local().Format("2006-01-02 15:04"), h.TotalCount)
	}
	_ = tw.Flush()
}

func (c *Console) renderSummary(snap orchestrator.Snapshot) {
	if snap.Summary == nil {
		c.dimmed.Fprintln(c.out, "No dataset selected.")
		return
	}

	s := snap.Summary
	c.title.Fprintf(c.out, "Summary (upload %d)\n", snap.Active.UploadId)
	fmt.Fprintf(c.out, "  Total equipment:  %d\n", s.TotalCount)
	fmt.Fprintf(c.out, "  Avg flowrate:     %.2f\n", s.AvgFlowrate)
	fmt.Fprintf(c.out, "  Avg pressure:     %.2f\n", s.AvgPressure)
	fmt.Fprintf(c.out, "  Avg temperature:  %.2f\n", s.AvgTemperature)

	if pie, ok := c.data.PieSeries(); ok {
		c.title.Fprintln(c.out, "Type distribution")
		for i, label := range pie.Labels {
			fmt.Fprintf(c.out, "  %-16s %d\n", label, pie.Values[i])
		}
	}
	if !snap.RecordsLoaded {
		c.dimmed.Fprintln(c.out, "Equipment records not loaded.")
	}
}

func (c *Console) renderTable() {
	snap := c.data.Snapshot()
	if !snap.Active.HasActive {
		c.dimmed.Fprintln(c.out, "No dataset selected.")
		return
	}

	records := c.data.FilteredRecords()
	c.title.Fprintf(c.out, "Equipment (%d of %d)", len(records), len(snap.Records))
	if snap.SearchTerm != "" {
		c.title.Fprintf(c.out, " matching %q", snap.SearchTerm)
	}
	fmt.Fprintln(c.out)

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tTYPE\tFLOWRATE\tPRESSURE\tTEMPERATURE")
	for _, r := range records {
		fmt.Fprintf(tw, "  %s\t%s\t%.2f\t%.2f\t%.2f\n", r.Name, r.Type, r.Flowrate, r.Pressure, r.Temperature)
	}
	_ = tw.Flush()
}
