package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/themizzi/cartverify/internal/catalog"
	"github.com/themizzi/cartverify/internal/models"
	"github.com/themizzi/cartverify/internal/services"
)

var (
	passLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

// PrintReport writes one line per check followed by a summary
func PrintReport(w io.Writer, report *services.Report) {
	run := report.Run
	fmt.Fprintf(w, "Run %s (%s, %s)\n", run.ID, run.Engine, run.BaseURL)

	for _, c := range report.Checks {
		if c.Passed {
			fmt.Fprintf(w, "  %s %s (%s)\n", passLabel("PASS"), c.Name, c.Duration.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s\n", failLabel("FAIL"), c.Name, c.Message)
	}

	if run.Status == models.RunStatusAborted {
		fmt.Fprintf(w, "%s %s\n", failLabel("ABORTED"), run.Reason)
	}

	failed := len(report.Failed())
	fmt.Fprintf(w, "%d passed, %d failed in %s\n", len(report.Checks)-failed, failed, run.Duration().Round(time.Millisecond))
}

// PrintRuns writes recorded runs as a table, newest first as given
func PrintRuns(w io.Writer, runs []*models.Run, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tENGINE\tSTARTED\tDURATION\tURL")
	for _, r := range runs {
		duration := "-"
		if r.IsTerminal() {
			duration = r.Duration().Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status, r.Engine, humanize.RelTime(r.StartedAt, now, "ago", "from now"), duration, r.BaseURL)
	}
	return tw.Flush()
}

// PrintChecks writes the checks of one recorded run
func PrintChecks(w io.Writer, checks []*models.CheckResult) {
	for _, c := range checks {
		if c.Passed {
			fmt.Fprintf(w, "  %s %s\n", passLabel("PASS"), c.Name)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s\n", failLabel("FAIL"), c.Name, c.Message)
	}
}

// PrintCatalog writes the product to category mapping
func PrintCatalog(w io.Writer, cat *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tCATEGORY")
	for _, e := range cat.Entries() {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Category)
	}
	return tw.Flush()
}
