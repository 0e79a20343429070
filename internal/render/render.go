// Package render formats service records for the console.
package render

import (
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/breeze-rmm/svcctl/internal/svcquery"
)

// Options controls table rendering.
type Options struct {
	// Wide adds the image name of the backing process.
	Wide bool
	// NoColor disables state colouring even on a terminal.
	NoColor bool
	// ProcessName resolves a PID for the wide column.
	ProcessName func(pid int) string
}

var stateColors = map[svcquery.State]color.Attribute{
	svcquery.StateStopped:         color.FgRed,
	svcquery.StateStartPending:    color.FgYellow,
	svcquery.StateStopPending:     color.FgYellow,
	svcquery.StateRunning:         color.FgGreen,
	svcquery.StateContinuePending: color.FgYellow,
	svcquery.StatePausePending:    color.FgYellow,
	svcquery.StatePaused:          color.FgCyan,
}

// ServiceTable writes records as a table of name, display name, state and
// PID. A record with an unknown state code fails the whole table and nothing
// is written.
func ServiceTable(w io.Writer, records []svcquery.ServiceRecord, opts Options) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		label, err := rec.StateCode.Label()
		if err != nil {
			return err
		}
		row := []string{rec.Name, rec.DisplayName, colorize(rec.StateCode, label, opts.NoColor), strconv.Itoa(rec.ProcessID)}
		if opts.Wide {
			row = append(row, processName(rec.ProcessID, opts.ProcessName))
		}
		rows = append(rows, row)
	}

	header := []string{"Name", "Display Name", "State", "PID"}
	alignment := []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT}
	if opts.Wide {
		header = append(header, "Process")
		alignment = append(alignment, tablewriter.ALIGN_LEFT)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment(alignment)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

func colorize(state svcquery.State, label string, noColor bool) string {
	attr, ok := stateColors[state]
	if !ok {
		return label
	}
	c := color.New(attr)
	if noColor {
		c.DisableColor()
	}
	return c.Sprint(label)
}

func processName(pid int, resolve func(int) string) string {
	if pid <= 0 || resolve == nil {
		return ""
	}
	return resolve(pid)
}
