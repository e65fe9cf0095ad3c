package ec2

import (
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

const notAvailable = "N/A"

var tableHeader = []string{"NAME", "INSTANCE ID", "STATE", "TYPE", "PUBLIC IP", "PRIVATE IP", "LAUNCH TIME"}

// WriteInstanceTable writes instances to w as a bordered grid, one row per
// instance with a rule between rows. Missing values are shown as N/A.
func WriteInstanceTable(w io.Writer, instances []Instance) error {
	rows := make([][]string, 0, len(instances))
	for _, in := range instances {
		launched := notAvailable
		if !in.LaunchTime.IsZero() {
			launched = in.LaunchTime.UTC().Format(time.DateTime)
		}
		rows = append(rows, []string{
			orNA(in.Name),
			in.ID,
			string(in.State),
			in.Type,
			orNA(in.PublicIP),
			orNA(in.PrivateIP),
			launched,
		})
	}

	ew := &errWriter{w: w}
	table := newGrid(ew, tableHeader)
	table.AppendBulk(rows)
	table.Render()
	return ew.err
}

// newGrid returns a table that renders as a fully ruled grid with left-aligned,
// unwrapped cells and the header as given.
func newGrid(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)
	return table
}

// errWriter keeps the first write error; Render does not report one.
type errWriter struct {
	w   io.Writer
	err error
}

func (c *errWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.err = err
	return n, err
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
