package release

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSummary renders one row per artifact.
func WriteSummary(w io.Writer, artifacts []*Artifact) error {
	tbl := tablewriter.NewTable(
		w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders:  tw.BorderNone,
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.On}},
		})),
	)
	tbl.Header([]string{"Platform", "Archive", "Size", "SHA256"})

	rows := make([][]any, 0, len(artifacts))
	for _, a := range artifacts {
		rows = append(rows, []any{a.Platform, filepath.Base(a.Path), humanSize(a.Size), a.SHA256})
	}

	if err := tbl.Bulk(rows); err != nil {
		return err
	}

	return tbl.Render()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
