package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/changetree/internal/datasource"
	"github.com/vanderheijden86/changetree/pkg/ui"
)

func newSnapshotsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots <database>",
		Short: "List the exports stored in a SQLite snapshot database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSnapshots(cmd.OutOrStdout(), a.cfg.ResolveReport(args[0]))
		},
	}
}

func (a *app) runSnapshots(w io.Writer, path string) error {
	source, err := datasource.DetectSource(path)
	if err != nil {
		return err
	}
	reader, err := datasource.NewSQLiteReader(source)
	if err != nil {
		return err
	}
	defer reader.Close()

	snaps, err := reader.Snapshots()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("%s: %w", path, datasource.ErrNoSnapshot)
	}
	for _, s := range snaps {
		if err := writeLine(w, "%s  %-8s %5d rows  %s", s.ExportID, ui.FormatTimeRel(s.ExportedAt), s.RowCount, s.Title); err != nil {
			return err
		}
	}
	return nil
}
