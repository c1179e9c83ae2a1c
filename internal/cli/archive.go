package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphlens/graphlens/pkg/graph"
	"github.com/graphlens/graphlens/pkg/store"
)

// archiveCommand creates the archive management command. All
// subcommands need a reachable MongoDB instance, configured in the
// [archive] config section.
func (c *CLI) archiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the MongoDB snapshot archive",
	}

	cmd.AddCommand(c.archiveSaveCommand())
	cmd.AddCommand(c.archiveListCommand())
	cmd.AddCommand(c.archiveShowCommand())
	cmd.AddCommand(c.archiveDeleteCommand())

	return cmd
}

// openArchive connects using the configured archive settings.
func (c *CLI) openArchive(ctx context.Context) (*store.Archive, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	return store.NewArchive(ctx, cfg.Archive.URI, cfg.Archive.Database, cfg.Archive.Collection)
}

// archiveSaveCommand creates the "archive save" subcommand.
func (c *CLI) archiveSaveCommand() *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "save <snapshot-file>",
		Short: "Archive a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := graph.ReadSnapshotFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			spin := newSpinner("Connecting to the archive...")
			spin.Start()

			archive, err := c.openArchive(cmd.Context())
			if err != nil {
				spin.StopWithError("Archive unreachable")
				return err
			}
			defer archive.Close(cmd.Context())

			id, err := archive.Save(cmd.Context(), question, snap.Normalize())
			if err != nil {
				spin.Stop()
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Archived %s", args[0]))
			printKeyValue("id", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "the question this snapshot answers")
	_ = cmd.MarkFlagRequired("question")

	return cmd
}

// archiveListCommand creates the "archive list" subcommand.
func (c *CLI) archiveListCommand() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := c.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer archive.Close(cmd.Context())

			recs, err := archive.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("Archive is empty")
				return nil
			}

			for _, rec := range recs {
				printKeyValue(rec.CreatedAt.Format("2006-01-02 15:04"), rec.Question)
				printDetail("%s · %d nodes · %d edges", rec.ID, rec.NodeCount, rec.EdgeCount)
			}
			return nil
		},
	}

	cmd.Flags().Int64VarP(&limit, "limit", "n", 20, "maximum records to list")

	return cmd
}

// archiveShowCommand creates the "archive show" subcommand.
func (c *CLI) archiveShowCommand() *cobra.Command {
	var (
		output   string
		question string
	)

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Write an archived snapshot back to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && question == "" {
				return fmt.Errorf("provide an id or --question")
			}

			archive, err := c.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer archive.Close(cmd.Context())

			var rec *store.Record
			if len(args) > 0 {
				rec, err = archive.Load(cmd.Context(), args[0])
			} else {
				rec, err = archive.Latest(cmd.Context(), question)
			}
			if err != nil {
				return err
			}
			snap, err := rec.Snapshot()
			if err != nil {
				return err
			}

			if output == "" {
				output = rec.ID + ".json"
			}
			if err := graph.WriteSnapshotFile(snap, output); err != nil {
				return err
			}

			printSuccess("Restored %q", rec.Question)
			printStats(rec.NodeCount, rec.EdgeCount, false)
			printFile(output)
			printNextStep("Render it", fmt.Sprintf("%s render %s", appName, output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <id>.json)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "show the latest snapshot for this question")

	return cmd
}

// archiveDeleteCommand creates the "archive delete" subcommand.
func (c *CLI) archiveDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := c.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer archive.Close(cmd.Context())

			if err := archive.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
