package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-journal-client/journal"
	"github.com/spf13/cobra"
)

func newEntriesCmd(app *App) *cobra.Command {
	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "List and edit journal entries",
	}
	entriesCmd.AddCommand(
		newEntriesListCmd(app),
		newEntriesAddCmd(app),
		newEntriesUpdateCmd(app),
		newEntriesDeleteCmd(app),
	)
	return entriesCmd
}

func newEntriesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, _ := cmd.Flags().GetInt64("category")

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := c.Journal.ListEntries(cmd.Context(), categoryID)
			if err != nil {
				return fmt.Errorf("list entries failed: %s", describe(err))
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tCATEGORY\tTITLE")
			for _, e := range entries {
				category := "-"
				if e.Category != nil {
					category = e.Category.Name
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), category, e.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64("category", 0, "only list entries of this category id")
	return cmd
}

func newEntriesAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Write a new entry",
		Example: `  journal entries add --title "Day one" --content "Hello" --category 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := entryInput(cmd)

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := c.Journal.CreateEntry(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("add entry failed: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created entry %d\n", entry.ID)
			return nil
		},
	}
	addEntryFlags(cmd)
	return cmd
}

func newEntriesUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := c.Journal.UpdateEntry(cmd.Context(), id, entryInput(cmd))
			if err != nil {
				return fmt.Errorf("update entry failed: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d\n", entry.ID)
			return nil
		},
	}
	addEntryFlags(cmd)
	return cmd
}

func newEntriesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Journal.DeleteEntry(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete entry failed: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		},
	}
}

func newCategoriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the entry categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			categories, err := c.Journal.ListCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("list categories failed: %s", describe(err))
			}
			for _, category := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", category.ID, category.Name)
			}
			return nil
		},
	}
}

func newSummaryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count entries per day for the current day, week or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("period")
			period, err := journal.ParsePeriod(strings.ToLower(raw))
			if err != nil {
				return err
			}

			c, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := c.Journal.ListEntries(cmd.Context(), 0)
			if err != nil {
				return fmt.Errorf("summary failed: %s", describe(err))
			}

			summary := journal.Summarize(entries, period, time.Now())
			if len(summary) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No entries this %s\n", periodNouns[period])
				return nil
			}
			for _, day := range summary {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", day.Day, strings.Repeat("#", day.Count))
			}
			return nil
		},
	}
	cmd.Flags().String("period", string(journal.Weekly), "daily, weekly or monthly")
	return cmd
}

var periodNouns = map[journal.Period]string{
	journal.Daily:   "day",
	journal.Weekly:  "week",
	journal.Monthly: "month",
}

func addEntryFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "entry title")
	cmd.Flags().String("content", "", "entry text")
	cmd.Flags().Int64("category", 0, "category id")
}

func entryInput(cmd *cobra.Command) journal.EntryInput {
	var input journal.EntryInput
	input.Title, _ = cmd.Flags().GetString("title")
	input.Content, _ = cmd.Flags().GetString("content")
	input.CategoryID, _ = cmd.Flags().GetInt64("category")
	return input
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", raw)
	}
	return id, nil
}
