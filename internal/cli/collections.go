package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"violet-client/internal/model"
)

func parseCollectionID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid collection id %q", raw)
	}
	return id, nil
}

func (rt *runtime) collectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"coll"},
		Short:   "Manage document collections",
	}
	cmd.AddCommand(
		rt.collectionsListCmd(),
		rt.collectionsSelectCmd(),
		rt.collectionsDeleteCmd(),
		rt.collectionsDeleteAllCmd(),
		rt.collectionsTablesCmd(),
	)
	return cmd
}

func (rt *runtime) collectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			collections := rt.orchestrator().Snapshot().Collections
			if len(collections) == 0 {
				fmt.Fprintln(rt.out, "No collections yet. Create one with: violet upload --name NAME file.pdf")
				return nil
			}
			w := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMODEL")
			for _, c := range collections {
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.DisplayName(), c.ModelLabel())
			}
			return w.Flush()
		},
	}
}

func (rt *runtime) collectionsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Show a collection and its insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCollectionID(args[0])
			if err != nil {
				return err
			}
			if err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			if err := rt.orchestrator().SelectByID(cmd.Context(), id); err != nil {
				return err
			}
			snap := rt.orchestrator().Snapshot()
			fmt.Fprintf(rt.out, "%s (%s)\n", snap.Selected.DisplayName(), snap.Selected.ModelLabel())
			printInsights(rt, snap.Insights)
			return nil
		},
	}
}

func printInsights(rt *runtime, insights *model.Insights) {
	if insights == nil {
		fmt.Fprintln(rt.out, "No insights available.")
		return
	}
	if insights.Summary != "" {
		fmt.Fprintf(rt.out, "\nSummary:\n  %s\n", insights.Summary)
	}
	if len(insights.KeyConcepts) > 0 {
		fmt.Fprintf(rt.out, "\nKey concepts: %s\n", strings.Join(insights.KeyConcepts, ", "))
	}
	if len(insights.SuggestedQuestions) > 0 {
		fmt.Fprintln(rt.out, "\nSuggested questions:")
		for _, q := range insights.SuggestedQuestions {
			fmt.Fprintf(rt.out, "  - %s\n", q)
		}
	}
}

func (rt *runtime) collectionsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCollectionID(args[0])
			if err != nil {
				return err
			}
			if err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			return rt.orchestrator().Delete(cmd.Context(), id, rt.confirmer(yes))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (rt *runtime) collectionsDeleteAllCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every collection you own",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			_, err := rt.orchestrator().DeleteAll(cmd.Context(), rt.confirmer(yes))
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (rt *runtime) collectionsTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <id>",
		Short: "List tables extracted from a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCollectionID(args[0])
			if err != nil {
				return err
			}
			if err := rt.restore(cmd.Context()); err != nil {
				return err
			}
			tables, err := rt.orchestrator().Tables(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Fprintln(rt.out, "No tables found.")
				return nil
			}
			w := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSOURCE\tROWS\tCOLUMNS")
			for _, t := range tables {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", t.TableIndex, t.Source, t.RowCount, strings.Join(t.Columns, ", "))
			}
			return w.Flush()
		},
	}
}

func (rt *runtime) providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the answering engines the service offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			providers, err := rt.orchestrator().Providers(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range providers {
				fmt.Fprintf(rt.out, "%s (%s): %s [default %s]\n", p.Name, p.ID, strings.Join(p.Models, ", "), p.DefaultModel)
			}
			return nil
		},
	}
}
