package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check that the onboarding server is up",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.Health(cmd.Context()); err != nil {
			return fmt.Errorf("checking health: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Health: ok")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show the server configuration",
	GroupID: "onboarding",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := apiClient.GetConfiguration(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:        %s\n", cfg.Name)
		fmt.Fprintf(out, "Description: %s\n", cfg.Description)
		fmt.Fprintf(out, "URL:         %s\n", cfg.URL)
		fmt.Fprintf(out, "Username:    %s\n", cfg.Username)
		fmt.Fprintf(out, "Password:    %v\n", passwordLabel(cfg.PasswordSet))
		fmt.Fprintf(out, "Entries:     %d\n", len(cfg.Entries))
		return nil
	},
}

func passwordLabel(set bool) string {
	if set {
		return "set"
	}
	return "not set"
}

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Short:   "List and manage onboarding entries",
	GroupID: "onboarding",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := apiClient.ListEntries(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), entries)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.ID, e.Name)
		}
		return w.Flush()
	},
}

var entriesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Append an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := apiClient.AddEntry(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s (%s)\n", e.Name, e.ID)
		return nil
	},
}

var entriesRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename an entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := apiClient.RenameEntry(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed entry %s to %s\n", e.ID, e.Name)
		return nil
	},
}

var entriesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.RemoveEntry(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %s\n", args[0])
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Short:   "List the categories a step can run for",
	GroupID: "onboarding",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := apiClient.Categories(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cats)
		}
		for _, c := range cats {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var stepCmd = &cobra.Command{
	Use:     "step",
	Short:   "Run the onboarding step for a category",
	GroupID: "onboarding",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		res, err := apiClient.RunStep(cmd.Context(), category)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

func init() {
	entriesCmd.AddCommand(entriesAddCmd)
	entriesCmd.AddCommand(entriesRenameCmd)
	entriesCmd.AddCommand(entriesRemoveCmd)

	stepCmd.Flags().String("category", "", "category to run the step for")
	_ = stepCmd.MarkFlagRequired("category")
}
