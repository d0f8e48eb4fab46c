package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and manage trained models",
	}
	cmd.AddCommand(newModelsListCmd(root))
	cmd.AddCommand(newModelsRollbackCmd(root))
	cmd.AddCommand(newModelsStatusCmd(root))
	return cmd
}

func newModelsListCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered model versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			versions, err := a.svc.Versions()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tCREATED\tTEST ACC\tROC AUC\tACTIVE")
			for _, v := range versions {
				acc, auc := "-", "-"
				if v.Report != nil {
					acc = fmt.Sprintf("%.3f", v.Report.TestAccuracy)
					auc = fmt.Sprintf("%.3f", v.Report.TestROCAUC)
				}
				active := ""
				if v.IsActive {
					active = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Version, v.CreatedAt.Format("2006-01-02 15:04:05"), acc, auc, active)
			}
			return tw.Flush()
		},
	}
}

func newModelsRollbackCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Reactivate the previously active model version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.svc.Rollback()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back to %s\n", v.Version)
			return nil
		},
	}
}

func newModelsStatusCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active scoring mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.svc.Status())
		},
	}
}
