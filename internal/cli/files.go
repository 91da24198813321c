package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func (a *app) downloadCommand() *cobra.Command {
	var (
		docFormat string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a receipt as PDF (or printable HTML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.client().Download(contextOf(cmd), args[0], docFormat)
			if err != nil {
				return failure(err, "Failed to download receipt")
			}

			path := output
			if path == "" {
				path = d.Filename
			}
			if path == "" {
				path = "receipt-" + args[0]
			}
			return save(cmd, path, d.Body)
		},
	}
	cmd.Flags().StringVar(&docFormat, "format", "", "pdf or html; the server default when empty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write; defaults to the server's file name")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save every receipt to a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.client().Export(contextOf(cmd))
			if err != nil {
				return failure(err, "Failed to export receipts")
			}
			return save(cmd, output, d.Body)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "receipts.xlsx", "file to write")
	return cmd
}

func save(cmd *cobra.Command, path string, body []byte) error {
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", abs, len(body))
	return nil
}
