package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/amzmarine/crm/internal/app"
)

func newImportCmd(opts *cliOptions) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Draft a shipment from free text with the AI assistant",
		Long: `Draft a shipment from an email, invoice or booking confirmation.

The text is read from file, or from stdin when no file is given or file is "-".
Without --commit the draft is printed and nothing is saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readImportText(cmd, args)
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				result, err := a.Service.ImportShipmentDraft(cmd.Context(), text, commit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.Warning != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), result.Warning)
				}
				if opts.jsonOutput {
					return writeJSON(out, result)
				}
				d := result.Draft
				fmt.Fprintf(out, "tracking:  %s\ncustomer:  %s\nline:      %s\nroute:     %s->%s\nsales rep: %s\ncosts:     %.2f %s\n",
					d.TrackingNumber, d.CustomerName, d.ShippingLine, d.Origin, d.Destination,
					d.SalesRep, d.TotalInlandCost(), d.Currency)
				if result.Committed {
					fmt.Fprintf(out, "saved as shipment %s\n", d.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&commit, "commit", false, "save the draft as a shipment")
	return cmd
}

func readImportText(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read import text: %w", err)
	}
	return string(data), nil
}
