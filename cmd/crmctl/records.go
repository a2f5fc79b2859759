package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amzmarine/crm/internal/app"
	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/crm/service"
)

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				stats := a.Service.Stats()
				out := cmd.OutOrStdout()
				if opts.jsonOutput {
					return writeJSON(out, stats)
				}
				return printStats(out, stats)
			})
		},
	}
}

// printStats writes the aggregates with per-currency revenue in currency order.
func printStats(w io.Writer, stats service.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Active shipments\t%d / %d\n", stats.ActiveShipments, stats.TotalShipments)
	fmt.Fprintf(tw, "Leads won\t%d / %d\n", stats.LeadsWon, stats.TotalLeads)
	fmt.Fprintf(tw, "Conversion rate\t%d%%\n", stats.ConversionRate)
	fmt.Fprintf(tw, "Revenue\t%.2f\n", stats.Revenue)
	for _, currency := range slices.Sorted(maps.Keys(stats.RevenueByCurrency)) {
		fmt.Fprintf(tw, "  %s\t%.2f\n", currency, stats.RevenueByCurrency[currency])
	}
	return tw.Flush()
}

func newLeadsCmd(opts *cliOptions) *cobra.Command {
	leads := &cobra.Command{
		Use:   "leads",
		Short: "Inspect sales leads",
	}

	var filter service.LeadFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				items := service.FilterLeads(a.Service.Leads(), filter)
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				return printLeads(cmd.OutOrStdout(), items)
			})
		},
	}
	list.Flags().StringVar(&filter.CargoType, "cargo", "", "cargo type filter")
	list.Flags().StringVar(&filter.SalesRep, "sales", "", "sales representative filter")
	list.Flags().StringVar(&filter.ShippingLine, "line", "", "shipping line filter")

	leads.AddCommand(list)
	return leads
}

func printLeads(w io.Writer, leads []model.Lead) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tCOMPANY\tCARGO\tSTATUS\tSALES")
	for _, l := range leads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Date, l.Name, l.CompanyName, l.CargoType, l.Status, l.SalesName)
	}
	return tw.Flush()
}

func newShipmentsCmd(opts *cliOptions) *cobra.Command {
	shipments := &cobra.Command{
		Use:   "shipments",
		Short: "Inspect shipments",
	}

	var filter service.ShipmentFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List shipments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				items := service.FilterShipments(a.Service.Shipments(), filter)
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				return printShipments(cmd.OutOrStdout(), items)
			})
		},
	}
	list.Flags().StringVar(&filter.Direction, "direction", "", "Import or Export")
	list.Flags().StringVar(&filter.ShippingLine, "line", "", "shipping line filter")
	list.Flags().StringVar(&filter.SalesRep, "sales", "", "sales representative filter")
	list.Flags().StringVarP(&filter.Query, "query", "q", "", "tracking number or customer substring")
	list.Flags().StringVar(&filter.CustomsPriority, "priority", "", `"Priority" to list shipments needing customs action`)

	shipments.AddCommand(list)
	return shipments
}

func printShipments(w io.Writer, shipments []model.Shipment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACKING\tCUSTOMER\tLINE\tROUTE\tSTATUS\tCUSTOMS\tDOCS\tETA")
	for _, s := range shipments {
		verified, total := service.DocumentCompliance(s)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s->%s\t%s\t%s\t%d/%d\t%s\n",
			s.TrackingNumber, s.CustomerName, s.ShippingLine, s.Origin, s.Destination,
			s.Status, s.DetailedCustomsStatus, verified, total, s.ETA)
	}
	return tw.Flush()
}

func newRepsCmd(opts *cliOptions) *cobra.Command {
	reps := &cobra.Command{
		Use:   "reps",
		Short: "Manage sales representatives",
	}

	reps.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sales representatives with their lead counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				summaries := a.Service.SalesRepStats()
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), summaries)
				}
				return printSalesReps(cmd.OutOrStdout(), summaries)
			})
		},
	})

	reps.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Register a sales representative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				name, err := a.Service.AddSalesRep(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", name)
				return nil
			})
		},
	})
	return reps
}

func printSalesReps(w io.Writer, summaries []service.SalesRepSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLEADS\tWON")
	for _, rep := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", rep.Name, rep.Leads, rep.Won)
	}
	return tw.Flush()
}
