package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func availabilityCmd() *cobra.Command {
	var exclude uint

	cmd := &cobra.Command{
		Use:   "disponibilidad <tipo> <recurso> <desde> <hasta>",
		Short: "Comprueba si un recurso está libre en un rango de fechas",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateInput(args[2])
			if err != nil {
				return err
			}
			to, err := parseDateInput(args[3])
			if err != nil {
				return err
			}

			res, err := api.Availability(context.Background(), args[0], args[1], from, to, exclude)
			if err != nil {
				return describeError(err)
			}
			if outputJSON {
				return writeJSON(res)
			}

			if res.Available {
				fmt.Printf("%s libre del %s al %s\n", args[1], from.Format("2006-01-02"), to.Format("2006-01-02"))
				return nil
			}
			fmt.Printf("%s ocupado\n", args[1])
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tESTADO\tENTRADA\tSALIDA\tCONTACTO")
			for _, r := range res.Conflicts {
				fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n", r.ID, r.Status,
					r.StartAt.Format("2006-01-02 15:04"), r.EndAt.Format("2006-01-02 15:04"), r.Contact.FullName())
			}
			return w.Flush()
		},
	}

	cmd.Flags().UintVar(&exclude, "excluir", 0, "ID de la reserva que se está editando")
	return cmd
}
