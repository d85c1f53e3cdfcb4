package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"reservas/client"
	"reservas/errors"
	"reservas/services"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "importar <archivo.xlsx>",
		Short: "Importa un libro de habitaciones y eventos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := api.ImportFile(context.Background(), filepath.Base(args[0]), f, validateOnly)
			var apiErr *client.APIError
			if err != nil && !(stderrors.As(err, &apiErr) && apiErr.Status == 422) {
				return describeError(err)
			}
			if outputJSON {
				if werr := writeJSON(res); werr != nil {
					return werr
				}
			} else if rerr := renderImport(res); rerr != nil {
				return rerr
			}
			if !res.Valid() {
				return fmt.Errorf("%s", services.NothingSavedMessage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validateOnly, "validar", false, "Solo valida, no guarda nada")
	return cmd
}

func renderImport(res *services.ValidationResult) error {
	s := res.Summary
	fmt.Printf("Habitaciones: %d recibidas, %d añadidas, %d errores\n", s.RoomsReceived, s.RoomsAdded, s.RoomErrorsCount)
	fmt.Printf("Eventos: %d recibidos, %d añadidos, %d errores\n", s.EventsReceived, s.EventsAdded, s.EventErrorsCount)
	if s.LinkedRooms > 0 {
		fmt.Printf("Habitaciones vinculadas: %d\n", s.LinkedRooms)
	}
	for _, w := range res.Warnings {
		fmt.Println("Aviso:", w)
	}
	if res.Committed {
		fmt.Println("Lote", res.BatchID, "guardado")
	}

	if len(res.Errors.Rooms)+len(res.Errors.Events) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOJA\tFILA\tCAMPO\tMENSAJE")
	for _, list := range [][]errors.RowError{res.Errors.Rooms, res.Errors.Events} {
		for _, e := range list {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Sheet, e.RowNumber, e.Field, e.Message)
		}
	}
	return w.Flush()
}
