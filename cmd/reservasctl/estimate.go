package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"reservas/dto"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func estimateCmd() *cobra.Command {
	var items []string
	var resourceType string
	var from, to string

	cmd := &cobra.Command{
		Use:     "estimar",
		Short:   "Calcula el precio estimado de una selección",
		Example: "  reservasctl estimar --item F:2450:noche --item SALON:9000:fijo --desde 2030-03-01 --hasta 2030-03-04",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}
			req := dto.EstimateRequest{ResourceType: resourceType, From: from, To: to}
			for _, raw := range items {
				item, err := parseItem(raw)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
			}

			res, err := api.Estimate(context.Background(), req)
			if err != nil {
				return describeError(err)
			}
			if outputJSON {
				return writeJSON(res)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RECURSO\tUNIDAD\tCANT.\tPRECIO\tSUBTOTAL")
			for _, line := range res.PerItem {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", line.ResourceID, line.UnitType, line.Units,
					line.UnitPrice.StringFixed(2), line.Subtotal.StringFixed(2))
			}
			fmt.Fprintf(w, "TOTAL\t\t\t\t%s\n", res.Total.StringFixed(2))
			if err := w.Flush(); err != nil {
				return err
			}
			if res.PendingDates {
				fmt.Println("Fechas pendientes: las noches se han calculado como una")
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&items, "item", nil, "RECURSO[:PRECIO[:noche|fijo]] (repetible)")
	cmd.Flags().StringVar(&resourceType, "tipo", "room", "Tipo de recurso para buscar tarifas")
	cmd.Flags().StringVar(&from, "desde", "", "Fecha de entrada")
	cmd.Flags().StringVar(&to, "hasta", "", "Fecha de salida")
	return cmd
}

// parseItem reads RECURSO[:PRECIO[:UNIDAD]]. Without a price the stored rate applies.
func parseItem(raw string) (dto.EstimateItem, error) {
	parts := strings.Split(raw, ":")
	item := dto.EstimateItem{ResourceID: strings.ToUpper(strings.TrimSpace(parts[0]))}
	if item.ResourceID == "" {
		return item, fmt.Errorf("invalid item %q", raw)
	}
	if len(parts) > 1 && parts[1] != "" {
		price, err := decimal.NewFromString(strings.Replace(parts[1], ",", ".", 1))
		if err != nil {
			return item, fmt.Errorf("invalid price in %q", raw)
		}
		item.PricePerUnit = &price
	}
	if len(parts) > 2 {
		switch strings.ToLower(parts[2]) {
		case "noche", "per-night":
			item.UnitType = "per-night"
		case "fijo", "flat":
			item.UnitType = "flat"
		default:
			return item, fmt.Errorf("invalid unit in %q (noche or fijo)", raw)
		}
	}
	if len(parts) > 3 {
		return item, fmt.Errorf("invalid item %q", raw)
	}
	return item, nil
}
