package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zamyatin-zkex/quoter/internal/catalog"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/format"
)

func instrumentsCmd() *cobra.Command {
	var kind, query string

	cmd := &cobra.Command{
		Use:   "instruments",
		Short: "List the instrument catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listInstruments(cmd.OutOrStdout(), catalog.Default(), kind, query)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind: stocks, crypto, forex, index")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search symbol or name")

	return cmd
}

func listInstruments(out io.Writer, cat *catalog.Catalog, kind, query string) error {
	list := cat.Filter(query)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tKIND\tBASE\tFLOOR\tCEILING\tPROFILE")
	for _, ins := range list {
		if kind != "" && ins.Kind != entity.Kind(strings.ToLower(kind)) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ins.Symbol,
			ins.DisplayName,
			ins.Kind,
			format.Price(ins.BasePrice, ins.Precision),
			format.Price(ins.Floor, ins.Precision),
			format.Price(ins.Ceiling, ins.Precision),
			catalog.ProfileFor(ins.Kind).Name,
		)
	}
	return w.Flush()
}
