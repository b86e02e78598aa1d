package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ebitech02/WanderWise/internal/upstream"
)

func newCuisinesCmd() *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "cuisines",
		Short: "Validate and print the country to cuisine table",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := upstream.DefaultCuisines()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if country != "" {
				cuisine, ok := table.Lookup(country)
				if !ok {
					return fmt.Errorf("no cuisine for %q", country)
				}
				_, err := fmt.Fprintln(out, cuisine)
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "COUNTRY\tCUISINE")
			for _, e := range table.Entries() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", e.Country, e.Cuisine)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%d countries\n", table.Len())
			return err
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "print only this country's cuisine")
	return cmd
}
