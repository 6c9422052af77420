package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vijaikiren/portfolio/internal/content"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the page sections and the content behind them",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := content.Default()
		if err != nil {
			return err
		}

		counts := map[int]string{
			content.SectionHome:         catalog.Profile.Name,
			content.SectionAbout:        fmt.Sprintf("%d skill groups", len(catalog.Skills)),
			content.SectionEducation:    fmt.Sprintf("%d entries", len(catalog.Education)),
			content.SectionTimeline:     fmt.Sprintf("%d entries", len(catalog.Timeline)),
			content.SectionCertificates: fmt.Sprintf("%d certificates", len(catalog.Certificates)),
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tNAV\tCONTENT")
		for _, item := range content.Nav() {
			fmt.Fprintf(w, "%d\t%s\t%s\n", item.Index, item.Label, counts[item.Index])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}
