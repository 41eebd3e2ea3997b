package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/novucs/papertool/internal/harvest"
	"github.com/novucs/papertool/internal/workpool"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest <title or pdf url>",
	Short: "Collect ranked references for a paper",
	Long: `Harvest looks the paper up on arXiv, resolves any DOIs it finds through
doi.org and scrapes bibtex from web search results. When given the URL of a
PDF it reads the title from the document first. References are printed best
match first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().Bool("json", false, "output results as JSON")
	harvestCmd.Flags().Bool("csl", false, "output results as CSL-YAML")
	harvestCmd.MarkFlagsMutuallyExclusive("json", "csl")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("provide a paper title or PDF URL")
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")

	cfg := harvestConfig()
	ex := workpool.NewExecutor(cfg.Workers, cfg.TaskTimeout)
	h := harvest.New(harvest.DefaultDeps(cfg, ex), cfg, logger)

	res := h.Harvest(cmd.Context(), query)
	reportFailures(res, cmd.ErrOrStderr())

	out := cmd.OutOrStdout()
	switch {
	case asJSON:
		return harvest.FormatJSON(res, out)
	case asCSL:
		return harvest.FormatCSL(res, out)
	default:
		harvest.FormatTable(res, out)
		return nil
	}
}

func reportFailures(res harvest.Result, w io.Writer) {
	for _, f := range res.Failures {
		fmt.Fprintf(w, "warning: %s %s failed: %v\n", f.Stage, f.Target, f.Err)
	}
}
