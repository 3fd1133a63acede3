package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/plotsearch/internal/domain/search/result"
)

const maxPlotWidth = 60

// NewSearchCmd ranks the corpus against a query and prints the best matches.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies by plot description",
		Long:  `Embed the corpus, rank it against the query and print title, plot and score of the best matches.`,
		Example: `  plotsearch search "spy thriller in Paris"
  plotsearch search -k 3 --json "a heist that goes wrong"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntP("top", "k", 0, "Number of results (default: search.default_k)")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger("cli", cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	k, _ := cmd.Flags().GetInt("top")
	if !cmd.Flags().Changed("top") {
		k = cfg.Search.DefaultK
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	results, err := a.search.Search(cmd.Context(), strings.Join(args, " "), k)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if asJSON {
		return outputResultsJSON(cmd.OutOrStdout(), results)
	}
	return outputResultsTable(cmd.OutOrStdout(), results)
}

type resultJSON struct {
	Title string  `json:"title"`
	Plot  string  `json:"plot"`
	Score float64 `json:"score"`
}

func outputResultsJSON(w io.Writer, results []result.Result) error {
	out := make([]resultJSON, len(results))
	for i := range results {
		out[i] = resultJSON{Title: results[i].Title(), Plot: results[i].Plot(), Score: results[i].Score()}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func outputResultsTable(w io.Writer, results []result.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(result.Columns(), "\t")))
	for i := range results {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\n",
			results[i].Title(), truncate(results[i].Plot(), maxPlotWidth), results[i].Score())
	}
	return tw.Flush()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
