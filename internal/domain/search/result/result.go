package result

// Result is a single search hit. Field order title, plot, score is the
// column order for any tabular presentation.
type Result struct {
	title string
	plot  string
	score float64
}

// New creates a search result.
func New(title, plot string, score float64) Result {
	return Result{title: title, plot: plot, score: score}
}

// Title returns the document title.
func (r *Result) Title() string { return r.title }

// Plot returns the document plot.
func (r *Result) Plot() string { return r.plot }

// Score returns the cosine similarity between the query and the plot.
func (r *Result) Score() float64 { return r.score }

// Columns returns the presentation column names in order.
func Columns() []string { return []string{"title", "plot", "score"} }
