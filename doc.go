// Package plotsearch ranks a fixed corpus of movie plots against free-text
// queries by embedding similarity.
//
// The corpus is loaded and embedded once, on the first Search or Init call,
// and stays immutable for the lifetime of the Client:
//
//	client, _ := plotsearch.New(
//	    plotsearch.CSVFile("data/movies.csv"),
//	    plotsearch.NewHashingEmbedder(0),
//	)
//	results, _ := client.Search(ctx, "spy thriller in Paris", 5)
//	for _, r := range results {
//	    fmt.Printf("%.3f %s\n", r.Score, r.Title)
//	}
//
// Any Embedder works as long as documents and queries land in the same
// vector space. Embedders that also implement BatchEmbedder embed the corpus
// in batches.
package plotsearch
