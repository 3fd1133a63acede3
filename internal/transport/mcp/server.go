package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plotsearch/internal/domain"
	"github.com/kailas-cloud/plotsearch/internal/domain/search/result"
	"github.com/kailas-cloud/plotsearch/internal/version"
)

const serverName = "plotsearch/mcp"

// Searcher ranks movies against a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]result.Result, error)
}

// ServerOptions configures the MCP server.
type ServerOptions struct {
	DefaultTopK int
	Logger      *zap.Logger
}

// Movie is a single search hit in tool output.
type Movie struct {
	Title string  `json:"title"`
	Plot  string  `json:"plot"`
	Score float64 `json:"score"`
}

// SearchOutput is the structured result of the search_movies tool.
type SearchOutput struct {
	Results []Movie `json:"results"`
}

// Server exposes movie search as MCP tools.
type Server struct {
	searcher Searcher
	opts     ServerOptions
	server   *server.MCPServer
}

// New returns an MCP server exposing the search_movies tool.
func New(searcher Searcher, opts ServerOptions) *Server {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	srv := &Server{
		searcher: searcher,
		opts:     opts,
		server: server.NewMCPServer(
			serverName,
			version.Version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	srv.server.AddTool(srv.newSearchMoviesTool(), srv.handleSearchMovies)
	return srv
}

// MCPServer returns the underlying server for transports.
func (srv *Server) MCPServer() *server.MCPServer { return srv.server }

// ServeStdio serves the tools over stdin/stdout until the input is closed.
func (srv *Server) ServeStdio() error {
	return server.ServeStdio(srv.server) //nolint:wrapcheck // transport error
}

// ServeHTTP serves the tools over streamable HTTP on addr.
func (srv *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(srv.server).Start(addr) //nolint:wrapcheck // transport error
}

func (srv *Server) newSearchMoviesTool() mcp.Tool {
	return mcp.NewTool(
		"search_movies",
		mcp.WithDescription("Find movies whose plot is semantically closest to a free-text description"),
		mcp.WithString("query", mcp.Description("Free-text description of the plot"), mcp.Required()),
		mcp.WithNumber("top_k",
			mcp.Description("Number of movies to return"),
			mcp.DefaultNumber(float64(srv.opts.DefaultTopK)),
			mcp.Min(1),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (srv *Server) handleSearchMovies(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := req.GetInt("top_k", srv.opts.DefaultTopK)

	results, err := srv.searcher.Search(ctx, query, topK)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			srv.opts.Logger.Debug("search_movies cancelled by client", zap.Error(err))
		} else {
			srv.opts.Logger.Warn("search_movies failed", zap.Error(err))
		}
		return mcp.NewToolResultError(toolMessage(err)), nil
	}

	out := SearchOutput{Results: make([]Movie, len(results))}
	for i := range results {
		out.Results[i] = Movie{
			Title: results[i].Title(),
			Plot:  results[i].Plot(),
			Score: results[i].Score(),
		}
	}
	return mcp.NewToolResultStructuredOnly(out), nil
}

// toolMessage keeps caller mistakes verbatim and hides everything else behind a sentinel.
func toolMessage(err error) string {
	for _, s := range []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidTopK,
		domain.ErrQueryEncoding,
		domain.ErrEmbeddingProvider,
		domain.ErrCorpusEmpty,
		domain.ErrInvalidDocument,
		domain.ErrEmbeddingDimension,
		context.DeadlineExceeded,
		context.Canceled,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}
