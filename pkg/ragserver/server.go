// Package ragserver exposes document retrieval as MCP tools.
package ragserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/rag-research-agent/pkg/metrics"
	"github.com/mikeboe/rag-research-agent/pkg/retrieval"
)

const (
	ServerName    = "RAG MCP Server"
	ServerVersion = "1.0.0"

	ContextToolName = "get_rag_data_with_context"
)

// RagDataArgs is the input of get_rag_data.
type RagDataArgs struct {
	Query   string `json:"query" jsonschema:"the question to search the document knowledge base for"`
	NumDocs int    `json:"num_docs,omitempty" jsonschema:"number of passages to return, default 5"`
}

// RagContextArgs is the input of get_rag_data_with_context.
type RagContextArgs struct {
	Query    string `json:"query" jsonschema:"the question to search the document knowledge base for"`
	NumDocs  int    `json:"num_docs,omitempty" jsonschema:"number of passages to return, default 5"`
	Filename string `json:"filename,omitempty" jsonschema:"optional source document to restrict the search to"`
}

// RagContextResult is the structured output of get_rag_data_with_context.
type RagContextResult struct {
	Passages []retrieval.Passage `json:"passages,omitempty"`
}

type tools struct {
	searcher retrieval.Searcher
	logger   *slog.Logger
}

// New returns an MCP server whose tools search through searcher.
func New(searcher retrieval.Searcher, logger *slog.Logger) *mcp.Server {
	if logger == nil {
		logger = slog.Default()
	}
	t := &tools{searcher: searcher, logger: logger}

	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        retrieval.RagToolName,
		Description: "Get data from document knowledge based on the query",
	}, t.getRagData)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ContextToolName,
		Description: "Get scored passages with their source document and chunk number for the query",
	}, t.getRagDataWithContext)

	return server
}

// Handler serves server over streamable HTTP. Sessions are stateless and
// responses are plain JSON rather than SSE streams.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless:    true,
		JSONResponse: true,
	})
}

func (t *tools) getRagData(ctx context.Context, _ *mcp.CallToolRequest, args RagDataArgs) (*mcp.CallToolResult, any, error) {
	t.logger.Info("Received MCP query", "tool", retrieval.RagToolName, "query", args.Query, "num_docs", args.NumDocs)

	passages, err := t.searcher.Search(ctx, args.Query, args.NumDocs, "")
	if err != nil {
		metrics.RagToolCall(retrieval.RagToolName, err)
		return errorResult(err), nil, nil
	}
	metrics.RagToolCall(retrieval.RagToolName, nil)

	return textResult(retrieval.Join(passages)), nil, nil
}

func (t *tools) getRagDataWithContext(ctx context.Context, _ *mcp.CallToolRequest, args RagContextArgs) (*mcp.CallToolResult, RagContextResult, error) {
	t.logger.Info("Received MCP query", "tool", ContextToolName, "query", args.Query, "num_docs", args.NumDocs, "filename", args.Filename)

	passages, err := t.searcher.Search(ctx, args.Query, args.NumDocs, args.Filename)
	if err != nil {
		metrics.RagToolCall(ContextToolName, err)
		return errorResult(err), RagContextResult{}, nil
	}
	metrics.RagToolCall(ContextToolName, nil)

	return textResult(formatPassages(passages)), RagContextResult{Passages: passages}, nil
}

// formatPassages renders passages for models that only read text content.
func formatPassages(passages []retrieval.Passage) string {
	formatted := make([]string, 0, len(passages))
	for _, p := range passages {
		source := p.Filename
		if source == "" {
			source = "unknown"
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("[Source]: %s\n[Content]: %s", source, p.Content))
		sb.WriteString(fmt.Sprintf("\n[chunk]: %d\n[score]: %.4f", p.ChunkNumber, p.Score))
		formatted = append(formatted, sb.String())
	}
	return strings.Join(formatted, "\n\n")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
