package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RagToolName is the MCP tool that returns joined passages for a query.
const RagToolName = "get_rag_data"

// ErrToolFailed is returned when the MCP server reports a tool error.
var ErrToolFailed = errors.New("mcp tool call failed")

// MCPRetriever retrieves passages by calling the RAG tool on an MCP server
// over the streamable HTTP transport. Every Retrieve opens its own session
// and closes it before returning.
type MCPRetriever struct {
	endpoint   string
	httpClient *http.Client
	client     *mcp.Client
	logger     *slog.Logger
}

type MCPOption func(*MCPRetriever)

// WithHTTPClient sets the HTTP client used by the transport.
func WithHTTPClient(c *http.Client) MCPOption {
	return func(r *MCPRetriever) { r.httpClient = c }
}

func WithLogger(l *slog.Logger) MCPOption {
	return func(r *MCPRetriever) { r.logger = l }
}

func NewMCPRetriever(endpoint string, opts ...MCPOption) *MCPRetriever {
	r := &MCPRetriever{
		endpoint: endpoint,
		client:   mcp.NewClient(&mcp.Implementation{Name: "research-agent", Version: "1.0.0"}, nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MCPRetriever) Retrieve(ctx context.Context, query string, topK int) (string, error) {
	transport := &mcp.StreamableClientTransport{
		Endpoint:   r.endpoint,
		HTTPClient: r.httpClient,
	}

	session, err := r.client.Connect(ctx, transport, nil)
	if err != nil {
		return "", fmt.Errorf("failed to connect to MCP server at %s: %w", r.endpoint, err)
	}
	defer session.Close()

	r.logger.Debug("Connected to MCP server", "endpoint", r.endpoint)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: RagToolName,
		Arguments: map[string]any{
			"query":    query,
			"num_docs": normalizeTopK(topK),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", RagToolName, err)
	}

	text := textContent(res)
	if res.IsError {
		return "", fmt.Errorf("%w: %s for query %q: %s", ErrToolFailed, RagToolName, query, text)
	}
	return text, nil
}

// textContent concatenates the text parts of a tool result.
func textContent(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
