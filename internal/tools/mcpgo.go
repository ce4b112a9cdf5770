package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"spaces-mcp/internal/spaces"
)

// stdioToolSpecs declares the tool metadata for the mcp-go transport.
// The declarations are pure data: building them touches neither the
// backend nor the configuration.
func stdioToolSpecs() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolCheckAvailability,
			mcp.WithDescription(descCheckAvailability),
			mcp.WithString("space_url", mcp.Required(), mcp.Description(descSpaceURL)),
		),
		mcp.NewTool(ToolDownload,
			mcp.WithDescription(descDownload),
			mcp.WithString("space_url", mcp.Required(), mcp.Description(descSpaceURL)),
			mcp.WithBoolean("wait", mcp.DefaultBool(true), mcp.Description(descWait)),
		),
		mcp.NewTool(ToolTranscribe,
			mcp.WithDescription(descTranscribe),
			mcp.WithString("space_id", mcp.Required(), mcp.Description(descSpaceID)),
			mcp.WithBoolean("wait", mcp.DefaultBool(true), mcp.Description(descWait)),
		),
		mcp.NewTool(ToolGetTranscript,
			mcp.WithDescription(descGetTranscript),
			mcp.WithString("space_id", mcp.Required(), mcp.Description(descSpaceID)),
			mcp.WithString("format",
				mcp.Description(descFormat),
				mcp.Enum(spaces.TranscriptFormats...),
				mcp.DefaultString(spaces.DefaultTranscriptFormat),
			),
		),
		mcp.NewTool(ToolListSpaces,
			mcp.WithDescription(descListSpaces),
		),
		mcp.NewTool(ToolDownloadAndTranscribe,
			mcp.WithDescription(descDownloadAndTranscribe),
			mcp.WithString("space_url", mcp.Required(), mcp.Description(descSpaceURL)),
		),
	}
}

// NewStdioServer builds the mcp-go server with all tools registered
// against the given service. Handler failures are reported as tool
// error content, never as protocol errors.
func NewStdioServer(svc *spaces.Service) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
	)

	specs := stdioToolSpecs()
	handlers := map[string]server.ToolHandlerFunc{
		ToolCheckAvailability: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			spaceURL, err := req.RequireString("space_url")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return textResult(svc.CheckAvailability(ctx, spaceURL))
		},
		ToolDownload: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			spaceURL, err := req.RequireString("space_url")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return textResult(svc.Download(ctx, spaceURL, req.GetBool("wait", true)))
		},
		ToolTranscribe: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			spaceID, err := req.RequireString("space_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return textResult(svc.Transcribe(ctx, spaceID, req.GetBool("wait", true)))
		},
		ToolGetTranscript: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			spaceID, err := req.RequireString("space_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			format := req.GetString("format", spaces.DefaultTranscriptFormat)

			return textResult(svc.Transcript(ctx, spaceID, format))
		},
		ToolListSpaces: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return textResult(svc.ListSpaces(ctx))
		},
		ToolDownloadAndTranscribe: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			spaceURL, err := req.RequireString("space_url")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return textResult(svc.DownloadAndTranscribe(ctx, spaceURL))
		},
	}

	for _, spec := range specs {
		s.AddTool(spec, handlers[spec.Name])
	}

	return s
}

// textResult maps a handler outcome onto tool content: success text or
// legible error text, with the envelope always succeeding.
func textResult(text string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(text), nil
}
