package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"spaces-mcp/internal/spaces"
)

// Input structs for the official SDK transport. Schemas are inferred
// from the jsonschema tags, so discovery is static and needs no
// backend configuration.

type CheckAvailabilityInput struct {
	SpaceURL string `json:"space_url" jsonschema:"full URL of the space, e.g. https://x.com/i/spaces/1ZkKzYLnWOLxv"`
}

type DownloadInput struct {
	SpaceURL string `json:"space_url" jsonschema:"full URL of the space, e.g. https://x.com/i/spaces/1ZkKzYLnWOLxv"`
	Wait     *bool  `json:"wait,omitempty" jsonschema:"wait for the download to complete before returning (default true)"`
}

type TranscribeInput struct {
	SpaceID string `json:"space_id" jsonschema:"identifier of the space, e.g. 1ZkKzYLnWOLxv"`
	Wait    *bool  `json:"wait,omitempty" jsonschema:"wait for the transcription to complete before returning (default true)"`
}

type GetTranscriptInput struct {
	SpaceID string `json:"space_id" jsonschema:"identifier of the space, e.g. 1ZkKzYLnWOLxv"`
	Format  string `json:"format,omitempty" jsonschema:"transcript format: json, txt, paragraphs, timecoded, or summary (default txt)"`
}

type ListSpacesInput struct{}

type DownloadAndTranscribeInput struct {
	SpaceURL string `json:"space_url" jsonschema:"full URL of the space, e.g. https://x.com/i/spaces/1ZkKzYLnWOLxv"`
}

// NewSDKServer builds the official-SDK server with all tools
// registered against the given service. As on the stdio transport,
// handler failures surface as isError tool content.
func NewSDKServer(svc *spaces.Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{Name: ToolCheckAvailability, Description: descCheckAvailability},
		func(ctx context.Context, _ *mcp.CallToolRequest, in CheckAvailabilityInput) (*mcp.CallToolResult, any, error) {
			return sdkTextResult(svc.CheckAvailability(ctx, in.SpaceURL))
		})

	mcp.AddTool(server, &mcp.Tool{Name: ToolDownload, Description: descDownload},
		func(ctx context.Context, _ *mcp.CallToolRequest, in DownloadInput) (*mcp.CallToolResult, any, error) {
			return sdkTextResult(svc.Download(ctx, in.SpaceURL, waitOrDefault(in.Wait)))
		})

	mcp.AddTool(server, &mcp.Tool{Name: ToolTranscribe, Description: descTranscribe},
		func(ctx context.Context, _ *mcp.CallToolRequest, in TranscribeInput) (*mcp.CallToolResult, any, error) {
			return sdkTextResult(svc.Transcribe(ctx, in.SpaceID, waitOrDefault(in.Wait)))
		})

	mcp.AddTool(server, &mcp.Tool{Name: ToolGetTranscript, Description: descGetTranscript},
		func(ctx context.Context, _ *mcp.CallToolRequest, in GetTranscriptInput) (*mcp.CallToolResult, any, error) {
			return sdkTextResult(svc.Transcript(ctx, in.SpaceID, in.Format))
		})

	mcp.AddTool(server, &mcp.Tool{Name: ToolListSpaces, Description: descListSpaces},
		func(ctx context.Context, _ *mcp.CallToolRequest, _ ListSpacesInput) (*mcp.CallToolResult, any, error) {
			return sdkTextResult(svc.ListSpaces(ctx))
		})

	mcp.AddTool(server, &mcp.Tool{Name: ToolDownloadAndTranscribe, Description: descDownloadAndTranscribe},
		func(ctx context.Context, _ *mcp.CallToolRequest, in DownloadAndTranscribeInput) (*mcp.CallToolResult, any, error) {
			return sdkTextResult(svc.DownloadAndTranscribe(ctx, in.SpaceURL))
		})

	return server
}

func waitOrDefault(wait *bool) bool {
	if wait == nil {
		return true
	}

	return *wait
}

func sdkTextResult(text string, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}
