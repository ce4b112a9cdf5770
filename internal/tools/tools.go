// Package tools declares the MCP tool surface (names, descriptions,
// parameter schemas) and registers the spaces handlers with both
// supported transports: the mcp-go stdio server and the official SDK
// streamable HTTP server. Tool metadata is static; discovery works
// before any backend URL is configured.
package tools

// ServerName and ServerVersion identify the adapter to MCP clients on
// both transports.
const (
	ServerName    = "spaces-mcp"
	ServerVersion = "0.1.0"
)

// Tool names shared by both transports.
const (
	ToolCheckAvailability     = "check_availability"
	ToolDownload              = "download"
	ToolTranscribe            = "transcribe"
	ToolGetTranscript         = "get_transcript"
	ToolListSpaces            = "list_spaces"
	ToolDownloadAndTranscribe = "download_and_transcribe"
)

const (
	descCheckAvailability     = "Check whether a Twitter Space is available for download, with metadata when known."
	descDownload              = "Download a Twitter Space. Waits for completion by default and reports the stored audio file."
	descTranscribe            = "Transcribe a previously downloaded Twitter Space. Waits for completion by default."
	descGetTranscript         = "Fetch the transcript of a transcribed space in the requested format."
	descListSpaces            = "List spaces stored in the backend's durable storage."
	descDownloadAndTranscribe = "Check, download, and transcribe a Twitter Space in one call, waiting for each stage."

	descSpaceURL = "Full URL of the space, e.g. https://x.com/i/spaces/1ZkKzYLnWOLxv"
	descSpaceID  = "Identifier of the space, e.g. 1ZkKzYLnWOLxv"
	descWait     = "Wait for the operation to complete before returning (default true)"
	descFormat   = "Transcript format (default txt)"
)
