// CLAUDE:SUMMARY MCP tool surface — annexe_process and annexe_formats over stdio.
package annexe

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/annexe/verb"
)

// RegisterMCP registers the processing tools on an MCP server.
func RegisterMCP(srv *mcp.Server) {
	registerProcessTool(srv)
	registerFormatsTool(srv)
}

type processReq struct {
	Input  string `json:"input" jsonschema:"the input path or URL, with optional [key:value] commands"`
	Prompt string `json:"prompt,omitempty" jsonschema:"optional prompt prepended to the text"`
}

type processRes struct {
	Text     string         `json:"text"`
	Images   []string       `json:"images,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Trace    []string       `json:"trace,omitempty"`
}

func registerProcessTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "annexe_process",
		Description: "Process a file, URL, or directory into LLM-ready text, images, and metadata. Supports embedded [key:value] commands (pages, format, images, select, mode, …).",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, req processReq) (*mcp.CallToolResult, processRes, error) {
		input := req.Input
		if req.Prompt != "" {
			input += "[prompt:" + req.Prompt + "]"
		}
		atts, err := Attachments(ctx, input)
		if err != nil {
			return nil, processRes{}, err
		}
		defer atts.Close()

		folded := atts.Set.Fold()
		text := folded.Text
		if req.Prompt != "" {
			text = req.Prompt + "\n\n" + text
		}
		return nil, processRes{
			Text:     text,
			Images:   folded.Images,
			Metadata: folded.Metadata,
			Trace:    folded.Trace,
		}, nil
	})
}

type formatsRes struct {
	Processors []string `json:"processors"`
	Loaders    []string `json:"loaders"`
}

func registerFormatsTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "annexe_formats",
		Description: "List the registered processors and loaders.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, formatsRes, error) {
		freeze()
		var procs []string
		for _, p := range verb.Processors() {
			procs = append(procs, p.Description)
		}
		return nil, formatsRes{
			Processors: procs,
			Loaders:    verb.LoaderNames(),
		}, nil
	})
}
