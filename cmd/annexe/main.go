// CLAUDE:SUMMARY CLI entry point — process inputs, print text, dump images, or serve MCP over stdio.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/annexe"
)

func main() {
	adapter := flag.String("adapter", "", "fold output for a provider: claude | openai | messages")
	imageDir := flag.String("o", "", "directory to dump decoded images into")
	serveMCP := flag.Bool("mcp", false, "serve the MCP tools over stdio instead of processing inputs")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()

	if *serveMCP {
		srv := mcp.NewServer(&mcp.Implementation{Name: "annexe", Version: "1.0.0"}, nil)
		annexe.RegisterMCP(srv)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			slog.Error("mcp server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: annexe [flags] <input>[commands] ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	atts, err := annexe.Attachments(ctx, inputs...)
	if err != nil {
		slog.Error("processing failed", "error", err)
		os.Exit(1)
	}
	defer atts.Close()

	if *adapter != "" {
		emitAdapter(atts, *adapter)
		return
	}

	fmt.Println(atts.Text())
	if *imageDir != "" {
		dumpImages(atts.Images(), *imageDir)
	} else if n := len(atts.Images()); n > 0 {
		fmt.Fprintf(os.Stderr, "(%d images; use -o DIR to save)\n", n)
	}
}

func emitAdapter(atts *annexe.Result, name string) {
	var out any
	var err error
	switch name {
	case "claude":
		out, err = atts.Claude()
	case "openai":
		out, err = atts.OpenAIChat()
	case "messages":
		out, err = atts.Messages()
	default:
		slog.Error("unknown adapter", "adapter", name)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("adapter failed", "adapter", name, "error", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		slog.Error("encode failed", "error", err)
		os.Exit(1)
	}
}

func dumpImages(images []string, dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create image dir", "dir", dir, "error", err)
		return
	}
	for i, entry := range images {
		if idx := strings.Index(entry, "base64,"); idx >= 0 {
			entry = entry[idx+len("base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(entry)
		if err != nil {
			slog.Warn("skip undecodable image", "index", i, "error", err)
			continue
		}
		name := filepath.Join(dir, fmt.Sprintf("image_%03d.png", i))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			slog.Warn("write image", "path", name, "error", err)
		}
	}
}
