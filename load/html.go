// CLAUDE:SUMMARY HTML and URL loaders — local parse, fetched webpage, download-and-delegate for binary URLs.
package load

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/fetch"
	"github.com/hazyhaar/annexe/verb"
)

// HTMLTree is the payload for HTML inputs: the parsed tree plus the source
// URL when the document was fetched.
type HTMLTree struct {
	Root *html.Node
	URL  string
}

// Fetcher is the HTTP collaborator shared by the url loader. Swappable in
// tests.
var Fetcher = fetch.New(fetch.Config{})

// sanitizer strips scripts and event handlers from fetched pages before they
// enter the pipeline.
var sanitizer = bluemonday.UGCPolicy().AllowElements("html", "head", "title", "body")

func loadHTMLFile(_ context.Context, a *attach.Attachment) (any, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load html %s: %w", a.Path, err)
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load html %s: parse: %w", a.Path, err)
	}
	a.SetPayload(&HTMLTree{Root: root})
	return a, nil
}

func loadURL(ctx context.Context, a *attach.Attachment) (any, error) {
	if ext, isBinary := hasBinaryDocSuffix(a.Path); isBinary {
		return downloadAndDelegate(ctx, a, ext)
	}

	res, err := Fetcher.Page(ctx, a.Path)
	if err != nil {
		return nil, fmt.Errorf("load url: %w", err)
	}
	clean := sanitizer.SanitizeBytes(res.Body)
	root, err := html.Parse(bytes.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("load url %s: parse: %w", a.Path, err)
	}

	a.SetPayload(&HTMLTree{Root: root, URL: a.Path})
	a.Record("content_type", res.ContentType)
	a.Record("status_code", res.StatusCode)
	return a, nil
}

// downloadAndDelegate spools a binary URL to a temp file and runs the loader
// chain against the saved path, grafting the resulting payload back onto the
// original attachment. The temp file lives as long as the attachment.
func downloadAndDelegate(ctx context.Context, a *attach.Attachment, ext string) (any, error) {
	tmpPath, res, err := Fetcher.Download(ctx, a.Path, ext)
	if err != nil {
		return nil, fmt.Errorf("load url: download: %w", err)
	}
	a.AddTempFile(tmpPath)
	a.Record("original_url", a.Path)
	a.Record("temp_file_path", tmpPath)
	a.Record("downloaded_from_url", true)
	a.Record("content_length", len(res.Body))
	a.Record("content_type", res.ContentType)

	proxy := attach.New(tmpPath)
	proxy.Commands = a.Commands.Clone()
	for _, name := range verb.LoaderNames() {
		if name == "url" {
			continue
		}
		out, err := verb.Load(name).Run(ctx, proxy)
		if err != nil {
			return nil, fmt.Errorf("load url: delegate %s: %w", name, err)
		}
		if set, isSet := out.(*attach.Set); isSet {
			// Archive expansion: the set replaces the original attachment,
			// so the temp file moves to the first member's custody.
			if set.Len() > 0 {
				set.Items[0].AddTempFile(tmpPath)
			}
			for _, item := range set.Items {
				item.Record("original_url", a.Path)
			}
			return set, nil
		}
		if proxy.HasPayload() {
			break
		}
	}
	if !proxy.HasPayload() {
		return nil, fmt.Errorf("load url: no loader accepted downloaded file %s", tmpPath)
	}

	a.SetPayload(proxy.Payload)
	for k, v := range proxy.Metadata {
		a.Record(k, v)
	}
	return a, nil
}
