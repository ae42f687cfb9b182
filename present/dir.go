// CLAUDE:SUMMARY Directory presenters — structure tree view, repo metadata, expansion-ready file map.
package present

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/annexe/attach"
	"github.com/hazyhaar/annexe/load"
)

func structureDir(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	ds := a.Payload.(*load.DirStructure)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Directory Structure: %s\n\n", ds.Path)
	fmt.Fprintf(&sb, "Type: %s\n\n", ds.Type)
	if ds.Tree != nil {
		sb.WriteString("```\n")
		renderTree(&sb, ds.Tree, "")
		sb.WriteString("```\n")
	}
	a.AppendText(sb.String())
	return a, nil
}

// renderTree draws the classic box-drawing tree.
func renderTree(sb *strings.Builder, node *load.DirNode, prefix string) {
	if prefix == "" {
		fmt.Fprintf(sb, "%s/\n", node.Name)
	}
	for i, child := range node.Children {
		if child == nil {
			continue
		}
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(node.Children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		name := child.Name
		if child.Type == "directory" {
			name += "/"
		}
		fmt.Fprintf(sb, "%s%s%s\n", prefix, connector, name)
		if child.Type == "directory" {
			renderTree(sb, child, childPrefix)
		}
	}
}

func metadataDir(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	ds := a.Payload.(*load.DirStructure)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s: %s\n\n", strings.ReplaceAll(ds.Type, "_", " "), ds.Path)

	keys := make([]string, 0, len(ds.Meta))
	for k := range ds.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %v\n", k, ds.Meta[k])
	}
	sb.WriteByte('\n')
	if ds.Tree != nil {
		sb.WriteString("```\n")
		renderTree(&sb, ds.Tree, "")
		sb.WriteString("```\n")
	}
	a.AppendText(sb.String())
	return a, nil
}

// filesDir emits the file map and marks the attachment for expansion: the
// facade replaces it with one attachment per listed file.
func filesDir(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	ds := a.Payload.(*load.DirStructure)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Files: %s (%d)\n\n", ds.Path, len(ds.Files))
	for _, f := range ds.Files {
		fmt.Fprintf(&sb, "- %s\n", f)
	}
	a.AppendText(sb.String())
	a.Record("directory_map", true)
	a.Record("file_count", len(ds.Files))
	return a, nil
}

// metadataAny is the untyped fallback for the metadata presenter: a YAML
// block of whatever the pipeline has recorded so far.
func metadataAny(_ context.Context, a *attach.Attachment) (*attach.Attachment, error) {
	if len(a.Metadata) == 0 {
		return a, nil
	}
	out, err := yaml.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	a.AppendText("\n## Metadata\n\n```yaml\n" + string(out) + "```\n")
	return a, nil
}
