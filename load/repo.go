// CLAUDE:SUMMARY Directory / git repository loader — bounded file collection, stat tree, git metadata.
package load

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
	git "github.com/go-git/go-git/v5"
	"github.com/samber/lo"

	"github.com/hazyhaar/annexe/attach"
)

// DirNode is one entry of the structure tree.
type DirNode struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"` // file | directory
	Size        int64      `json:"size"`
	Permissions string     `json:"permissions"`
	Owner       string     `json:"owner"`
	Group       string     `json:"group"`
	ModeOctal   string     `json:"mode_octal"`
	Inode       uint64     `json:"inode"`
	Links       uint64     `json:"links"`
	Modified    string     `json:"modified"`
	Children    []*DirNode `json:"children,omitempty"`
}

// DirStructure is the payload for directory and repository inputs.
type DirStructure struct {
	Type  string         `json:"type"` // git_repository | directory
	Path  string         `json:"path"`
	Files []string       `json:"files"`
	Tree  *DirNode       `json:"structure"`
	Meta  map[string]any `json:"metadata"`
}

// Known-binary extensions skipped during file collection.
var binaryExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".bmp": {},
	".tif": {}, ".tiff": {}, ".ico": {}, ".pdf": {}, ".zip": {}, ".gz": {},
	".tar": {}, ".bz2": {}, ".xz": {}, ".7z": {}, ".exe": {}, ".dll": {},
	".so": {}, ".dylib": {}, ".a": {}, ".o": {}, ".bin": {}, ".dat": {},
	".db": {}, ".sqlite": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".wasm": {}, ".pyc": {},
}

const maxTextFileSize = 10 * 1024 * 1024 // 10 MiB

// ignore presets. standard covers the usual build and cache litter;
// minimal hides only VCS internals.
var ignorePresets = map[string][]string{
	"standard": {
		".git/**", "node_modules/**", "__pycache__/**", "*.pyc", ".venv/**",
		"venv/**", ".tox/**", "dist/**", "build/**", "target/**", ".idea/**",
		".vscode/**", ".DS_Store", "*.egg-info/**", ".pytest_cache/**",
		".mypy_cache/**", "coverage/**", ".next/**", ".cache/**",
	},
	"minimal": {".git/**"},
}

func loadRepo(ctx context.Context, a *attach.Attachment) (any, error) {
	root, err := filepath.Abs(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load repo %s: %w", a.Path, err)
	}

	maxFiles := a.Commands.Int("max_files", 1000)
	recursive := a.Commands.Bool("recursive", true)
	ignoreSpec := a.Commands.GetOr("ignore", "standard")
	globSpec := a.Commands.Get("glob")

	isRepo := false
	if info, err := os.Stat(filepath.Join(root, ".git")); err == nil && info.IsDir() {
		isRepo = true
	}

	keep := buildFilter(root, ignoreSpec, globSpec)
	files := collectFiles(root, recursive, maxFiles, keep)

	ds := &DirStructure{
		Path:  root,
		Files: files,
		Tree:  statTree(root, recursive, 0),
		Meta:  map[string]any{"file_count": len(files)},
	}
	if isRepo {
		ds.Type = "git_repository"
		for k, v := range gitMetadata(ctx, root) {
			ds.Meta[k] = v
		}
	} else {
		ds.Type = "directory"
	}

	a.SetPayload(ds)
	a.Record("file_count", len(ds.Files))
	return a, nil
}

// fileFilter separates directory pruning (ignore rules only) from file
// acceptance (ignore plus glob): a glob like **/*.go must not prune the
// directories that hold matching files.
type fileFilter struct {
	ignorePatterns []string
	gi             gitignore.GitIgnore
	globs          []string
}

func (f *fileFilter) ignored(rel string) bool {
	for _, pat := range f.ignorePatterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, filepath.Base(rel)); ok {
			return true
		}
	}
	if f.gi != nil {
		if m := f.gi.Relative(rel, false); m != nil && m.Ignore() {
			return true
		}
	}
	return false
}

// keepDir decides whether a directory is worth descending into.
func (f *fileFilter) keepDir(rel string) bool {
	return !f.ignored(rel) && !f.ignored(rel+"/")
}

// keepFile applies both the ignore rules and the glob allowlist.
func (f *fileFilter) keepFile(rel string) bool {
	if f.ignored(rel) {
		return false
	}
	if len(f.globs) == 0 {
		return true
	}
	for _, pat := range f.globs {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

// buildFilter composes the ignore and glob rules.
func buildFilter(root, ignoreSpec, globSpec string) *fileFilter {
	f := &fileFilter{}

	switch ignoreSpec {
	case "standard", "":
		f.ignorePatterns = ignorePresets["standard"]
	case "minimal":
		f.ignorePatterns = ignorePresets["minimal"]
	case "gitignore":
		f.ignorePatterns = ignorePresets["minimal"]
		if g, err := gitignore.NewFromFile(filepath.Join(root, ".gitignore")); err == nil {
			f.gi = g
		}
	default:
		f.ignorePatterns = lo.Map(strings.Split(ignoreSpec, ","), func(p string, _ int) string {
			return strings.TrimSpace(p)
		})
	}

	if globSpec != "" {
		f.globs = lo.Map(strings.Split(globSpec, ","), func(p string, _ int) string {
			return strings.TrimSpace(p)
		})
	}
	return f
}

// collectFiles walks the tree gathering readable text files, bounded by
// maxFiles. Binary files are skipped by extension, size, then content.
func collectFiles(root string, recursive bool, maxFiles int, filter *fileFilter) []string {
	var files []string
	if maxFiles <= 0 {
		return files
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return fs.SkipDir
			}
			if !filter.keepDir(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if len(files) >= maxFiles {
			return fs.SkipAll
		}
		if !filter.keepFile(rel) || isBinaryFile(path) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	sort.Strings(files)
	return files
}

// isBinaryFile applies the three-step heuristic: known extension, size cap,
// NUL byte in the first kilobyte.
func isBinaryFile(path string) bool {
	if _, known := binaryExts[strings.ToLower(filepath.Ext(path))]; known {
		return true
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxTextFileSize {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()
	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// statTree builds the structure tree with ownership and inode detail.
// Depth is capped so degenerate trees stay presentable.
func statTree(path string, recursive bool, depth int) *DirNode {
	info, err := os.Lstat(path)
	if err != nil {
		return nil
	}
	node := &DirNode{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		Permissions: info.Mode().String(),
		ModeOctal:   fmt.Sprintf("%04o", info.Mode().Perm()),
		Modified:    info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
	}
	if info.IsDir() {
		node.Type = "directory"
	} else {
		node.Type = "file"
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		node.Inode = st.Ino
		node.Links = uint64(st.Nlink)
		if u, err := user.LookupId(strconv.Itoa(int(st.Uid))); err == nil {
			node.Owner = u.Username
		}
		if g, err := user.LookupGroupId(strconv.Itoa(int(st.Gid))); err == nil {
			node.Group = g.Name
		}
	}
	if !info.IsDir() || (!recursive && depth > 0) || depth > 12 {
		return node
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return node
	}
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		if e.Name() == ".git" {
			continue
		}
		node.Children = append(node.Children, statTree(child, recursive, depth+1))
	}
	return node
}

// gitMetadata reads branch, last commit, remotes, and the dirty flag,
// preferring go-git and falling back to the git binary.
func gitMetadata(ctx context.Context, root string) map[string]any {
	meta := map[string]any{}
	repo, err := git.PlainOpen(root)
	if err != nil {
		return gitMetadataExec(ctx, root)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			meta["branch"] = head.Name().Short()
		}
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			meta["last_commit"] = fmt.Sprintf("%s %s", head.Hash().String()[:8],
				strings.SplitN(commit.Message, "\n", 2)[0])
		}
	}
	if remotes, err := repo.Remotes(); err == nil {
		urls := map[string]string{}
		for _, r := range remotes {
			cfg := r.Config()
			if len(cfg.URLs) > 0 {
				urls[cfg.Name] = cfg.URLs[0]
			}
		}
		if len(urls) > 0 {
			meta["remotes"] = urls
		}
	}
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			meta["dirty"] = !status.IsClean()
		}
	}
	return meta
}

// gitMetadataExec is the binary fallback for repositories go-git cannot
// open (e.g. exotic extensions).
func gitMetadataExec(ctx context.Context, root string) map[string]any {
	meta := map[string]any{}
	run := func(args ...string) string {
		cmd := exec.CommandContext(ctx, "git", args...)
		cmd.Dir = root
		out, err := cmd.Output()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(out))
	}
	if branch := run("branch", "--show-current"); branch != "" {
		meta["branch"] = branch
	}
	if commit := run("log", "-1", "--format=%h %s"); commit != "" {
		meta["last_commit"] = commit
	}
	if status := run("status", "--porcelain"); status != "" {
		meta["dirty"] = true
	}
	return meta
}
