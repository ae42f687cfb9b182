// CLAUDE:SUMMARY ZIP archive loader — expands image members into an attachment set.
package load

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/annexe/attach"
)

func loadArchive(_ context.Context, a *attach.Attachment) (any, error) {
	r, err := zip.OpenReader(a.Path)
	if err != nil {
		return nil, fmt.Errorf("load archive %s: %w", a.Path, err)
	}
	defer r.Close()

	set := attach.NewSet()
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isImageMember(f.Name) {
			continue
		}
		raw, err := readZipMember(f)
		if err != nil {
			continue
		}
		img, format, err := image.Decode(bytes.NewReader([]byte(raw)))
		if err != nil {
			continue
		}
		member := attach.New(filepath.Join(a.Path, f.Name))
		member.Commands = a.Commands.Clone()
		member.SetPayload(&ImageData{Img: img, Format: format})
		member.Record("from_zip", true)
		member.Record("zip_filename", f.Name)
		set.Append(member)
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("load archive %s: no image members", a.Path)
	}
	return set, nil
}

func isImageMember(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range imageExts {
		if ext == known && ext != ".heic" && ext != ".heif" {
			return true
		}
	}
	return false
}
