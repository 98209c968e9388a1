// Package archive extracts mapping files from published mapping artifacts.
package archive

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	"qm-layer/internal/diagnostic"
)

// MappingsSuffix is the name suffix of the mapping entry inside an artifact.
const MappingsSuffix = "mappings.tiny"

// ExtractMappings copies the single entry of the zip archive at path whose
// name ends with MappingsSuffix to w.
func ExtractMappings(path string, w io.Writer) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return diagnostic.IO(path, "opening mapping archive", err)
	}
	defer zr.Close()

	entry, err := findMappings(path, zr.File)
	if err != nil {
		return err
	}

	rc, err := entry.Open()
	if err != nil {
		return diagnostic.IO(path, "opening entry "+entry.Name, err)
	}
	defer rc.Close()

	if _, err := io.Copy(w, rc); err != nil {
		return diagnostic.IO(path, "extracting entry "+entry.Name, err)
	}

	return nil
}

func findMappings(path string, files []*zip.File) (*zip.File, error) {
	var found []*zip.File

	for _, f := range files {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, MappingsSuffix) {
			continue
		}

		found = append(found, f)
	}

	switch len(found) {
	case 0:
		return nil, diagnostic.NotFoundf(path, "no entry ending with %q", MappingsSuffix)
	case 1:
		return found[0], nil
	default:
		names := make([]string, len(found))
		for i, f := range found {
			names[i] = f.Name
		}

		return nil, diagnostic.Formatf(path, 0, "expected one entry ending with %q, found %s",
			MappingsSuffix, strings.Join(names, ", "))
	}
}
