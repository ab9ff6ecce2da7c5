package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultSheetName = "Sheet1"

// manifest describes a build: the sheet carrying the pictures, the pictures
// in the order they are added, and where the streams go.
type manifest struct {
	Sheet    string            `yaml:"sheet"`
	SheetOut string            `yaml:"sheet_out"`
	BookOut  string            `yaml:"book_out"`
	Footer   *bool             `yaml:"footer"`
	Pictures []manifestPicture `yaml:"pictures"`
}

type manifestPicture struct {
	Image    string `yaml:"image"`
	Position string `yaml:"position"`
	Width    uint32 `yaml:"width"`
	Height   uint32 `yaml:"height"`
	Name     string `yaml:"name"`
}

// loadManifestFile reads a manifest from path, or from stdin when path is "-".
// Relative image paths are resolved against the manifest's directory.
func loadManifestFile(path string, stdin io.Reader) (*manifest, error) {
	if path == "-" {
		return decodeManifest(stdin, "")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := decodeManifest(file, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func decodeManifest(r io.Reader, baseDir string) (*manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var m manifest
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest is empty")
		}
		return nil, err
	}
	if len(m.Pictures) == 0 {
		return nil, fmt.Errorf("manifest lists no pictures")
	}
	if m.Sheet == "" {
		m.Sheet = defaultSheetName
	}
	for i := range m.Pictures {
		picture := &m.Pictures[i]
		if picture.Image == "" {
			return nil, fmt.Errorf("picture %d: image is required", i+1)
		}
		if picture.Position == "" {
			picture.Position = "CH"
		}
		if baseDir != "" && !filepath.IsAbs(picture.Image) {
			picture.Image = filepath.Join(baseDir, picture.Image)
		}
	}
	return &m, nil
}

func (m *manifest) includeFooter() bool {
	return m.Footer == nil || *m.Footer
}
