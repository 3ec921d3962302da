package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ManifestFile is the file name of the web app manifest in the output root.
const ManifestFile = "manifest.webmanifest"

type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// Manifest is an installable web app manifest.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name,omitempty"`
	Description     string `json:"description,omitempty"`
	ThemeColor      string `json:"theme_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope"`
	Display         string `json:"display"`
	Icons           []Icon `json:"icons"`
}

// DefaultIcons returns the two icon resolutions installable apps need.
func DefaultIcons() []Icon {
	return []Icon{
		{Src: "pwa-192x192.png", Sizes: "192x192", Type: "image/png"},
		{Src: "pwa-512x512.png", Sizes: "512x512", Type: "image/png"},
	}
}

// NewManifest returns a standalone manifest scoped to base.
func NewManifest(name, shortName, description, themeColor, base string) Manifest {
	return Manifest{
		Name:        name,
		ShortName:   shortName,
		Description: description,
		ThemeColor:  themeColor,
		StartURL:    base,
		Scope:       base,
		Display:     "standalone",
		Icons:       DefaultIcons(),
	}
}

var iconSizes = regexp.MustCompile(`^\d+x\d+( \d+x\d+)*$|^any$`)

func (m Manifest) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("manifest name is required"))
	}
	if m.StartURL == "" {
		errs = append(errs, errors.New("manifest start_url is required"))
	}
	if len(m.Icons) == 0 {
		errs = append(errs, errors.New("manifest needs at least one icon"))
	}
	for _, icon := range m.Icons {
		if icon.Src == "" {
			errs = append(errs, errors.New("manifest icon src is required"))
		}
		if !iconSizes.MatchString(icon.Sizes) {
			errs = append(errs, fmt.Errorf("manifest icon %s has invalid sizes %q", icon.Src, icon.Sizes))
		}
	}
	return errors.Join(errs...)
}

// Write validates the manifest and writes it into dir.
func (m Manifest) Write(dir string) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	target := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(target, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return target, nil
}
