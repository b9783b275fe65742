// Package manifest decodes and validates hype.json package manifests.
package manifest

import (
	"encoding/json"
	"regexp"
	"strings"

	"hype/internal/errs"
)

const DefaultMain = "index.lua"

// Manifest is the decoded, validated form of a hype.json file.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Main         string            `json:"main,omitempty"`
	Description  string            `json:"description,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Engines      map[string]string `json:"engines,omitempty"`
	Bin          map[string]string `json:"bin,omitempty"`
}

var (
	semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)
	binKeyRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Parse decodes and validates raw hype.json bytes. It is a pure function of
// the file bytes: no filesystem or network access.
func Parse(data []byte) (*Manifest, error) {
	var raw struct {
		Name         json.RawMessage   `json:"name"`
		Version      json.RawMessage   `json:"version"`
		Main         json.RawMessage   `json:"main"`
		Description  string            `json:"description"`
		Dependencies map[string]string `json:"dependencies"`
		Engines      map[string]string `json:"engines"`
		Bin          map[string]string `json:"bin"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.InvalidManifest, err, "malformed JSON")
	}

	name, err := requiredString(raw.Name, "name")
	if err != nil {
		return nil, err
	}
	version, err := requiredString(raw.Version, "version")
	if err != nil {
		return nil, err
	}
	if !semverRe.MatchString(version) {
		return nil, errs.New(errs.InvalidManifest, "version %q is not MAJOR.MINOR.PATCH[-pre]", version)
	}

	main := DefaultMain
	if len(raw.Main) > 0 && string(raw.Main) != "null" {
		m, err := requiredString(raw.Main, "main")
		if err != nil {
			return nil, err
		}
		if err := validateMainPath(m); err != nil {
			return nil, err
		}
		main = m
	}

	for key, val := range raw.Bin {
		if !binKeyRe.MatchString(key) {
			return nil, errs.New(errs.InvalidManifest, "bin key %q has invalid characters", key)
		}
		if err := validateMainPath(val); err != nil {
			return nil, errs.New(errs.InvalidManifest, "bin entry %q: %s", key, err.Error())
		}
	}

	return &Manifest{
		Name:         name,
		Version:      version,
		Main:         main,
		Description:  raw.Description,
		Dependencies: raw.Dependencies,
		Engines:      raw.Engines,
		Bin:          raw.Bin,
	}, nil
}

func requiredString(raw json.RawMessage, field string) (string, error) {
	if len(raw) == 0 {
		return "", errs.New(errs.InvalidManifest, "%q is required", field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errs.New(errs.InvalidManifest, "%q must be a string", field)
	}
	if s == "" {
		return "", errs.New(errs.InvalidManifest, "%q is required", field)
	}
	return s, nil
}

func validateMainPath(p string) error {
	if strings.HasPrefix(p, "/") {
		return errs.New(errs.InvalidManifest, "path %q must not be absolute", p)
	}
	for _, seg := range strings.Split(filepathClean(p), "/") {
		if seg == ".." {
			return errs.New(errs.InvalidManifest, "path %q must not contain ..", p)
		}
	}
	return nil
}

// filepathClean normalizes separators without touching the disk; kept local
// so manifest parsing stays a pure function of the bytes (no filepath.Clean
// platform-dependent separator surprises beyond simple slash splitting).
func filepathClean(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
