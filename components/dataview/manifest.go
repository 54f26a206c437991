package dataview

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ManifestDocument models a YAML/JSON manifest describing backend resources.
type ManifestDocument struct {
	Version   string           `json:"version" yaml:"version"`
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Resources []ResourceConfig `json:"resources" yaml:"resources"`
	Source    string           `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest from disk, registers it against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*ManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers resources from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *ManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dataview: manifest document is nil")
	}
	for _, res := range doc.Resources {
		if err := r.Register(res); err != nil {
			return fmt.Errorf("dataview: register resource %s from %s: %w", res.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*ManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dataview: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dataview: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dataview: manifest is empty")
		}
		return nil, fmt.Errorf("dataview: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dataview: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Resources))
	for idx, res := range doc.Resources {
		if res.Code == "" {
			return fmt.Errorf("dataview: manifest resource at index %d is missing code", idx)
		}
		if res.Endpoint == "" {
			return fmt.Errorf("dataview: manifest resource %s missing endpoint", res.Code)
		}
		if _, exists := seen[res.Code]; exists {
			return fmt.Errorf("dataview: manifest duplicates resource code %s", res.Code)
		}
		seen[res.Code] = struct{}{}
		for _, action := range res.Actions {
			if action.Name == "" {
				return fmt.Errorf("dataview: manifest resource %s has an unnamed action", res.Code)
			}
		}
	}
	return nil
}
