package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

type scaffoldCmd struct {
	Code         string   `required:"" help:"Resource code (snake_case is applied, e.g. gift-cards -> gift_cards)."`
	Name         string   `help:"Display name (defaults to the humanized code)."`
	Endpoint     string   `help:"Collection endpoint (defaults to /<kebab-code>)."`
	Column       []string `help:"Column as field[:sort][:filter] (repeatable)."`
	Search       []string `help:"Search fields (defaults to name and description)."`
	Role         []string `help:"Roles allowed to open the resource."`
	PageSize     int      `default:"20" help:"Rows per page."`
	Deletable    bool     `help:"Add a delete row action."`
	ManifestPath string   `required:"" type:"path" help:"Manifest YAML file to create or update."`
	Overwrite    bool     `help:"Replace an existing entry with the same code."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	resource, err := cmd.resource()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("viewctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(path)
	if err != nil {
		return err
	}
	if err := upsertResource(doc, resource, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(path, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", resource.Code, path)
	return nil
}

func (cmd *scaffoldCmd) resource() (dataview.ResourceConfig, error) {
	code := strcase.ToSnake(strings.TrimSpace(cmd.Code))
	if code == "" {
		return dataview.ResourceConfig{}, errors.New("viewctl: resource code is required")
	}
	name := cmd.Name
	if name == "" {
		name = strings.ReplaceAll(code, "_", " ")
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	endpoint := cmd.Endpoint
	if endpoint == "" {
		endpoint = "/" + strcase.ToKebab(code)
	}
	columns := make([]dataview.Column, 0, len(cmd.Column))
	for _, raw := range cmd.Column {
		col, err := parseColumn(raw)
		if err != nil {
			return dataview.ResourceConfig{}, err
		}
		columns = append(columns, col)
	}
	res := dataview.ResourceConfig{
		Code:         code,
		Name:         name,
		Endpoint:     endpoint,
		Columns:      columns,
		SearchFields: cmd.Search,
		PageSize:     cmd.PageSize,
		Roles:        cmd.Role,
	}
	if cmd.Deletable {
		res.Actions = append(res.Actions, dataview.RowAction{Name: "delete", Label: "Delete", Method: http.MethodDelete, Deletes: true})
	}
	return res, nil
}

func parseColumn(raw string) (dataview.Column, error) {
	parts := strings.Split(raw, ":")
	col := dataview.Column{Field: strings.TrimSpace(parts[0])}
	if col.Field == "" {
		return col, fmt.Errorf("viewctl: column %q is missing a field", raw)
	}
	for _, flag := range parts[1:] {
		switch strings.ToLower(strings.TrimSpace(flag)) {
		case "sort", "sortable":
			col.Sortable = true
		case "filter", "filterable":
			col.Filterable = true
		default:
			return col, fmt.Errorf("viewctl: column %q has unknown flag %q", raw, flag)
		}
	}
	return col, nil
}

func upsertResource(doc *dataview.ManifestDocument, res dataview.ResourceConfig, overwrite bool) error {
	replaced := false
	for i := range doc.Resources {
		if doc.Resources[i].Code != res.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("viewctl: manifest already defines resource %s (use --overwrite to replace)", res.Code)
		}
		doc.Resources[i] = res
		replaced = true
	}
	if !replaced {
		doc.Resources = append(doc.Resources, res)
	}
	sort.Slice(doc.Resources, func(i, j int) bool {
		return doc.Resources[i].Code < doc.Resources[j].Code
	})
	return nil
}

func loadOrInitManifest(path string) (*dataview.ManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dataview.ManifestDocument{
				Version:   dataview.ManifestVersion,
				Resources: []dataview.ResourceConfig{},
				Source:    path,
			}, nil
		}
		return nil, fmt.Errorf("viewctl: stat manifest: %w", err)
	}
	return dataview.ReadManifest(path)
}

func writeManifest(path string, doc *dataview.ManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("viewctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("viewctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("viewctl: write manifest: %w", err)
	}
	return nil
}
