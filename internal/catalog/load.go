package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/schemeqa/internal/model"
	"gopkg.in/yaml.v3"
)

// Load reads the scheme table and the category mapping named in cfg
func Load(cfg model.CatalogConfig) (*Catalog, error) {
	keyColumn := cfg.KeyColumn
	if keyColumn == "" {
		keyColumn = model.DefaultKeyColumn
	}

	records, err := loadRecordsFile(cfg.CSVPath, keyColumn)
	if err != nil {
		return nil, err
	}

	index, err := loadCategoriesFile(cfg.CategoriesPath)
	if err != nil {
		return nil, err
	}

	return New(records, index)
}

func loadRecordsFile(path, keyColumn string) ([]model.SchemeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	records, err := ReadRecords(f, keyColumn)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return records, nil
}

func loadCategoriesFile(path string) (model.CategoryIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	index, err := ReadCategories(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return index, nil
}

// ReadRecords parses a CSV scheme table. The first row is the header and
// keyColumn names the column holding the unique scheme name. Every other
// column becomes an attribute, in header order.
func ReadRecords(r io.Reader, keyColumn string) ([]model.SchemeRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Err: ErrEmptySource}
	}
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}

	// Spreadsheet exports often start with a UTF-8 BOM
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	keyIdx := -1
	for i, col := range header {
		if col == keyColumn {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, &LoadError{Line: 1, Err: fmt.Errorf("%w: %q", ErrMissingKeyColumn, keyColumn)}
	}

	var records []model.SchemeRecord
	seen := make(map[string]int)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &LoadError{Line: parseErr.Line, Err: parseErr.Err}
			}
			return nil, &LoadError{Err: err}
		}
		line, _ := reader.FieldPos(0)

		name := strings.TrimSpace(row[keyIdx])
		if name == "" {
			return nil, &LoadError{Line: line, Err: ErrEmptyKey}
		}
		if first, dup := seen[name]; dup {
			return nil, &LoadError{Line: line, Err: fmt.Errorf("%w: %q (first on line %d)", ErrDuplicateKey, name, first)}
		}
		seen[name] = line

		rec := model.SchemeRecord{
			Name:       name,
			KeyColumn:  keyColumn,
			Attributes: make([]model.Attribute, 0, len(header)-1),
		}
		for i, col := range header {
			if i == keyIdx {
				continue
			}
			rec.Attributes = append(rec.Attributes, model.Attribute{
				Key:   col,
				Value: strings.TrimSpace(row[i]),
			})
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, &LoadError{Err: ErrEmptySource}
	}

	return records, nil
}

type categoriesFile struct {
	Categories model.CategoryIndex `yaml:"categories"`
}

// ReadCategories parses the category mapping:
//
//	categories:
//	  - category: Grants
//	    schemes: [NP Emergency Grant]
func ReadCategories(r io.Reader) (model.CategoryIndex, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file categoriesFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, ErrNoCategories
		}
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	if len(file.Categories) == 0 {
		return nil, ErrNoCategories
	}

	seen := make(map[string]bool)
	for i, cat := range file.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w (entry %d)", ErrEmptyCategoryName, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = true
		file.Categories[i].Name = name
	}

	return file.Categories, nil
}
