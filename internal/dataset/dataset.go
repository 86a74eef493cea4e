// Package dataset reads and writes the JSON files the pipeline exchanges:
// the category reference file, raw offer exports and categorized results.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tayloree/foodcat/internal/categorize"
)

// ErrInvalidInput is returned when a file does not match the expected shape.
var ErrInvalidInput = errors.New("invalid input")

// LoadCategories reads a category reference file: a JSON array of
// {"category": ..., "items": [...]}. Items are trimmed and blank items dropped.
func LoadCategories(path string) ([]categorize.CategoryDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()
	return DecodeCategories(f)
}

// DecodeCategories decodes and validates category definitions.
func DecodeCategories(r io.Reader) ([]categorize.CategoryDefinition, error) {
	var raw []categorize.CategoryDefinition
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrInvalidInput, err)
	}

	defs := make([]categorize.CategoryDefinition, 0, len(raw))
	for i, def := range raw {
		name := strings.TrimSpace(def.Category)
		if name == "" {
			return nil, fmt.Errorf("%w: category at index %d has no name", ErrInvalidInput, i)
		}
		items := make([]string, 0, len(def.Items))
		for _, item := range def.Items {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		defs = append(defs, categorize.CategoryDefinition{Category: name, Items: items})
	}
	return defs, nil
}

// LoadOffers reads a JSON array of offers.
func LoadOffers(path string) ([]categorize.Offer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening offers: %w", err)
	}
	defer f.Close()
	return DecodeOffers(f)
}

// DecodeOffers decodes offers one element at a time so a wrongly typed
// field is reported with the index of the offending offer.
func DecodeOffers(r io.Reader) ([]categorize.Offer, error) {
	elems, err := decodeArray(r)
	if err != nil {
		return nil, err
	}

	offers := make([]categorize.Offer, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &offers[i]); err != nil {
			return nil, fmt.Errorf("%w: offer %d: %s", ErrInvalidInput, i, describe(err))
		}
	}
	return offers, nil
}

// LoadCategorized reads previously categorized offers.
func LoadCategorized(path string) ([]categorize.CategorizedOffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categorized offers: %w", err)
	}
	defer f.Close()

	elems, err := decodeArray(f)
	if err != nil {
		return nil, err
	}
	out := make([]categorize.CategorizedOffer, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &out[i]); err != nil {
			return nil, fmt.Errorf("%w: offer %d: %s", ErrInvalidInput, i, describe(err))
		}
		if len(out[i].Categories) == 0 {
			return nil, fmt.Errorf("%w: offer %d has no categories", ErrInvalidInput, i)
		}
		if out[i].MatchedItems == nil {
			out[i].MatchedItems = []categorize.MatchCandidate{}
		}
	}
	return out, nil
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func decodeArray(r io.Reader) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.NewDecoder(r).Decode(&elems); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array: %v", ErrInvalidInput, err)
	}
	return elems, nil
}

func describe(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field %q must be %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return err.Error()
}
