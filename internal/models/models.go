// Package models holds the catalog of Perplexity models this server exposes.
package models

import (
	"strings"

	"github.com/ragstack/go-ragproxy/internal/config"
	"github.com/ragstack/go-ragproxy/internal/types"
)

var catalog = []types.Model{
	{ID: "sonar", Name: "Sonar", Description: "Standard Perplexity model"},
	{ID: "sonar-pro", Name: "Sonar Pro", Description: "Advanced Perplexity model"},
	{ID: "sonar-reasoning", Name: "Sonar Reasoning", Description: "Reasoning-focused Perplexity model"},
}

// Catalog returns the served model list.
func Catalog() []types.Model {
	out := make([]types.Model, len(catalog))
	copy(out, catalog)
	return out
}

// Normalize trims a requested model name, falling back to the default model
// when the request does not name one.
func Normalize(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return config.DefaultModel
	}
	return requested
}

// IsKnown reports whether the model is in the catalog, with a hint listing
// the available models for error messages.
func IsKnown(id string) (bool, string) {
	for _, m := range catalog {
		if m.ID == id {
			return true, ""
		}
	}
	ids := make([]string, len(catalog))
	for i, m := range catalog {
		ids[i] = m.ID
	}
	return false, strings.Join(ids, ", ")
}
