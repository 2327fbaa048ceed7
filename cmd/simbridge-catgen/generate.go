package main

import "strings"

// GenerateCatalog renders the Go source for a catalog.
func GenerateCatalog(cat *RawCatalog) (string, error) {
	if err := ValidateCatalog(cat); err != nil {
		return "", err
	}

	var b strings.Builder
	renderTemplate(&b, "header", cat)
	renderTemplate(&b, "ids", cat)
	renderTemplate(&b, "catalog", cat)
	return b.String(), nil
}
