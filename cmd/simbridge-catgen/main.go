// Command simbridge-catgen generates property catalogs from YAML.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

func main() {
	catalogPath := flag.String("catalog", "", "Path to the catalog YAML")
	outputDir := flag.String("output", "", "Output directory for catalog_gen.go")
	flag.Parse()

	if *catalogPath == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: simbridge-catgen -catalog <path> -output <dir>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*catalogPath, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(catalogPath, outputDir string) error {
	cat, err := LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	code, err := GenerateCatalog(cat)
	if err != nil {
		return fmt.Errorf("generating catalog: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	outPath := filepath.Join(outputDir, "catalog_gen.go")
	if err := writeFormatted(outPath, code); err != nil {
		return err
	}
	fmt.Printf("  generated %s\n", outPath)
	return nil
}

// writeFormatted formats Go source with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Keep the raw output for debugging the templates.
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
