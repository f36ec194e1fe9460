package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/a3tai/pdf-field-mapper/internal/align"
	"github.com/a3tai/pdf-field-mapper/internal/document"
)

var (
	anchors      = flag.String("anchors", "", "Comma-separated anchor phrases (default: built-in list)")
	rowTolerance = flag.Float64("rowtolerance", 0, "Vertical tolerance for row grouping (default: 5)")
	maxFileSize  = flag.Int64("maxfilesize", 100*1024*1024, "Maximum PDF file size in bytes")
	fullOutput   = flag.Bool("full", false, "Write the full result (counters, transform) instead of the flat field map")
	fillOutput   = flag.String("fill", "", "Also write a copy of the target form with the mapped values filled in")
	quiet        = flag.Bool("quiet", false, "Suppress the completion report")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() < 3 {
		fmt.Fprintf(os.Stderr, "Error: source, target and output paths required\n\n")
		printUsage()
		os.Exit(1)
	}

	sourcePath := flag.Arg(0)
	targetPath := flag.Arg(1)
	outputPath := flag.Arg(2)

	cfg := align.DefaultConfig()
	if *anchors != "" {
		cfg.AnchorPhrases = splitList(*anchors)
	}
	if *rowTolerance > 0 {
		cfg.RowTolerance = *rowTolerance
	}

	result, err := run(sourcePath, targetPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutput(outputPath, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		printReport(sourcePath, targetPath, result)
	}

	if *fillOutput != "" {
		filled, err := document.FillForm(targetPath, *fillOutput, result.Fields)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error filling form: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Printf("  Filled: %d fields written to %s\n", filled, *fillOutput)
		}
	}
}

func run(sourcePath, targetPath string, cfg align.Config) (*align.Result, error) {
	loader := document.NewLoader(*maxFileSize)

	src, err := loader.Load(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load source document: %w", err)
	}
	tgt, err := loader.Load(targetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load target document: %w", err)
	}

	return align.NewMapper(cfg).Map(src, tgt)
}

func writeOutput(path string, result *align.Result) error {
	var payload any = result.Fields
	if *fullOutput {
		payload = result
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printReport(sourcePath, targetPath string, result *align.Result) {
	fmt.Printf("Mapping from: %s\n", sourcePath)
	fmt.Printf("        to:   %s\n", targetPath)
	fmt.Printf("  Transform: sx=%.3f, sy=%.3f, dx=%.1f, dy=%.1f\n",
		result.Transform.Sx, result.Transform.Sy, result.Transform.Dx, result.Transform.Dy)

	for _, warning := range result.Warnings {
		fmt.Printf("  Warning: %s\n", warning)
	}
	for _, page := range result.Pages {
		fmt.Printf("  Page %d: Mapped %d of %d fields.\n", page.Page+1, page.Mapped, page.Fields)
	}

	fmt.Printf("\n  Result: Mapped %d of %d fields.\n", result.MappedFields, result.TotalFields)
	if result.MissedFields > 0 {
		fmt.Printf("  Missed: %d fields (no text found in source).\n", result.MissedFields)
	} else {
		fmt.Println("  Perfect: All fields mapped!")
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printHelp() {
	fmt.Println("Map Fields - extract form field values from a filled PDF into a blank form's fields")
	fmt.Println()
	fmt.Println("Aligns the two documents with anchor-phrase calibration, projects every form")
	fmt.Println("field rectangle back into the source layout, and searches expanding windows")
	fmt.Println("across candidate pages for the text belonging to each field.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -anchors       Comma-separated anchor phrases for calibration")
	fmt.Println("  -rowtolerance  Vertical tolerance for reading-order row grouping")
	fmt.Println("  -maxfilesize   Maximum PDF file size in bytes")
	fmt.Println("  -full          Write the full result with counters and transform")
	fmt.Println("  -fill          Write a filled copy of the target form to the given path")
	fmt.Println("  -quiet         Suppress the completion report")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  map_fields filled_report.pdf blank_form.pdf mapped.json")
	fmt.Println("  map_fields -anchors=\"Name,Date of birth\" filled.pdf form.pdf out.json")
	fmt.Println("  map_fields -fill=filled_form.pdf filled.pdf form.pdf out.json")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  map_fields [OPTIONS] <source_pdf> <target_pdf> <output_json>")
}
