package document

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FillForm writes values into the AcroForm fields of a form PDF and
// saves the result to outputPath. Values match by exact field name;
// fields without a value keep their current state. Returns the number
// of fields filled.
func FillForm(inputPath, outputPath string, values map[string]string) (int, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return 0, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return 0, fmt.Errorf("document has no form fields: %s", inputPath)
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return 0, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return 0, fmt.Errorf("document has no form fields: %s", inputPath)
	}

	// Viewers must regenerate the field appearances from the new
	// values instead of showing stale appearance streams.
	acroFormDict["NeedAppearances"] = types.Boolean(true)

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return 0, fmt.Errorf("document has no form fields: %s", inputPath)
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return 0, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	filled := 0
	for _, fieldRef := range fieldsArray {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}

		name := fieldName(ctx, fieldDict)
		if name == "" {
			continue
		}
		value, ok := values[name]
		if !ok {
			continue
		}

		fieldDict["V"] = types.StringLiteral(value)
		delete(fieldDict, "AP")
		filled++
	}

	if err := api.WriteContextFile(ctx, outputPath); err != nil {
		return 0, fmt.Errorf("failed to write filled PDF: %w", err)
	}

	return filled, nil
}
