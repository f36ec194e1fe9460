package document

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldType classifies an AcroForm field.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeSelect    FieldType = "select"
	FieldTypeButton    FieldType = "button"
	FieldTypeSignature FieldType = "signature"
	FieldTypeUnknown   FieldType = "unknown"
)

// FieldInfo describes one entry of a document's AcroForm field
// dictionary: name, type and current value. Geometry and page
// placement live on the Document's widgets; FieldInfo carries the
// form-level metadata the widget annotations do not.
type FieldInfo struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Value    string    `json:"value,omitempty"`
	Required bool      `json:"required"`
	ReadOnly bool      `json:"read_only"`
}

// FieldInventory reads the AcroForm field tree of a PDF file. Documents
// without an AcroForm yield an empty inventory, not an error.
func FieldInventory(path string) ([]FieldInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	inventory := make([]FieldInfo, 0, len(fieldsArray))
	for _, fieldRef := range fieldsArray {
		info, err := readField(ctx, fieldRef)
		if err != nil || info == nil {
			continue
		}
		inventory = append(inventory, *info)
	}

	return inventory, nil
}

// readField extracts one field dictionary entry.
func readField(ctx *model.Context, fieldObj types.Object) (*FieldInfo, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	info := &FieldInfo{Type: FieldTypeUnknown}

	info.Name = fieldName(ctx, fieldDict)
	if info.Name == "" {
		// Unnamed fields never participate in mapping.
		return nil, nil
	}

	info.Type = fieldType(ctx, fieldDict)

	if valueObj, found := fieldDict.Find("V"); found {
		info.Value = fieldValue(ctx, valueObj, info.Type)
	}

	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			info.ReadOnly = (*flags & 1) != 0
			info.Required = (*flags & 2) != 0
		}
	}

	return info, nil
}

// fieldName reads the partial field name from the T entry.
func fieldName(ctx *model.Context, fieldDict types.Dict) string {
	nameObj, found := fieldDict.Find("T")
	if !found {
		return ""
	}
	name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return name
}

// fieldType determines the field type from the FT entry, following the
// Parent chain for inherited types.
func fieldType(ctx *model.Context, fieldDict types.Dict) FieldType {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return fieldType(ctx, parentDict)
			}
		}
		return FieldTypeUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return FieldTypeUnknown
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 {
					return FieldTypeRadio
				}
				if (*flags & (1 << 16)) != 0 {
					return FieldTypeButton
				}
			}
		}
		return FieldTypeCheckbox
	case "Tx":
		return FieldTypeText
	case "Ch":
		return FieldTypeSelect
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

// fieldValue renders the field's current value as a string.
func fieldValue(ctx *model.Context, valueObj types.Object, ft FieldType) string {
	switch ft {
	case FieldTypeCheckbox, FieldTypeRadio:
		if name, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			return string(name)
		}
	default:
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
	}
	return ""
}
