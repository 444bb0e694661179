// Package validation provides input validation utilities.
package validation

import (
	"fmt"

	"missnotes/internal/models"
)

// ValidateContent checks every block of a note body against its variant's
// payload shape. The returned error is a ValidationError naming the first
// offending field, e.g. "content[2].imageRef".
func ValidateContent(blocks []models.ContentBlock) error {
	for i, block := range blocks {
		if err := validateBlock(i, block); err != nil {
			return err
		}
	}
	return nil
}

func validateBlock(i int, block models.ContentBlock) error {
	switch block.Kind {
	case models.BlockKindText:
		if block.Lines == nil {
			return blockError(i, "lines", "text block requires a lines array")
		}
	case models.BlockKindList:
		if block.Items == nil {
			return blockError(i, "items", "list block requires an items array")
		}
	case models.BlockKindChecklist:
		if block.Checks == nil {
			return blockError(i, "items", "checklist block requires an items array")
		}
		for j, item := range block.Checks {
			if item.Text == "" {
				return blockError(i, fmt.Sprintf("items[%d].text", j),
					"checklist item requires a non-empty text")
			}
		}
	case models.BlockKindImage:
		if block.ImageRef == "" {
			return blockError(i, "imageRef", "image block requires a non-empty image reference")
		}
	case "":
		return blockError(i, "kind", "content block requires a kind")
	default:
		return blockError(i, "kind", fmt.Sprintf("unknown content block kind %q", block.Kind))
	}
	return nil
}

func blockError(i int, field, msg string) error {
	return models.NewValidationError(fmt.Sprintf("content[%d].%s: %s", i, field, msg))
}
