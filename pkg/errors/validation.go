package errors

import (
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// AspectRatios lists the rectangular aspect ratios (b/a) offered to users.
var AspectRatios = []float64{1, 2, 3, 4, 6, 8}

// ValidatePositive rejects NaN, infinite and non-positive values.
// name is used in the error message (e.g. "flow", "pressure drop").
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be greater than 0, got %g", name, v)
	}
	return nil
}

// ValidateAspectRatio ensures r is one of the supported ratios.
func ValidateAspectRatio(r float64) error {
	if err := ValidatePositive("aspect ratio", r); err != nil {
		return err
	}
	if !slices.Contains(AspectRatios, r) {
		return New(ErrCodeInvalidInput, "aspect ratio %g not supported (use one of 1, 2, 3, 4, 6, 8)", r)
	}
	return nil
}

// ValidateDrawingPath validates a drawing file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Extension must be .json
func ValidateDrawingPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return New(ErrCodeInvalidPath, "drawing files must have a .json extension: %q", path)
	}

	return nil
}

// ValidateDrawingID validates a document identifier used by drawing stores.
// IDs become file names, so separators and traversal sequences are rejected.
func ValidateDrawingID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "drawing ID cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "drawing ID too long (max 128 characters)")
	}
	if strings.ContainsAny(id, "/\\\x00") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "drawing ID contains invalid characters: %q", id)
	}
	return nil
}
