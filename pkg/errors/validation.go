package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxWidth bounds the side length of grids accepted from untrusted input.
const MaxWidth = 1 << 15

// ValidateWidth validates a grid side length.
// A width must be positive and no larger than MaxWidth.
func ValidateWidth(width int) error {
	if width <= 0 {
		return New(ErrCodeInvalidInput, "width must be positive, got %d", width)
	}
	if width > MaxWidth {
		return New(ErrCodeInvalidInput, "width too large (max %d), got %d", MaxWidth, width)
	}
	return nil
}

// ValidatePath validates a file path passed on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// imageExtensions lists the lossless formats a scrambled image can be written to.
// Lossy formats would alter pixel values and break the exact inverse.
var imageExtensions = map[string]bool{
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// ValidateImageFormat checks that path names a lossless image format.
func ValidateImageFormat(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !imageExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported image format %q (must be one of: png, bmp, tif, tiff)", ext)
	}
	return nil
}
