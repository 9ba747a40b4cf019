package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AllowedExtensions are the accepted upload extensions, without the dot.
var AllowedExtensions = []string{"csv"}

// DefaultMaxUploadSize is 2 GB.
const DefaultMaxUploadSize int64 = 2 * 1024 * 1024 * 1024

// ValidateUpload checks the name and size of an uploaded file. A maxSize of
// zero or less uses DefaultMaxUploadSize.
func ValidateUpload(name string, size, maxSize int64) *ValidationResult {
	result := NewResult()
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}

	if strings.TrimSpace(name) == "" {
		result.addError("file", "required", "Nenhum arquivo selecionado")
		return result
	}

	if !allowedExtension(name) {
		result.addError("file", "extension",
			fmt.Sprintf("Tipo de arquivo não permitido. Use: %s", strings.Join(AllowedExtensions, ", ")))
		return result
	}

	if size > maxSize {
		result.addError("file", "max_size",
			fmt.Sprintf("Arquivo muito grande. Máximo: %s", FormatSize(maxSize)))
		return result
	}

	if size == 0 {
		result.addError("file", "empty", "Arquivo CSV inválido ou corrompido")
	}

	return result
}

func allowedExtension(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// FormatSize renders a byte count with two decimals, e.g. "2.00 GB".
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f TB", value)
}
