// =============================================================================
// Survey Address Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Upload storage and download lookup
//   - Output file naming
//   - Retention cleanup of generated files
//   - Directory management
//
// RETENTION STRATEGY:
//   - Uploaded inputs are removed by the caller once a run finishes
//   - Generated zips and CSVs stay in the download directory until they are
//     older than the retention period, then CleanOldFiles removes them
//   - Partial outputs of failed runs are removed immediately
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidFileName is returned for names that would leave their directory.
var ErrInvalidFileName = errors.New("invalid file name")

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// UploadDir is where uploaded survey files are stored.
	UploadDir string

	// DownloadDir is where generated outputs are written.
	DownloadDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(uploadDir, downloadDir string) *FileManager {
	return &FileManager{
		UploadDir:   uploadDir,
		DownloadDir: downloadDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.UploadDir, fm.DownloadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// UPLOADS AND DOWNLOADS
// =============================================================================

// SaveUpload stores an uploaded file under a unique name that keeps the
// original base name for readability.
//
// PARAMETERS:
//   - name: The client-supplied file name.
//   - r: The file content.
//
// RETURNS:
//   - The path of the stored file.
//   - An error if the file cannot be written.
func (fm *FileManager) SaveUpload(name string, r io.Reader) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "", ErrInvalidFileName
	}

	path := filepath.Join(fm.UploadDir, uuid.NewString()+"_"+base)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return path, nil
}

// DownloadPath resolves a file name inside the download directory. Names with
// path separators or parent references are rejected.
func (fm *FileManager) DownloadPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return filepath.Join(fm.DownloadDir, name), nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name, including its extension.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDDhhmmss)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (hhmmss)
//               {station}   - Supplying station code
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "moradias_xml_{station}_{timestamp}.zip"
//   params: {"station": "ETGR"}
//   output: "moradias_xml_ETGR_20240115143022.zip"
func GenerateOutputFileName(format string, params map[string]string) string {
	return generateOutputFileName(format, params, time.Now())
}

func generateOutputFileName(format string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.NewString()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeNamePart(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// maxReserveAttempts bounds the numbered variants tried by ReserveFile.
const maxReserveAttempts = 100

// ReserveFile creates an empty file named name inside dir and returns the
// name it got. When name is taken, "_1", "_2", ... is inserted before the
// extension. Two runs finishing in the same second therefore never share an
// output file.
func ReserveFile(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; i <= maxReserveAttempts; i++ {
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return candidate, f.Close()
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	return "", fmt.Errorf("no free name for %s in %s", name, dir)
}

// sanitizeNamePart replaces path separators and spaces in placeholder values.
func sanitizeNamePart(s string) string {
	return strings.NewReplacer("/", "_", `\`, "_", " ", "_").Replace(strings.TrimSpace(s))
}

// =============================================================================
// CLEANUP
// =============================================================================

// CleanOldFiles removes regular files directly inside dir whose modification
// time is older than maxAge. Subdirectories are left alone.
//
// PARAMETERS:
//   - dir: The directory to clean.
//   - maxAge: The maximum age of files to keep.
//
// RETURNS:
//   - The number of files removed.
//   - An error if the directory cannot be read or a file cannot be removed.
func CleanOldFiles(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
			}
			removed++
		}
	}

	return removed, nil
}

// RemoveIfExists deletes path, ignoring a missing file.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
