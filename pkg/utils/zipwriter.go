package utils

import (
	"archive/zip"
	"fmt"
	"os"
	"path"
)

// ZipWriter streams one XML document per building into a zip file. Entry i
// is stored as moradia<i>/moradia<i>.xml, optionally under a top-level
// directory.
type ZipWriter struct {
	path   string
	prefix string
	file   *os.File
	zw     *zip.Writer
	count  int
}

// NewZipWriter creates the zip file at filePath. A non-empty prefix puts every
// entry under that directory.
func NewZipWriter(filePath, prefix string) (*ZipWriter, error) {
	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create zip %s: %w", filePath, err)
	}
	return &ZipWriter{
		path:   filePath,
		prefix: prefix,
		file:   f,
		zw:     zip.NewWriter(f),
	}, nil
}

// EntryName returns the name of document i inside the archive.
func (z *ZipWriter) EntryName(i int) string {
	dir := fmt.Sprintf("moradia%d", i)
	return path.Join(z.prefix, dir, dir+".xml")
}

// Add writes document i (1-based) to the archive.
func (z *ZipWriter) Add(i int, data []byte) error {
	w, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:   z.EntryName(i),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("failed to add entry %d: %w", i, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write entry %d: %w", i, err)
	}
	z.count++
	return nil
}

// Count returns the number of documents written.
func (z *ZipWriter) Count() int {
	return z.count
}

// Path returns the zip file path.
func (z *ZipWriter) Path() string {
	return z.path
}

// Close finishes the archive and closes the file.
func (z *ZipWriter) Close() error {
	if err := z.zw.Close(); err != nil {
		z.file.Close()
		return fmt.Errorf("failed to finish zip: %w", err)
	}
	return z.file.Close()
}

// Abort closes the archive and removes the partial file.
func (z *ZipWriter) Abort() error {
	z.zw.Close()
	z.file.Close()
	return RemoveIfExists(z.path)
}
