// Package storage keeps shared files on local disk.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// URLPrefix is the public path under which stored files are served.
	URLPrefix = "/files/"

	tempFilePrefix  = "upload-tmp-"
	defaultFilename = "file.bin"
	maxBasenameLen  = 100
)

// Disk stores uploaded files under a single directory.
type Disk struct {
	dir string
}

// NewDisk creates the directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the directory files are stored in.
func (d *Disk) Dir() string {
	return d.dir
}

// Save writes r under a fresh unique name derived from filename and returns
// the public URL and the stored name.
func (d *Disk) Save(filename string, r io.Reader) (string, string, error) {
	stored := uuid.New().String()
	stored = strings.ReplaceAll(stored, "-", "") + "_" + SafeBasename(filename)
	target := filepath.Join(d.dir, stored)

	tmpFile, err := os.CreateTemp(d.dir, tempFilePrefix+"*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return "", "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), target); err != nil {
		return "", "", fmt.Errorf("failed to rename temp file to %s: %w", target, err)
	}

	return URLPrefix + stored, stored, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (d *Disk) Remove(stored string) error {
	err := os.Remove(filepath.Join(d.dir, filepath.Base(stored)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SafeBasename strips any directory part from name and keeps at most its
// last 100 characters.
func SafeBasename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return defaultFilename
	}
	if r := []rune(name); len(r) > maxBasenameLen {
		name = string(r[len(r)-maxBasenameLen:])
	}
	return name
}
