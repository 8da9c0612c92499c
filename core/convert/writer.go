package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
)

// validateTemplate checks the output template carries exactly one '%'
// placeholder for the book code.
func validateTemplate(template string) error {
	if strings.Count(template, "%") != 1 {
		return fmt.Errorf("output template %q needs exactly one %%: %w",
			template, converrors.ErrInvalidInput)
	}
	return nil
}

// PathForBook resolves the output path for a book code.
func PathForBook(template, code string) string {
	return strings.Replace(template, "%", code, 1)
}

// writeAtomic writes data to path through a temp file in the same
// directory, so readers never see a partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".usfm-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
