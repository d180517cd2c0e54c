package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

const (
	importDir    = "import"
	processedDir = "import/processed"
)

// Scan returns CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves an imported file into import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	dstDir := filepath.Join(repoRoot, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	src := filepath.Join(repoRoot, importDir, fileName)
	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
