package diff

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/Volune/jackrabbit-filevault/internal/core/checksum"
	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

// Result represents the comparison between rendered artifact content and
// the physical file it would be written to
type Result int

const (
	// FileUnchanged indicates the physical file already matches
	FileUnchanged Result = iota
	// FileAbsent indicates the physical file does not exist
	FileAbsent
	// FileChanged indicates the physical file exists but differs
	FileChanged
)

// Comparer decides whether a rendered artifact needs to be written
type Comparer interface {
	// Compare compares rendered content with the file at path.
	// Returns domain.ErrNotFile if path exists but is a directory.
	Compare(fs afero.Fs, path string, rendered []byte) (Result, error)
}

// ContentComparer uses size + checksum comparison. Size is checked first;
// equal sizes fall through to a streaming checksum of the physical file
// so unchanged artifacts never trigger a rewrite.
type ContentComparer struct {
	algo checksum.Algorithm
}

// NewContentComparer creates a comparer with the default algorithm
func NewContentComparer() *ContentComparer {
	return &ContentComparer{algo: checksum.SHA256}
}

// Compare implements the Comparer interface
func (c *ContentComparer) Compare(fs afero.Fs, path string, rendered []byte) (Result, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileAbsent, nil
		}
		return FileChanged, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return FileChanged, fmt.Errorf("%w: %s", domain.ErrNotFile, path)
	}

	if info.Size() != int64(len(rendered)) {
		return FileChanged, nil
	}

	// Same size: compare content checksums
	want, err := checksum.Sum(rendered, c.algo)
	if err != nil {
		return FileChanged, err
	}

	f, err := fs.Open(path)
	if err != nil {
		return FileChanged, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	got, err := checksum.Stream(f, c.algo)
	if err != nil {
		return FileChanged, err
	}

	if got == want {
		return FileUnchanged, nil
	}
	return FileChanged, nil
}
