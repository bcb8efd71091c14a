package oaiharvest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmc/oaiharvest/internal/logger"
)

// RenameMode selects what happens to file names after the harvest loop.
type RenameMode string

const (
	// RenameNone keeps the names assigned at download time.
	RenameNone RenameMode = "none"

	// RenameFiles gives every downloaded file a second fresh suffix and
	// renames it on disk so the export and the directory stay in sync.
	RenameFiles RenameMode = "files"
)

// renamePass applies mode to every record with a file. A file that cannot
// be renamed keeps its old name in both places.
func renamePass(mode RenameMode, dir string, records []MetadataRecord, names *Disambiguator, log logger.Logger) error {
	if mode != RenameFiles {
		return nil
	}
	for i := range records {
		r := &records[i]
		if !r.HasFile() {
			continue
		}
		renamed, err := names.Resuffix(r.FileName)
		if err != nil {
			return err
		}
		from := filepath.Join(dir, r.FileName)
		to := filepath.Join(dir, renamed)
		if err := os.Rename(from, to); err != nil {
			log.Warn("rename failed, keeping name",
				logger.String("from", from), logger.String("to", to), logger.Error(err))
			continue
		}
		r.FileName = renamed
	}
	return nil
}

// String implements fmt.Stringer and pflag.Value.
func (m RenameMode) String() string { return string(m) }

// Set implements pflag.Value.
func (m *RenameMode) Set(s string) error {
	switch RenameMode(s) {
	case RenameNone, RenameFiles:
		*m = RenameMode(s)
		return nil
	}
	return fmt.Errorf("rename mode must be %q or %q", RenameNone, RenameFiles)
}

// Type implements pflag.Value.
func (m *RenameMode) Type() string { return "rename-mode" }
