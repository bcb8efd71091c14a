package oaiharvest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tmc/oaiharvest/internal/logger"
)

// WriteArchive zips every regular file under dir into archivePath, naming
// entries by their slash-separated path relative to dir. An archive placed
// inside dir is not added to itself. A missing dir yields an empty archive.
// It returns the number of entries written.
func (e *Exporter) WriteArchive(dir, archivePath string) (int, error) {
	if err := ensureParent(archivePath); err != nil {
		return 0, err
	}
	absArchive, err := filepath.Abs(archivePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("%w: create archive: %w", ErrFileSystem, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	count := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && abs == absArchive {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		zw.Close()
		return 0, fmt.Errorf("%w: archive %s: %w", ErrFileSystem, dir, err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("%w: close archive: %w", ErrFileSystem, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("%w: close archive: %w", ErrFileSystem, err)
	}

	e.log.Info("archive created", logger.String("path", archivePath), logger.Int("entries", count))
	return count, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
