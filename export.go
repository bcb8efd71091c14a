package oaiharvest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/tmc/oaiharvest/internal/logger"
)

// sheetName is the worksheet used for XLSX exports.
const sheetName = "records"

// Exporter writes harvested records and the downloaded files.
type Exporter struct {
	log logger.Logger
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithExportLogger sets the exporter's logger.
func WithExportLogger(l logger.Logger) ExporterOption {
	return func(e *Exporter) {
		e.log = l
	}
}

// NewExporter creates an Exporter.
func NewExporter(opts ...ExporterOption) *Exporter {
	e := &Exporter{log: logger.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteCSV writes a header row followed by one row per record.
func (e *Exporter) WriteCSV(path string, records []MetadataRecord) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create csv: %w", ErrFileSystem, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("%w: write csv: %w", ErrFileSystem, err)
	}
	for i := range records {
		if err := w.Write(records[i].Row()); err != nil {
			return fmt.Errorf("%w: write csv: %w", ErrFileSystem, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: write csv: %w", ErrFileSystem, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close csv: %w", ErrFileSystem, err)
	}

	e.log.Info("metadata saved", logger.String("path", path), logger.Int("rows", len(records)))
	return nil
}

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
func (e *Exporter) WriteXLSX(path string, records []MetadataRecord) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := setRow(f, 1, Columns); err != nil {
		return err
	}
	for i := range records {
		if err := setRow(f, i+2, records[i].Row()); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: save xlsx: %w", ErrFileSystem, err)
	}

	e.log.Info("spreadsheet saved", logger.String("path", path), logger.Int("rows", len(records)))
	return nil
}

func setRow(f *excelize.File, row int, vals []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &vals); err != nil {
		return fmt.Errorf("xlsx: row %d: %w", row, err)
	}
	return nil
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	return nil
}
