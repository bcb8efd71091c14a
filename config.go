package oaiharvest

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// DefaultMetadataPrefix is the metadata format requested from the repository.
const DefaultMetadataPrefix = "oai_dc"

// Config describes one harvest run.
type Config struct {
	// BaseURL is the OAI-PMH endpoint. It may carry extra query parameters.
	BaseURL string `mapstructure:"base_url"`

	// Set is the setSpec to harvest; empty harvests the whole repository.
	Set string `mapstructure:"set"`

	// MetadataPrefix defaults to oai_dc.
	MetadataPrefix string `mapstructure:"metadata_prefix"`

	// OutputDir receives downloaded files and is archived at the end.
	OutputDir string `mapstructure:"output_dir"`

	// CSVPath is the tabular export path.
	CSVPath string `mapstructure:"csv"`

	// ArchivePath is the zip archive of OutputDir.
	ArchivePath string `mapstructure:"archive"`

	// XLSXPath, if set, also writes the records as a spreadsheet.
	XLSXPath string `mapstructure:"xlsx"`

	// SQLitePath, if set, also writes the records to a SQLite database.
	SQLitePath string `mapstructure:"sqlite"`

	// Extensions are the link suffixes that are downloaded.
	Extensions []string `mapstructure:"extensions"`

	// Concurrency bounds parallel file downloads within one page (default 1).
	Concurrency int `mapstructure:"concurrency"`

	// Retry applies to page and file requests.
	Retry RetryPolicy `mapstructure:"retry"`

	// Rename selects the post-harvest rename behavior.
	Rename RenameMode `mapstructure:"rename"`

	// VerifyPDF checks downloaded PDFs with pdfcpu.
	VerifyPDF bool `mapstructure:"verify_pdf"`

	// UserAgent is sent on every request when set.
	UserAgent string `mapstructure:"user_agent"`

	// Namespaces overrides the XML namespace table.
	Namespaces Namespaces `mapstructure:"namespaces"`
}

// DefaultConfig returns a Config with every optional field defaulted.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset optional fields. The CSV and archive names default
// to the output directory's name with .csv and .zip extensions, placed next
// to the directory.
func (c *Config) SetDefaults() {
	if c.MetadataPrefix == "" {
		c.MetadataPrefix = DefaultMetadataPrefix
	}
	if c.OutputDir == "" {
		c.OutputDir = "harvest"
	}
	base := strings.TrimSuffix(filepath.Clean(c.OutputDir), string(filepath.Separator))
	if c.CSVPath == "" {
		c.CSVPath = base + ".csv"
	}
	if c.ArchivePath == "" {
		c.ArchivePath = base + ".zip"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Retry.MaxAttempts < 1 {
		c.Retry.MaxAttempts = 1
	}
	if c.Rename == "" {
		c.Rename = RenameNone
	}
	c.Namespaces.setDefaults()
}

// Validate reports the first problem with the config. It wraps ErrConfig.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base url is required", ErrConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base url: %v", ErrConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base url scheme must be http or https, got %q", ErrConfig, u.Scheme)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output dir is required", ErrConfig)
	}
	if c.CSVPath == "" {
		return fmt.Errorf("%w: csv path is required", ErrConfig)
	}
	if c.ArchivePath == "" {
		return fmt.Errorf("%w: archive path is required", ErrConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", ErrConfig)
	}
	switch c.Rename {
	case RenameNone, RenameFiles:
	default:
		return fmt.Errorf("%w: unknown rename mode %q", ErrConfig, c.Rename)
	}
	return nil
}
