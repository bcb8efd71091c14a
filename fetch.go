package oaiharvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tmc/oaiharvest/internal/logger"
)

// chunkSize is the copy buffer used when streaming a download to disk.
const chunkSize = 32 * 1024

// Fetcher downloads single files to local storage.
type Fetcher struct {
	client    *http.Client
	userAgent string
	retry     RetryPolicy
	verifyPDF bool
	log       logger.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchHTTPClient sets the HTTP client used for downloads.
func WithFetchHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = hc
	}
}

// WithFetchRetry sets the retry policy for downloads.
func WithFetchRetry(p RetryPolicy) FetcherOption {
	return func(f *Fetcher) {
		f.retry = p
	}
}

// WithPDFVerification checks every downloaded .pdf with pdfcpu.
// A file that fails the check is kept; the failure is only logged.
func WithPDFVerification(enabled bool) FetcherOption {
	return func(f *Fetcher) {
		f.verifyPDF = enabled
	}
}

// WithUserAgent sets the User-Agent header on downloads.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithFetchLogger sets the fetcher's logger.
func WithFetchLogger(l logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = l
	}
}

// NewFetcher creates a Fetcher using http.DefaultClient.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: http.DefaultClient,
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL to dest, creating dest's directory as needed and
// overwriting any existing file. It returns the number of bytes written.
// Errors wrap ErrTransport or ErrFileSystem.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string) (int64, error) {
	var n int64
	err := f.retry.Do(ctx, func() error {
		written, err := f.fetchOnce(ctx, rawURL, dest)
		if err != nil {
			return err
		}
		n = written
		return nil
	}, func(err error, wait time.Duration) {
		f.log.Warn("download failed, retrying",
			logger.String("url", rawURL), logger.Duration("wait", wait), logger.Error(err))
	})
	if err != nil {
		return 0, err
	}

	if f.verifyPDF && strings.EqualFold(filepath.Ext(dest), ".pdf") {
		f.checkPDF(dest)
	}
	return n, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}

	// dest only ever holds a complete file.
	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}

	n, copyErr := io.CopyBuffer(out, resp.Body, make([]byte, chunkSize))
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("%w: read body: %w", ErrTransport, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrFileSystem, closeErr)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	return n, nil
}

func (f *Fetcher) checkPDF(path string) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		f.log.Warn("downloaded pdf failed verification", logger.String("path", path), logger.Error(err))
		return
	}
	f.log.Debug("verified pdf", logger.String("path", path))
}
