package oaiharvest

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/tmc/oaiharvest/internal/logger"
)

// HarvestState is the state threaded through the harvest loop.
type HarvestState struct {
	// Token is the continuation token for the next request; empty before the
	// first page and after the last.
	Token string

	// Records accumulates every record in the order it was encountered.
	Records []MetadataRecord

	Pages            int
	Downloaded       int
	FailedDownloads  int
	CompleteListSize int
}

// Progress is reported after each page.
type Progress struct {
	Pages            int
	Records          int
	Downloaded       int
	FailedDownloads  int
	CompleteListSize int
}

// Result summarizes a completed run.
type Result struct {
	Records         []MetadataRecord
	Pages           int
	Downloaded      int
	FailedDownloads int

	CSVPath        string
	ArchivePath    string
	ArchiveEntries int
	XLSXPath       string
	SQLitePath     string
}

// Harvester runs the page loop, downloads referenced files, and exports.
type Harvester struct {
	cfg       Config
	client    *Client
	extractor *Extractor
	fetcher   *Fetcher
	names     *Disambiguator
	exporter  *Exporter
	log       logger.Logger

	httpClient *http.Client
	progress   func(Progress)
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithLogger sets the logger for the harvester and its components.
func WithLogger(l logger.Logger) Option {
	return func(h *Harvester) {
		h.log = l
	}
}

// WithHTTP sets the HTTP client used for both page and file requests.
func WithHTTP(hc *http.Client) Option {
	return func(h *Harvester) {
		h.httpClient = hc
	}
}

// WithDisambiguator replaces the name disambiguator.
func WithDisambiguator(d *Disambiguator) Option {
	return func(h *Harvester) {
		h.names = d
	}
}

// WithProgress registers a callback invoked after every page.
func WithProgress(fn func(Progress)) Option {
	return func(h *Harvester) {
		h.progress = fn
	}
}

// New validates cfg and builds a Harvester.
func New(cfg Config, opts ...Option) (*Harvester, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Harvester{
		cfg:        cfg,
		log:        logger.NewNop(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.names == nil {
		h.names = NewDisambiguator()
	}

	h.client = NewClient(cfg, WithHTTPClient(h.httpClient), WithClientLogger(h.log))
	h.extractor = NewExtractor(cfg.Namespaces, cfg.Extensions)
	h.fetcher = NewFetcher(
		WithFetchHTTPClient(h.httpClient),
		WithFetchRetry(cfg.Retry),
		WithPDFVerification(cfg.VerifyPDF),
		WithUserAgent(cfg.UserAgent),
		WithFetchLogger(h.log),
	)
	h.exporter = NewExporter(WithExportLogger(h.log))
	return h, nil
}

// Run harvests every page, applies the rename pass, and writes the exports.
func (h *Harvester) Run(ctx context.Context) (*Result, error) {
	state, err := h.Harvest(ctx)
	if err != nil {
		return nil, err
	}

	if err := renamePass(h.cfg.Rename, h.cfg.OutputDir, state.Records, h.names, h.log); err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}

	res := &Result{
		Records:         state.Records,
		Pages:           state.Pages,
		Downloaded:      state.Downloaded,
		FailedDownloads: state.FailedDownloads,
	}

	if err := h.exporter.WriteCSV(h.cfg.CSVPath, state.Records); err != nil {
		return nil, err
	}
	res.CSVPath = h.cfg.CSVPath

	if h.cfg.XLSXPath != "" {
		if err := h.exporter.WriteXLSX(h.cfg.XLSXPath, state.Records); err != nil {
			return nil, err
		}
		res.XLSXPath = h.cfg.XLSXPath
	}
	if h.cfg.SQLitePath != "" {
		if err := h.exporter.WriteSQLite(ctx, h.cfg.SQLitePath, state.Records); err != nil {
			return nil, err
		}
		res.SQLitePath = h.cfg.SQLitePath
	}

	n, err := h.exporter.WriteArchive(h.cfg.OutputDir, h.cfg.ArchivePath)
	if err != nil {
		return nil, err
	}
	res.ArchivePath = h.cfg.ArchivePath
	res.ArchiveEntries = n
	return res, nil
}

// Harvest runs the page loop only. On a page-level failure it returns the
// state accumulated so far together with the error.
func (h *Harvester) Harvest(ctx context.Context) (*HarvestState, error) {
	state := &HarvestState{}

	for {
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		default:
		}

		body, err := h.client.ListRecords(ctx, state.Token)
		if err != nil {
			return state, fmt.Errorf("page %d: %w", state.Pages+1, err)
		}

		page, err := h.extractor.Parse(body)
		if err != nil {
			return state, fmt.Errorf("page %d: %w", state.Pages+1, err)
		}

		if page.NoFiles() {
			h.log.Info("no files to download on page", logger.Int("page", state.Pages+1))
		} else if err := h.fetchPage(ctx, page, state); err != nil {
			return state, fmt.Errorf("page %d: %w", state.Pages+1, err)
		}

		state.Records = append(state.Records, page.Records()...)
		state.Pages++
		if page.CompleteListSize > 0 {
			state.CompleteListSize = page.CompleteListSize
		}
		h.log.Info("page harvested",
			logger.Int("page", state.Pages),
			logger.Int("records", len(page.Entries)),
			logger.Int("total", len(state.Records)))
		h.report(state)

		if page.ResumptionToken == "" {
			state.Token = ""
			return state, nil
		}
		state.Token = page.ResumptionToken
	}
}

// fetchPage downloads every file referenced on page. Failures are logged and
// counted, never returned; only context cancellation aborts the page.
func (h *Harvester) fetchPage(ctx context.Context, page *Page, state *HarvestState) error {
	type outcome struct{ ok, failed int }
	outcomes := make([]outcome, len(page.Entries))

	var g errgroup.Group
	g.SetLimit(h.cfg.Concurrency)
	for i := range page.Entries {
		i := i // per-iteration copy (go1.21 loop semantics)
		entry := &page.Entries[i]
		if len(entry.Files) == 0 {
			continue
		}
		g.Go(func() error {
			// Files within one record are fetched in order; the last success
			// names the record.
			for _, href := range entry.Files {
				name, err := h.download(ctx, href)
				if err != nil {
					outcomes[i].failed++
					continue
				}
				entry.Record.FileName = name
				outcomes[i].ok++
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		state.Downloaded += o.ok
		state.FailedDownloads += o.failed
	}
	return ctx.Err()
}

func (h *Harvester) download(ctx context.Context, href string) (string, error) {
	name, err := h.names.Name(href)
	if err != nil {
		h.log.Warn("skipping file", logger.String("url", href), logger.Error(err))
		return "", err
	}
	dest := filepath.Join(h.cfg.OutputDir, name)
	n, err := h.fetcher.Fetch(ctx, href, dest)
	if err != nil {
		h.log.Warn("download failed", logger.String("url", href), logger.String("file", name), logger.Error(err))
		return "", err
	}
	h.log.Info("downloaded", logger.String("file", dest), logger.Int64("bytes", n))
	return name, nil
}

func (h *Harvester) report(state *HarvestState) {
	if h.progress == nil {
		return
	}
	h.progress(Progress{
		Pages:            state.Pages,
		Records:          len(state.Records),
		Downloaded:       state.Downloaded,
		FailedDownloads:  state.FailedDownloads,
		CompleteListSize: state.CompleteListSize,
	})
}
