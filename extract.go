package oaiharvest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// DefaultExtensions are the file extensions downloaded when none are configured.
var DefaultExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// Page is one parsed ListRecords response.
type Page struct {
	// Entries holds one entry per record element, in document order.
	Entries []Entry

	// ResumptionToken is empty on the last page.
	ResumptionToken string

	// CompleteListSize and Cursor are copied from the token's attributes when present.
	CompleteListSize int
	Cursor           int
}

// Entry is a record together with the file links found inside it.
type Entry struct {
	Record MetadataRecord

	// Files are the link hrefs with an allowed extension, in document order.
	Files []string
}

// Records returns the page's records in order.
func (p *Page) Records() []MetadataRecord {
	out := make([]MetadataRecord, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Record
	}
	return out
}

// NoFiles reports that no record on the page references a downloadable file.
// It is informational; an empty page is not an error.
func (p *Page) NoFiles() bool {
	for _, e := range p.Entries {
		if len(e.Files) > 0 {
			return false
		}
	}
	return true
}

// Extractor parses OAI-PMH pages carrying oai_dc metadata.
type Extractor struct {
	ns   Namespaces
	exts []string

	recordExpr   string
	metadataExpr string
	linkExpr     string
	tokenExpr    string
	errorExpr    string
}

// NewExtractor returns an Extractor matching elements against ns and
// keeping links that end in one of exts. Empty arguments select the defaults.
func NewExtractor(ns Namespaces, exts []string) *Extractor {
	ns.setDefaults()
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &Extractor{
		ns:           ns,
		exts:         normalizeExtensions(exts),
		recordExpr:   "//" + qname(ns.OAI, "record"),
		metadataExpr: ".//" + qname(ns.OAIDC, "dc"),
		linkExpr:     ".//" + qname(ns.Atom, "link"),
		tokenExpr:    "//" + qname(ns.OAI, "resumptionToken"),
		errorExpr:    "//" + qname(ns.OAI, "error"),
	}
}

// Parse parses one page. A malformed page returns an error wrapping ErrParse
// and no records.
func (e *Extractor) Parse(body []byte) (*Page, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if perr, err := e.protocolError(doc); err != nil {
		return nil, err
	} else if perr != nil {
		if perr.Code == "noRecordsMatch" {
			return &Page{}, nil
		}
		return nil, perr
	}

	records, err := e.query(doc, e.recordExpr)
	if err != nil {
		return nil, err
	}

	page := &Page{Entries: make([]Entry, 0, len(records))}
	for _, rec := range records {
		entry, err := e.parseRecord(rec)
		if err != nil {
			return nil, err
		}
		page.Entries = append(page.Entries, entry)
	}

	tok, err := xmlquery.Query(doc, e.tokenExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if tok != nil {
		page.ResumptionToken = strings.TrimSpace(tok.InnerText())
		page.CompleteListSize, _ = strconv.Atoi(tok.SelectAttr("completeListSize"))
		page.Cursor, _ = strconv.Atoi(tok.SelectAttr("cursor"))
	}
	return page, nil
}

func (e *Extractor) protocolError(doc *xmlquery.Node) (*ProtocolError, error) {
	n, err := xmlquery.Query(doc, e.errorExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if n == nil {
		return nil, nil
	}
	return &ProtocolError{
		Code:    n.SelectAttr("code"),
		Message: strings.TrimSpace(n.InnerText()),
	}, nil
}

func (e *Extractor) parseRecord(rec *xmlquery.Node) (Entry, error) {
	var entry Entry
	r := &entry.Record

	// Deleted records carry a header only; they still yield an empty row.
	md, err := xmlquery.Query(rec, e.metadataExpr)
	if err != nil {
		return entry, fmt.Errorf("%w: %v", ErrParse, err)
	}

	fields := []struct {
		name   string
		single *string
		multi  *[]string
	}{
		{name: "title", single: &r.Title},
		{name: "creator", single: &r.Creator},
		{name: "subject", multi: &r.Subjects},
		{name: "date", single: &r.Date},
		{name: "format", multi: &r.Formats},
		{name: "identifier", multi: &r.Identifiers},
		{name: "description", multi: &r.Descriptions},
		{name: "relation", multi: &r.Relations},
	}
	for _, f := range fields {
		var vals []string
		if md != nil {
			nodes, err := e.query(md, qname(e.ns.DC, f.name))
			if err != nil {
				return entry, err
			}
			for _, n := range nodes {
				vals = append(vals, n.InnerText())
			}
		}
		if f.single != nil {
			if len(vals) > 0 {
				*f.single = vals[0]
			}
			continue
		}
		if vals == nil {
			vals = []string{}
		}
		*f.multi = vals
	}

	links, err := e.query(rec, e.linkExpr)
	if err != nil {
		return entry, err
	}
	for _, l := range links {
		href := l.SelectAttr("href")
		if e.Allowed(href) {
			entry.Files = append(entry.Files, href)
		}
	}
	return entry, nil
}

// Allowed reports whether href ends, ignoring case, in an allowed extension.
func (e *Extractor) Allowed(href string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	for _, ext := range e.exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (e *Extractor) query(top *xmlquery.Node, expr string) ([]*xmlquery.Node, error) {
	nodes, err := xmlquery.QueryAll(top, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: xpath %q: %v", ErrParse, expr, err)
	}
	return nodes, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
