package oaiharvest

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// suffixLen is how many characters of a UUID are kept as the name suffix.
const suffixLen = 8

// maxSuffixAttempts bounds regeneration when a suffix collides within a run.
const maxSuffixAttempts = 16

// Disambiguator derives collision-resistant local file names of the form
// <stem>_<suffix><ext>. It remembers every name it has issued and is safe
// for concurrent use.
type Disambiguator struct {
	mu     sync.Mutex
	issued map[string]bool
	suffix func() string
}

// DisambiguatorOption configures a Disambiguator.
type DisambiguatorOption func(*Disambiguator)

// WithSuffixFunc replaces the UUID-based suffix source.
func WithSuffixFunc(fn func() string) DisambiguatorOption {
	return func(d *Disambiguator) {
		d.suffix = fn
	}
}

// NewDisambiguator returns a Disambiguator drawing suffixes from random UUIDs.
func NewDisambiguator(opts ...DisambiguatorOption) *Disambiguator {
	d := &Disambiguator{
		issued: make(map[string]bool),
		suffix: uuidSuffix,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func uuidSuffix() string {
	return uuid.NewString()[:suffixLen]
}

// Name returns a fresh local name for the file at rawURL, keeping the
// base name's stem and extension.
func (d *Disambiguator) Name(rawURL string) (string, error) {
	base, err := BaseName(rawURL)
	if err != nil {
		return "", err
	}
	return d.Resuffix(base)
}

// Resuffix inserts a fresh suffix between the stem and extension of name.
func (d *Disambiguator) Resuffix(name string) (string, error) {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < maxSuffixAttempts; i++ {
		candidate := stem + "_" + d.suffix() + ext
		if !d.issued[candidate] {
			d.issued[candidate] = true
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no unique name for %q after %d attempts", name, maxSuffixAttempts)
}

// BaseName returns the last path element of rawURL, ignoring query and fragment.
func BaseName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}
	return base, nil
}
