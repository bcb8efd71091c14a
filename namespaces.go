package oaiharvest

import "fmt"

// Namespaces holds the XML namespace URIs the extractor matches elements
// against. Fixture pages in tests may use their own URIs.
type Namespaces struct {
	// OAI is the OAI-PMH envelope namespace (record, resumptionToken, error).
	OAI string `mapstructure:"oai"`
	// OAIDC is the namespace of the oai_dc metadata container.
	OAIDC string `mapstructure:"oai_dc"`
	// DC is the Dublin Core element namespace (title, creator, ...).
	DC string `mapstructure:"dc"`
	// Atom is the feed-link namespace used for file links.
	Atom string `mapstructure:"atom"`
}

// DefaultNamespaces returns the standard OAI-PMH 2.0 namespace table.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		OAI:   "http://www.openarchives.org/OAI/2.0/",
		OAIDC: "http://www.openarchives.org/OAI/2.0/oai_dc/",
		DC:    "http://purl.org/dc/elements/1.1/",
		Atom:  "http://www.w3.org/2005/Atom",
	}
}

func (ns *Namespaces) setDefaults() {
	def := DefaultNamespaces()
	if ns.OAI == "" {
		ns.OAI = def.OAI
	}
	if ns.OAIDC == "" {
		ns.OAIDC = def.OAIDC
	}
	if ns.DC == "" {
		ns.DC = def.DC
	}
	if ns.Atom == "" {
		ns.Atom = def.Atom
	}
}

// qname returns an XPath name test matching local in namespace uri.
func qname(uri, local string) string {
	return fmt.Sprintf("*[local-name()='%s' and namespace-uri()='%s']", local, uri)
}
