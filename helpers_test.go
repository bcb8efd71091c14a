package oaiharvest

import (
	"fmt"
	"strings"
)

// oaiPage renders a ListRecords response around the given record elements.
// An empty token omits the resumptionToken element.
func oaiPage(token string, records ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <responseDate>2024-01-01T00:00:00Z</responseDate>
  <request verb="ListRecords">http://repo.test/oai</request>
  <ListRecords>
`)
	for _, r := range records {
		b.WriteString(r)
	}
	if token != "" {
		fmt.Fprintf(&b, "    <resumptionToken completeListSize=\"2\" cursor=\"0\">%s</resumptionToken>\n", token)
	}
	b.WriteString("  </ListRecords>\n</OAI-PMH>\n")
	return b.String()
}

// dcRecord renders one record. dc holds raw Dublin Core elements with the dc:
// prefix; links are emitted as atom:link hrefs inside the record.
func dcRecord(dc string, links ...string) string {
	var b strings.Builder
	b.WriteString(`    <record>
      <header><identifier>oai:repo.test:1</identifier></header>
      <metadata>
        <oai_dc:dc xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/" xmlns:dc="http://purl.org/dc/elements/1.1/">
`)
	b.WriteString(dc)
	b.WriteString("\n        </oai_dc:dc>\n      </metadata>\n")
	for _, l := range links {
		fmt.Fprintf(&b, "      <atom:link xmlns:atom=\"http://www.w3.org/2005/Atom\" rel=\"alternate\" href=\"%s\"/>\n", l)
	}
	b.WriteString("    </record>\n")
	return b.String()
}

// counter returns a suffix func yielding 00000001, 00000002, ...
func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%08d", n)
	}
}
