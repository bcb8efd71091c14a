package oaiharvest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Parse_Fields(t *testing.T) {
	page := oaiPage("", dcRecord(`
          <dc:title>Report A</dc:title>
          <dc:title>Second title</dc:title>
          <dc:creator>Couto, Alpia</dc:creator>
          <dc:subject>Education</dc:subject>
          <dc:subject>History</dc:subject>
          <dc:subject>Espírito Santo</dc:subject>
          <dc:date>1950</dc:date>
          <dc:format>image/jpeg</dc:format>
          <dc:identifier>BR ES APEES 001</dc:identifier>
          <dc:identifier>http://repo.test/item/1</dc:identifier>
          <dc:description>A letter.</dc:description>
          <dc:relation>Fundo Alpia Couto</dc:relation>`))

	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(page))
	require.NoError(t, err)
	require.Len(t, p.Entries, 1)

	r := p.Entries[0].Record
	assert.Equal(t, "Report A", r.Title)
	assert.Equal(t, "Couto, Alpia", r.Creator)
	assert.Equal(t, []string{"Education", "History", "Espírito Santo"}, r.Subjects)
	assert.Equal(t, "1950", r.Date)
	assert.Equal(t, []string{"image/jpeg"}, r.Formats)
	assert.Equal(t, []string{"BR ES APEES 001", "http://repo.test/item/1"}, r.Identifiers)
	assert.Equal(t, []string{"A letter."}, r.Descriptions)
	assert.Equal(t, []string{"Fundo Alpia Couto"}, r.Relations)
	assert.Empty(t, r.FileName)
	assert.Empty(t, p.ResumptionToken)
	assert.True(t, p.NoFiles())
}

func TestExtractor_Parse_MissingFields(t *testing.T) {
	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(oaiPage("", dcRecord(""))))
	require.NoError(t, err)
	require.Len(t, p.Entries, 1)

	r := p.Entries[0].Record
	assert.Empty(t, r.Title)
	assert.Empty(t, r.Creator)
	assert.Empty(t, r.Date)
	assert.NotNil(t, r.Subjects)
	assert.Empty(t, r.Subjects)
	assert.NotNil(t, r.Relations)
	assert.Empty(t, r.Relations)
}

func TestExtractor_Parse_SubjectCount(t *testing.T) {
	for _, n := range []int{0, 1, 5, 20} {
		dc := ""
		want := []string{}
		for i := 0; i < n; i++ {
			s := string(rune('a' + i))
			dc += "<dc:subject>" + s + "</dc:subject>"
			want = append(want, s)
		}
		p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(oaiPage("", dcRecord(dc))))
		require.NoError(t, err)
		assert.Equal(t, want, p.Entries[0].Record.Subjects, "n=%d", n)
	}
}

func TestExtractor_Parse_Links(t *testing.T) {
	page := oaiPage("", dcRecord(`<dc:title>x</dc:title>`,
		"http://x/doc.PDF",
		"http://x/notes.docx",
		"http://x/page",
		"http://x/scan.jpeg",
	))

	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://x/doc.PDF", "http://x/scan.jpeg"}, p.Entries[0].Files)
	assert.False(t, p.NoFiles())
}

func TestExtractor_Parse_LinksScopedToRecord(t *testing.T) {
	page := oaiPage("",
		dcRecord(`<dc:title>one</dc:title>`, "http://x/one.pdf"),
		dcRecord(`<dc:title>two</dc:title>`),
	)
	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(page))
	require.NoError(t, err)
	require.Len(t, p.Entries, 2)
	assert.Equal(t, []string{"http://x/one.pdf"}, p.Entries[0].Files)
	assert.Empty(t, p.Entries[1].Files)
}

func TestExtractor_Parse_ResumptionToken(t *testing.T) {
	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(oaiPage("  TOK1\n", dcRecord(""))))
	require.NoError(t, err)
	assert.Equal(t, "TOK1", p.ResumptionToken)
	assert.Equal(t, 2, p.CompleteListSize)
	assert.Equal(t, 0, p.Cursor)
}

func TestExtractor_Parse_EmptyPage(t *testing.T) {
	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(oaiPage("")))
	require.NoError(t, err)
	assert.Empty(t, p.Entries)
	assert.Empty(t, p.Records())
	assert.True(t, p.NoFiles())
}

func TestExtractor_Parse_NoRecordsMatch(t *testing.T) {
	body := `<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <error code="noRecordsMatch">no records</error>
</OAI-PMH>`
	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, p.Entries)
	assert.Empty(t, p.ResumptionToken)
}

func TestExtractor_Parse_ProtocolError(t *testing.T) {
	body := `<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <error code="badResumptionToken">expired</error>
</OAI-PMH>`
	_, err := NewExtractor(Namespaces{}, nil).Parse([]byte(body))
	require.Error(t, err)

	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "badResumptionToken", perr.Code)
	assert.Equal(t, "expired", perr.Message)
	assert.ErrorIs(t, err, ErrParse)
}

func TestExtractor_Parse_Malformed(t *testing.T) {
	body := `<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/"><ListRecords><record></ListRecords>`
	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(body))
	assert.ErrorIs(t, err, ErrParse)
	assert.Nil(t, p)
}

func TestExtractor_Parse_Idempotent(t *testing.T) {
	page := []byte(oaiPage("TOK", dcRecord(`<dc:title>A</dc:title><dc:subject>s</dc:subject>`, "http://x/a.png")))
	ex := NewExtractor(Namespaces{}, nil)

	first, err := ex.Parse(page)
	require.NoError(t, err)
	second, err := ex.Parse(page)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractor_Parse_IgnoresOtherNamespaces(t *testing.T) {
	body := `<OAI-PMH xmlns="http://www.openarchives.org/OAI/2.0/">
  <ListRecords>
    <record>
      <metadata>
        <oai_dc:dc xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:x="urn:other">
          <x:title>wrong</x:title>
          <dc:title>right</dc:title>
        </oai_dc:dc>
      </metadata>
      <link href="http://x/plain.pdf"/>
    </record>
  </ListRecords>
</OAI-PMH>`
	p, err := NewExtractor(Namespaces{}, nil).Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "right", p.Entries[0].Record.Title)
	// The link is in the OAI namespace, not Atom.
	assert.Empty(t, p.Entries[0].Files)
}

func TestExtractor_CustomNamespaces(t *testing.T) {
	body := `<r:OAI-PMH xmlns:r="urn:test:oai" xmlns:d="urn:test:dc" xmlns:c="urn:test:container" xmlns:l="urn:test:link">
  <r:ListRecords>
    <r:record>
      <c:dc><d:title>custom</d:title></c:dc>
      <l:link href="http://x/a.pdf"/>
    </r:record>
    <r:resumptionToken>next</r:resumptionToken>
  </r:ListRecords>
</r:OAI-PMH>`
	ns := Namespaces{OAI: "urn:test:oai", OAIDC: "urn:test:container", DC: "urn:test:dc", Atom: "urn:test:link"}
	p, err := NewExtractor(ns, nil).Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, p.Entries, 1)
	assert.Equal(t, "custom", p.Entries[0].Record.Title)
	assert.Equal(t, []string{"http://x/a.pdf"}, p.Entries[0].Files)
	assert.Equal(t, "next", p.ResumptionToken)
}

func TestExtractor_Allowed(t *testing.T) {
	ex := NewExtractor(Namespaces{}, []string{"pdf", " .PNG "})
	tests := []struct {
		href string
		want bool
	}{
		{"http://x/doc.pdf", true},
		{"http://x/doc.PDF", true},
		{"http://x/img.png", true},
		{"http://x/img.jpg", false},
		{"http://x/doc.docx", false},
		{"http://x/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Allowed(tt.href))
		})
	}
}
