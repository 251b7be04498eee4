// Package corpus turns destination records into aligned, normalized documents.
package corpus

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/textnorm"
)

// Entry is one positional row of the corpus.
type Entry struct {
	ID       string
	Category string
	Document string
}

// Corpus is the ordered set of normalized documents.
// Ids and documents share positions by construction.
type Corpus struct {
	entries []Entry
}

// Build turns records into corpus entries, preserving input order.
func Build(records []destination.Destination) Corpus {
	return build(records, Document)
}

// BuildContent is Build without the place name in the document.
// The category split evaluates on it.
func BuildContent(records []destination.Destination) Corpus {
	return build(records, ContentDocument)
}

func build(records []destination.Destination, doc func(*destination.Destination) string) Corpus {
	entries := make([]Entry, len(records))
	for i := range records {
		entries[i] = Entry{
			ID:       records[i].ID(),
			Category: records[i].Category(),
			Document: doc(&records[i]),
		}
	}
	return Corpus{entries: entries}
}

// FromEntries wraps already-built entries. The slice is copied.
func FromEntries(entries []Entry) Corpus {
	return Corpus{entries: append([]Entry(nil), entries...)}
}

// Document returns the normalized text of one record.
func Document(d *destination.Destination) string {
	f := d.TextFields()
	return textnorm.Normalize(strings.Join(f[:], " "))
}

// ContentDocument returns the normalized category, description and facilities.
func ContentDocument(d *destination.Destination) string {
	return textnorm.Normalize(strings.Join([]string{d.Category(), d.Description(), d.Facilities()}, " "))
}

// Len returns the number of entries.
func (c Corpus) Len() int { return len(c.entries) }

// Entry returns the i-th entry.
func (c Corpus) Entry(i int) Entry { return c.entries[i] }

// Entries returns a copy of all entries.
func (c Corpus) Entries() []Entry { return append([]Entry(nil), c.entries...) }

// Documents returns the documents in corpus order.
func (c Corpus) Documents() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Document
	}
	return out
}

// IDs returns the identifiers in corpus order.
func (c Corpus) IDs() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.ID
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c Corpus) Categories() []string {
	seen := make(map[string]struct{})
	for _, e := range c.entries {
		seen[e.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
