package tagging

import (
	"regexp"
	"strings"
)

var fieldSep = regexp.MustCompile(`\t+`)

// ParseOutput converts tagger records into triples. A record is kept only
// when splitting it on runs of tabs yields exactly three non-empty fields;
// anything else (SGML tags, blank lines, truncated records) is dropped.
func ParseOutput(records []string) []Triple {
	triples := make([]Triple, 0, len(records))
	for _, rec := range records {
		rec = strings.TrimRight(rec, "\r\n")
		if rec == "" {
			continue
		}
		fields := fieldSep.Split(rec, -1)
		if len(fields) != 3 {
			continue
		}
		if fields[0] == "" || fields[1] == "" || fields[2] == "" {
			continue
		}
		triples = append(triples, Triple{
			Original:   fields[0],
			TagType:    fields[1],
			Normalized: fields[2],
		})
	}
	return triples
}
