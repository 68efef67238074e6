// Package tagging extracts part-of-speech tags from text.
//
// An Engine produces raw records in the tagger line format
// ("original<TAB>tag<TAB>lemma"); ParseOutput turns them into Triples and
// Extractor combines the two for callers that only care about the result.
// The only production Engine is TreeTagger, which shells out to the
// per-language tree-tagger wrapper scripts.
package tagging
