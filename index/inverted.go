package index

import "github.com/hupe1980/quickset/model"

// InvertedIndex maps tokens to posting lists for full-text lookups.
// Text is tokenized with Tokenize; a row appears at most once per
// token. Empty posting lists are discarded on removal.
type InvertedIndex struct {
	postings map[string]*Postings
}

// NewInvertedIndex creates an empty inverted index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{postings: make(map[string]*Postings)}
}

// Insert adds the row to the posting list of each unique token of
// text.
func (ix *InvertedIndex) Insert(id model.RowID, text string) {
	for _, tok := range Tokenize(text) {
		ids, ok := ix.postings[tok]
		if !ok {
			ids = NewPostings()
			ix.postings[tok] = ids
		}
		ids.Add(id)
	}
}

// Remove subtracts the row from each token of text, discarding
// posting lists that empty.
func (ix *InvertedIndex) Remove(id model.RowID, text string) {
	for _, tok := range Tokenize(text) {
		ids, ok := ix.postings[tok]
		if !ok {
			continue
		}
		ids.Remove(id)
		if ids.IsEmpty() {
			delete(ix.postings, tok)
		}
	}
}

// QueryAll returns the rows present in every token's posting list
// (AND semantics). No tokens or any unknown token yields the empty
// set. The returned set is owned by the caller.
func (ix *InvertedIndex) QueryAll(tokens []string) *Postings {
	if len(tokens) == 0 {
		return NewPostings()
	}

	// Seed from the rarest token so the intersection shrinks fast.
	var seed *Postings
	for _, tok := range tokens {
		ids, ok := ix.postings[tok]
		if !ok {
			return NewPostings()
		}
		if seed == nil || ids.Cardinality() < seed.Cardinality() {
			seed = ids
		}
	}

	out := seed.Clone()
	for _, tok := range tokens {
		ids := ix.postings[tok]
		if ids == seed {
			continue
		}
		out.And(ids)
		if out.IsEmpty() {
			break
		}
	}
	return out
}

// QueryTerm returns a copy of the posting list for a single token, or
// the empty set when the token is unknown.
func (ix *InvertedIndex) QueryTerm(token string) *Postings {
	ids, ok := ix.postings[token]
	if !ok {
		return NewPostings()
	}
	return ids.Clone()
}

// Len returns the number of distinct tokens in the index.
func (ix *InvertedIndex) Len() int { return len(ix.postings) }
