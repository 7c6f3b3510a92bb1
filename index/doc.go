// Package index implements the five per-column index variants: hash
// (exact equality), Bloom (negative-authoritative gate), trie (prefix
// walks), inverted (tokenized full-text) and sorted (numeric range
// scans). All variants speak posting sets of row IDs backed by 64-bit
// Roaring bitmaps; none of them hold row data.
//
// Mutation is not synchronized here. The owning table serializes all
// index writes under its write lock and readers under its read lock,
// which keeps the invariant that every index reflects every live row
// observable at any point outside the lock.
package index
