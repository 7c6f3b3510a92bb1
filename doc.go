// Package quickset is an in-process, in-memory search database for
// structured tabular data. Clients define typed tables, ingest rows
// and run five query shapes (exact match, prefix, tokenized
// full-text, numeric range and batch ID lookup) over columns backed
// by specialized indexes: hash, Bloom, trie, inverted and sorted.
//
// The core is memory-resident by design: there is no WAL, snapshotting
// or replication. Durable sources are expected to feed quickset, not
// the other way around; see the syncer package for the pull path from
// an external columnar database.
//
//	qs := quickset.New()
//	_ = qs.CreateTable(ctx, "users", []engine.Column{
//		{Name: "id", Type: storage.KindInt},
//		{Name: "name", Type: storage.KindString},
//	}, 0)
//	ids, _ := qs.Insert(ctx, "users", [][]storage.Value{
//		{storage.Int(1), storage.String("alice")},
//	})
//	rows, _ := qs.Search(ctx, "users", engine.Query{
//		Type: engine.SearchExact, Column: "name", Value: storage.String("alice"),
//	})
package quickset
