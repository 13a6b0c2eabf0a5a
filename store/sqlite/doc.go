// Package sqlite provides a store.BlobStore backed by a local SQLite database.
//
// It is the default backend of the mindcanvas CLI: the whole workspace lives in a
// single file on the local device.
//
//	s, err := sqlite.New(sqlite.Options{Path: "mindcanvas.db"})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	gw := store.NewGateway(s)
//
// Blobs are kept in one table (default "blobs") with a TEXT primary key, so each
// write-through is a single upsert.
package sqlite
