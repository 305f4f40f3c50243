// Package blobstore implements the Blob store external interface (spec
// §5): raw page bodies are uploaded under key "{doc_id}.html" with
// content-type text/html. Upload failures are logged but never affect
// task status (spec §7).
package blobstore

import "context"

type Store interface {
	Put(ctx context.Context, docID string, body []byte) error
}

func keyFor(docID string) string {
	return docID + ".html"
}
