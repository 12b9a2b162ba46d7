// Package storage stores uploaded selfie images behind one interface so the
// backend (local disk vs cloud bucket) stays a deployment choice.
package storage

import "context"

// PhotoStore persists an image and returns the reference (URL or path) saved
// on the visitor record.
type PhotoStore interface {
	Save(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}
