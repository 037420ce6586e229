// Package storage provides object storage for catalog media.
//
// It wraps the MinIO client (S3-compatible) behind the Client interface so
// features and tests can swap in mocks. The catalog core never reads the
// blobs themselves; it only stores the public URL strings produced by
// PublicURL after an upload.
package storage
