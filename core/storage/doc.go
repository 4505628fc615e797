// Package storage wraps the MinIO client used to archive raw channel payloads.
//
// The Client interface is the subset of *minio.Client the archive calls, so
// tests can substitute the testify mock in core/storage/mocks. It works
// against AWS S3 and self-hosted MinIO alike.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
