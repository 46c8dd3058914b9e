// Package gcsstore implements permalink.Store on Google Cloud Storage. Each
// tree is one object, gs://<bucket>/<prefix>/<id>.json.
package gcsstore

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"go.skia.org/flamechart/flamechart/go/permalink"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/go/now"
	"go.skia.org/flamechart/go/skerr"
	"go.skia.org/flamechart/go/sklog"
	"go.skia.org/flamechart/go/util"
)

// createdKey is the object metadata key holding the time the permalink was
// first stored.
const createdKey = "created"

// Store implements permalink.Store.
type Store struct {
	bucket *storage.BucketHandle
	prefix string
}

// New returns a Store writing to bucket under prefix. Client options are
// passed to storage.NewClient, e.g. option.WithEndpoint for an emulator.
func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Store, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, skerr.Wrapf(err, "Problem creating storage client")
	}
	return NewFromBucket(client.Bucket(bucket), prefix), nil
}

// NewFromBucket returns a Store using an existing bucket handle.
func NewFromBucket(bucket *storage.BucketHandle, prefix string) *Store {
	return &Store{
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *Store) objectName(id string) string {
	return path.Join(s.prefix, id+".json")
}

// Insert implements permalink.Store.
func (s *Store) Insert(ctx context.Context, tree *trace.VisualNode) (string, error) {
	id, b, err := permalink.ID(tree)
	if err != nil {
		return "", err
	}
	name := s.objectName(id)
	wr := s.bucket.Object(name).NewWriter(ctx)
	wr.ObjectAttrs.ContentType = "application/json"
	wr.ObjectAttrs.Metadata = map[string]string{
		createdKey: now.Now(ctx).UTC().Format(time.RFC3339),
	}
	if _, err := wr.Write(b); err != nil {
		return "", skerr.Wrapf(err, "Failed writing %s to GCS", name)
	}
	if err := wr.Close(); err != nil {
		return "", skerr.Wrapf(err, "Failed writing %s to GCS on close", name)
	}
	sklog.Infof("Stored permalink %s (%d bytes)", name, len(b))
	return id, nil
}

// Get implements permalink.Store.
func (s *Store) Get(ctx context.Context, id string) (*trace.VisualNode, error) {
	if !permalink.ValidID(id) {
		return nil, permalink.NotFound(id)
	}
	name := s.objectName(id)
	reader, err := s.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, permalink.NotFound(id)
	}
	if err != nil {
		return nil, skerr.Wrapf(err, "Can't load %s from GCS", name)
	}
	defer util.Close(reader)
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, skerr.Wrapf(err, "Failed reading %s from GCS", name)
	}
	return permalink.Decode(id, b)
}

// Confirm we implement the interface.
var _ permalink.Store = (*Store)(nil)
