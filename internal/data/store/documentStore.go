package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
)

// DocumentStore is the blob store behind uploads and the retention sweep.
// Get returns commonModels.ErrNotFound for a missing key. ListByPrefix yields
// lazily page by page; an error ends the sequence.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte) error
	ListByPrefix(ctx context.Context, prefix string) iter.Seq2[commonModels.StoredObjectMeta, error]
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// SaveDocument stores an upload under a fresh file id.
func SaveDocument(ctx context.Context, s DocumentStore, filename string, data []byte) (commonModels.DocumentRef, error) {
	ref, err := commonModels.NewDocumentRef(filename)
	if err != nil {
		return commonModels.DocumentRef{}, err
	}
	if err := s.Put(ctx, ref.StorageKey, data); err != nil {
		return commonModels.DocumentRef{}, commonModels.NewUpstreamError("storage", fmt.Errorf("put %s: %w", ref.StorageKey, err))
	}
	return ref, nil
}

// FindDocument loads the first object stored under the file id's prefix.
func FindDocument(ctx context.Context, s DocumentStore, fileId string) (commonModels.DocumentRef, []byte, error) {
	if fileId == "" {
		return commonModels.DocumentRef{}, nil, commonModels.NewValidationError("file_id is required")
	}
	for meta, err := range s.ListByPrefix(ctx, commonModels.DocumentPrefix(fileId)) {
		if err != nil {
			return commonModels.DocumentRef{}, nil, commonModels.NewUpstreamError("storage", err)
		}
		data, err := s.Get(ctx, meta.StorageKey)
		if err != nil {
			if errors.Is(err, commonModels.ErrNotFound) {
				return commonModels.DocumentRef{}, nil, fmt.Errorf("document %s: %w", fileId, commonModels.ErrNotFound)
			}
			return commonModels.DocumentRef{}, nil, commonModels.NewUpstreamError("storage", err)
		}
		ref := commonModels.DocumentRef{
			FileId:     fileId,
			Filename:   meta.StorageKey[len(commonModels.DocumentPrefix(fileId)):],
			StorageKey: meta.StorageKey,
		}
		return ref, data, nil
	}
	return commonModels.DocumentRef{}, nil, fmt.Errorf("document %s: %w", fileId, commonModels.ErrNotFound)
}

// DeleteDocument removes every object under the file id's prefix and returns
// how many were deleted. ErrNotFound when there was nothing to delete.
func DeleteDocument(ctx context.Context, s DocumentStore, fileId string) (int, error) {
	if fileId == "" {
		return 0, commonModels.NewValidationError("file_id is required")
	}
	var keys []string
	for meta, err := range s.ListByPrefix(ctx, commonModels.DocumentPrefix(fileId)) {
		if err != nil {
			return 0, commonModels.NewUpstreamError("storage", err)
		}
		keys = append(keys, meta.StorageKey)
	}
	if len(keys) == 0 {
		return 0, fmt.Errorf("document %s: %w", fileId, commonModels.ErrNotFound)
	}
	deleted := 0
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return deleted, commonModels.NewUpstreamError("storage", fmt.Errorf("delete %s: %w", key, err))
		}
		deleted++
	}
	return deleted, nil
}
