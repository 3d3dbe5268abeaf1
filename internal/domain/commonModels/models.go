package commonModels

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/google/uuid"
)

// DocumentRef identifies one uploaded document in the blob store.
type DocumentRef struct {
	FileId     string `json:"file_id"`
	Filename   string `json:"filename"`
	StorageKey string `json:"storage_key"`
}

// StoredObjectMeta is what a listing returns for each stored object.
type StoredObjectMeta struct {
	StorageKey   string    `json:"storage_key"`
	LastModified time.Time `json:"last_modified"`
}

// NewDocumentRef builds a ref with a fresh UUIDv4 file id. The filename is
// reduced to its base name so it cannot escape the document prefix.
func NewDocumentRef(filename string) (DocumentRef, error) {
	return NewDocumentRefWithId(uuid.NewString(), filename)
}

func NewDocumentRefWithId(fileId, filename string) (DocumentRef, error) {
	if strings.TrimSpace(fileId) == "" {
		return DocumentRef{}, NewValidationError("file id is required")
	}
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return DocumentRef{}, NewValidationError("filename is required")
	}
	return DocumentRef{
		FileId:     fileId,
		Filename:   name,
		StorageKey: DocumentPrefix(fileId) + name,
	}, nil
}

// DocumentPrefix is the key prefix every object of one document lives under.
func DocumentPrefix(fileId string) string {
	return fmt.Sprintf("%s%s/", config.DocumentKeyPrefix, fileId)
}

// FileIdFromKey recovers the file id from a storage key, or "" when the key is
// not under the document prefix.
func FileIdFromKey(key string) string {
	rest, ok := strings.CutPrefix(key, config.DocumentKeyPrefix)
	if !ok {
		return ""
	}
	id, _, found := strings.Cut(rest, "/")
	if !found {
		return ""
	}
	return id
}
