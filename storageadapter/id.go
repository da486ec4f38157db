package storageadapter

import (
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// NewID returns a fresh map id starting with the adapter prefix
func NewID(prefix string) string {
	id := uuid.New()
	return prefix + base58.Encode(id[:])
}
