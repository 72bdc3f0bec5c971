package pipeline

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks github.com/dgallion1/docoutline/internal/pipeline Store

import (
	"context"

	"github.com/dgallion1/docoutline/internal/pathstore"
)

// Store is the content-hash outline cache. *pathstore.Client implements it.
type Store interface {
	GetOutline(ctx context.Context, hash string) (*pathstore.Entry, error)
	PutOutline(ctx context.Context, e pathstore.Entry) error
	DeleteOutline(ctx context.Context, hash string) error
}

var _ Store = (*pathstore.Client)(nil)
