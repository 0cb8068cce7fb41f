package storages

import "context"

// Record is a generated routine as persisted.
type Record struct {
	FunctionCode string `json:"function_code"`
	FunctionName string `json:"function_name"`
}

// Records maps identity keys to records.
type Records map[string]Record

type Store interface {
	// Load returns an empty mapping when nothing was persisted yet.
	Load(ctx context.Context) (Records, error)
	// Save replaces the whole persisted mapping.
	Save(ctx context.Context, records Records) error
	Close() error
}
