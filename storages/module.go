package storages

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/modes"
	"github.com/reusee/vague/vars"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}

type StoreKind string

const (
	StoreKindJSON   StoreKind = "json"
	StoreKindSQLite StoreKind = "sqlite"
)

func (Module) StoreKind(
	loader configs.Loader,
) StoreKind {
	return vars.FirstNonZero(
		configs.First[StoreKind](loader, "store_kind"),
		StoreKindJSON,
	)
}

type StorePath string

func (Module) StorePath(
	loader configs.Loader,
	kind StoreKind,
	workDir modes.WorkDir,
) StorePath {
	path := configs.First[string](loader, "store_path")
	if path == "" {
		switch kind {
		case StoreKindSQLite:
			path = "function_code.db"
		default:
			path = DefaultFileName
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(string(workDir), path)
	}
	return StorePath(path)
}

type GetStore func() (Store, error)

func (Module) GetStore(
	kind StoreKind,
	path StorePath,
	logger logs.Logger,
) GetStore {
	return sync.OnceValues(func() (Store, error) {
		logger.Info("code store",
			"kind", kind,
			"path", path,
		)
		switch kind {
		case StoreKindJSON:
			return NewJSONStore(string(path)), nil
		case StoreKindSQLite:
			return OpenSQLiteStore(string(path))
		}
		return nil, fmt.Errorf("unknown store kind: %s", kind)
	})
}
