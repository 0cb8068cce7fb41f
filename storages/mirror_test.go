package storages

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/modes"
)

type failingStore struct {
	Store
	fail bool
}

func (f *failingStore) Save(ctx context.Context, records Records) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, records)
}

func TestMirrorPutIfAbsent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	mirror, err := NewMirror(ctx, NewJSONStore(path))
	if err != nil {
		t.Fatal(err)
	}

	first := Record{FunctionCode: "first", FunctionName: "f"}
	got, inserted, err := mirror.Put(ctx, "k", first)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted || got != first {
		t.Fatal()
	}

	got, inserted, err = mirror.Put(ctx, "k", Record{FunctionCode: "second", FunctionName: "g"})
	if err != nil {
		t.Fatal(err)
	}
	if inserted || got != first {
		t.Fatalf("record replaced: %v", got)
	}

	// persisted immediately
	reloaded, err := NewMirror(ctx, NewJSONStore(path))
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := reloaded.Get("k"); !ok || r != first {
		t.Fatalf("got %v", r)
	}
}

func TestMirrorRollback(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{
		Store: NewJSONStore(filepath.Join(t.TempDir(), DefaultFileName)),
		fail:  true,
	}
	mirror, err := NewMirror(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := mirror.Put(ctx, "k", Record{FunctionCode: "x", FunctionName: "y"}); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := mirror.Get("k"); ok {
		t.Fatal("failed insert kept in memory")
	}
	store.fail = false
	if _, inserted, err := mirror.Put(ctx, "k", Record{FunctionCode: "x", FunctionName: "y"}); err != nil || !inserted {
		t.Fatal(err)
	}
}

func TestMirrorConcurrentPut(t *testing.T) {
	ctx := context.Background()
	mirror, err := NewMirror(ctx, NewJSONStore(filepath.Join(t.TempDir(), DefaultFileName)))
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	var mu sync.Mutex
	inserts := 0
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, inserted, err := mirror.Put(ctx, "k", Record{FunctionCode: "x", FunctionName: string(rune('a' + i))})
			if err != nil {
				t.Error(err)
				return
			}
			if inserted {
				mu.Lock()
				inserts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if inserts != 1 {
		t.Fatalf("got %d inserts", inserts)
	}
	if mirror.Len() != 1 {
		t.Fatal()
	}
}

func TestGetStore(t *testing.T) {
	for _, c := range []struct {
		config   string
		filename string
	}{
		{``, DefaultFileName},
		{`store_kind: "sqlite"`, "function_code.db"},
		{`store_kind: "json", store_path: "sub/routines.json"`, filepath.Join("sub", "routines.json")},
	} {
		loader := configs.NewSourceLoader("", configs.Source{
			Name:    "test.cue",
			Content: []byte(c.config),
		})
		dscope.New(
			modes.ForTest(t),
			new(Module),
			dscope.Provide(loader),
		).Call(func(
			path StorePath,
			workDir modes.WorkDir,
			getStore GetStore,
		) {
			if string(path) != filepath.Join(string(workDir), c.filename) {
				t.Fatalf("got %v", path)
			}
			store, err := getStore()
			if err != nil {
				t.Fatal(err)
			}
			defer store.Close()
			if err := store.Save(context.Background(), Records{}); err != nil {
				t.Fatal(err)
			}
		})
	}
}
