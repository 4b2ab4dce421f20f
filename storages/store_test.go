package storages

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/modes"
)

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "reports.db")
	dscope.New(
		modes.ForTest(t),
		new(Module),
		func() configs.Loader {
			return configs.NewLoader(nil, "")
		},
	).Fork(
		func() Path {
			return Path(path)
		},
	).Call(func(
		getStore GetStore,
	) {
		store, err := getStore()
		if err != nil {
			t.Fatal(err)
		}

		type report struct {
			ID      string `json:"id"`
			Success bool   `json:"success"`
		}
		var got report
		ok, err := store.Get("reports", "r1", &got)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expecting absent")
		}

		if err := store.Put("reports", "r1", report{ID: "r1", Success: true}); err != nil {
			t.Fatal(err)
		}
		ok, err = store.Get("reports", "r1", &got)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || got.ID != "r1" || !got.Success {
			t.Fatalf("got %v %+v", ok, got)
		}

		// survives reopening
		if err := store.Close(); err != nil {
			t.Fatal(err)
		}
		reopened, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer reopened.Close()
		got = report{}
		ok, err = reopened.Get("reports", "r1", &got)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || got.ID != "r1" {
			t.Fatalf("got %v %+v", ok, got)
		}
	})
}

func TestStoreDisabled(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
		func() configs.Loader {
			return configs.NewLoader(nil, "")
		},
	).Call(func(
		getStore GetStore,
	) {
		if _, err := getStore(); !errors.Is(err, ErrDisabled) {
			t.Fatalf("got %v", err)
		}
	})
}
