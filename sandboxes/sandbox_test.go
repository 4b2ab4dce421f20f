package sandboxes

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/modes"
	"github.com/reusee/quizrun/quizconfigs"
)

func TestWritablePaths(t *testing.T) {
	dir := t.TempDir()
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, quizconfigs.Schema)
		},
		func() quizconfigs.FilesDir {
			return quizconfigs.FilesDir(filepath.Join(dir, "files"))
		},
		func() quizconfigs.OutputsDir {
			return quizconfigs.OutputsDir(filepath.Join(dir, "files"))
		},
	).Call(func(
		paths WritablePaths,
	) {
		if !slices.Contains(paths, filepath.Join(dir, "files")) {
			t.Fatalf("got %v", paths)
		}
		if !slices.IsSorted(paths) {
			t.Fatalf("got %v", paths)
		}
		for i := 1; i < len(paths); i++ {
			if paths[i] == paths[i-1] {
				t.Fatalf("duplicated: %v", paths)
			}
		}
		for _, path := range paths {
			if !filepath.IsAbs(path) {
				t.Fatalf("not absolute: %s", path)
			}
		}
	})
}

func TestApplyDisabled(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, quizconfigs.Schema)
		},
		func() Enabled {
			return false
		},
	).Call(func(
		apply Apply,
	) {
		if err := apply(); err != nil {
			t.Fatal(err)
		}
	})
}
