package quizconfigs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/modes"
)

func TestSettings(t *testing.T) {
	dir := t.TempDir()
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader([]string{"testdata/quizrun.cue"}, Schema)
		},
		func() OutputsDir {
			return OutputsDir(filepath.Join(dir, "outputs"))
		},
		func() FilesDir {
			return FilesDir(filepath.Join(dir, "files"))
		},
	).Call(func(
		secret Secret,
		email Email,
		ensureDirs EnsureDirs,
	) {
		if secret != "s3cret" {
			t.Fatalf("got %q", secret)
		}
		if email != "student@example.com" {
			t.Fatalf("got %q", email)
		}
		if err := ensureDirs(); err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{"outputs", "files"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Fatal(err)
			}
		}
	})
}

func TestDefaultDirs(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Fork(
		func() configs.Loader {
			return configs.NewLoader(nil, Schema)
		},
	).Call(func(
		files FilesDir,
		outputs OutputsDir,
	) {
		if files != "LLMFiles" || outputs != "outputs" {
			t.Fatalf("got %q %q", files, outputs)
		}
	})
}

func TestSchemaRejects(t *testing.T) {
	loader := configs.NewLoader([]string{"testdata/bad.cue"}, Schema)
	if _, err := loader.Paths(); err == nil {
		t.Fatal("expecting error")
	}
}
