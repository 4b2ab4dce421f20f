package debugs

import (
	"context"
	"maps"
	"slices"

	"github.com/reusee/quizrun/cmds"
	"github.com/reusee/quizrun/logs"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var tapFlag = cmds.Switch("-tap")

// TapEnabled gates the interactive REPL. It is off unless -tap is given.
type TapEnabled bool

func (Module) TapEnabled() TapEnabled {
	return TapEnabled(*tapFlag)
}

// Tap opens a starlark REPL on stdin with globals bound, then returns when
// the REPL reads EOF. It is a no-op when tapping is disabled.
type Tap func(ctx context.Context, what string, globals map[string]any)

func (Module) Tap(
	logger logs.Logger,
	enabled TapEnabled,
) Tap {
	return func(ctx context.Context, what string, globals map[string]any) {
		if !enabled {
			return
		}
		names := slices.Sorted(maps.Keys(globals))
		logger.InfoContext(ctx, "tap: "+what,
			"globals", names,
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		mappings := make(starlark.StringDict)
		for name, value := range globals {
			mappings[name] = toStarlarkValue(value)
		}

		thread := &starlark.Thread{
			Name: "tap",
		}
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, mappings)
	}
}
