package debugs

import (
	"testing"

	"github.com/reusee/dscope"
)

func TestTapDisabled(t *testing.T) {
	dscope.New(
		new(Module),
	).Fork(
		func() TapEnabled {
			return false
		},
	).Call(func(
		tap Tap,
	) {
		// returns immediately without reading stdin
		tap(t.Context(), "test", map[string]any{
			"foo": 42,
		})
	})
}
