package debugs

import (
	"errors"
	"testing"
	"time"

	"go.starlark.net/starlark"
)

func TestToStarlarkValue(t *testing.T) {
	type report struct {
		URL      string
		Success  bool
		Elapsed  time.Duration
		Tasks    int
		internal int
	}

	dict := func(kvs ...any) starlark.Value {
		d := starlark.NewDict(len(kvs) / 2)
		for i := 0; i < len(kvs); i += 2 {
			d.SetKey(kvs[i].(starlark.Value), kvs[i+1].(starlark.Value))
		}
		return d
	}

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"bytes", []byte("abc"), starlark.Bytes("abc")},
		{"string", "hello", starlark.String("hello")},
		{"int", 42, starlark.MakeInt(42)},
		{"int32", int32(42), starlark.MakeInt(42)},
		{"uint8", uint8(42), starlark.MakeUint(42)},
		{"float64", 3.5, starlark.Float(3.5)},
		{"duration", 1500 * time.Millisecond, starlark.String("1.5s")},
		{"error", errors.New("boom"), starlark.String("boom")},
		{"json object", map[string]any{
			"status_code": 200,
			"response":    "ok",
		}, dict(
			starlark.String("status_code"), starlark.MakeInt(200),
			starlark.String("response"), starlark.String("ok"),
		)},
		{"json array", []any{1, "a", true}, starlark.NewList([]starlark.Value{
			starlark.MakeInt(1), starlark.String("a"), starlark.True,
		})},
		{"struct", report{
			URL:      "https://example.com/q1",
			Success:  true,
			Elapsed:  time.Second,
			Tasks:    2,
			internal: 1,
		}, dict(
			starlark.String("URL"), starlark.String("https://example.com/q1"),
			starlark.String("Success"), starlark.True,
			starlark.String("Elapsed"), starlark.String("1s"),
			starlark.String("Tasks"), starlark.MakeInt(2),
		)},
		{"nil pointer", (*report)(nil), starlark.None},
		{"pointer", &report{URL: "u"}, dict(
			starlark.String("URL"), starlark.String("u"),
			starlark.String("Success"), starlark.False,
			starlark.String("Elapsed"), starlark.String("0s"),
			starlark.String("Tasks"), starlark.MakeInt(0),
		)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := toStarlarkValue(tc.input)
			equal, err := starlark.Equal(actual, tc.expected)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if !equal {
				t.Errorf("toStarlarkValue(%#v) = %v, want %v", tc.input, actual, tc.expected)
			}
		})
	}

	t.Run("panic on unsupported type", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("toStarlarkValue did not panic on unsupported type")
			}
		}()
		toStarlarkValue(make(chan bool))
	})
}
