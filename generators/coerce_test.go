package generators

import (
	"errors"
	"reflect"
	"testing"
)

func TestVarsCoerce(t *testing.T) {
	params := Vars{
		{Name: "url", Type: TypeString},
		{Name: "count", Type: TypeInteger, Optional: true},
		{Name: "ratio", Type: TypeNumber, Optional: true},
		{Name: "flag", Type: TypeBoolean, Optional: true},
		{Name: "packages", Type: TypeArray, Optional: true, ItemType: &Var{Type: TypeString}},
		{Name: "payload", Type: TypeObject, Optional: true, Properties: Vars{
			{Name: "answer", Type: TypeAny},
		}},
	}

	got, err := params.Coerce(map[string]any{
		"url":      "https://example.com",
		"count":    float64(3),
		"ratio":    "0.5",
		"flag":     "true",
		"packages": "pandas",
		"payload": map[string]any{
			"answer": true,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	expected := map[string]any{
		"url":      "https://example.com",
		"count":    3,
		"ratio":    0.5,
		"flag":     true,
		"packages": []any{"pandas"},
		"payload": map[string]any{
			"answer": true,
		},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %#v", got)
	}

	if _, err := params.Coerce(map[string]any{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v", err)
	}
	if _, err := params.Coerce(map[string]any{
		"url":   "x",
		"count": 1.5,
	}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v", err)
	}
	if _, err := params.Coerce(map[string]any{
		"url":     "x",
		"payload": `{"answer": 42}`,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := params.Coerce(map[string]any{
		"url":     "x",
		"payload": []any{1},
	}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("got %v", err)
	}
}

func TestVarsSchemas(t *testing.T) {
	params := Vars{
		{Name: "url", Type: TypeString, Description: "page url"},
		{Name: "filename", Type: TypeString, Optional: true},
	}
	openai := params.ToOpenAI()
	if !reflect.DeepEqual(openai["required"], []string{"url"}) {
		t.Fatalf("got %v", openai["required"])
	}
	gemini := params.ToGemini()
	if len(gemini.Required) != 1 || gemini.Required[0] != "url" {
		t.Fatalf("got %v", gemini.Required)
	}
	if !gemini.Properties["filename"].Nullable {
		t.Fatal("optional should be nullable")
	}
}
