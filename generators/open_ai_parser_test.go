package generators

import (
	"reflect"
	"testing"
)

func TestOpenAIParserText(t *testing.T) {
	parser := new(OpenAIParser)

	contents, err := parser.Input(ChatCompletionStreamChoiceDelta{
		Content: "foo",
		Role:    string(RoleAssistant),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 0 {
		t.Fatal()
	}
	if _, err := parser.Input(ChatCompletionStreamChoiceDelta{
		Content: "bar",
	}); err != nil {
		t.Fatal(err)
	}

	contents, err = parser.End()
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %+v", contents)
	}
	if contents[0].Text() != "foobar" {
		t.Fatalf("got %+v", contents[0])
	}
}

func TestOpenAIParserToolCalls(t *testing.T) {
	parser := new(OpenAIParser)
	deltas := []ChatCompletionStreamChoiceDelta{
		{Role: string(RoleAssistant)},
		{ToolCalls: []ToolCall{{ID: "a", Type: "function", Function: FunctionCall{Name: "render_page"}}}},
		{ToolCalls: []ToolCall{{Function: FunctionCall{Arguments: `{"url":`}}}},
		{ToolCalls: []ToolCall{{Function: FunctionCall{Arguments: `"https://example.com"}`}}}},
		{ToolCalls: []ToolCall{{ID: "b", Type: "function", Function: FunctionCall{Name: "install_dependency", Arguments: `{"packages":["pandas"]}`}}}},
	}
	for _, delta := range deltas {
		if _, err := parser.Input(delta); err != nil {
			t.Fatal(err)
		}
	}
	contents, err := parser.End()
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %+v", contents)
	}
	calls := contents[0].Calls()
	expected := []FuncCall{
		{ID: "a", Name: "render_page", Args: map[string]any{"url": "https://example.com"}},
		{ID: "b", Name: "install_dependency", Args: map[string]any{"packages": []any{"pandas"}}},
	}
	if !reflect.DeepEqual(calls, expected) {
		t.Fatalf("got %+v", calls)
	}
}

func TestOpenAIParserBadArguments(t *testing.T) {
	parser := new(OpenAIParser)
	if _, err := parser.Input(ChatCompletionStreamChoiceDelta{
		ToolCalls: []ToolCall{{ID: "a", Function: FunctionCall{Name: "fetch_file", Arguments: `{"url"`}}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := parser.End(); err == nil {
		t.Fatal("expecting error")
	}
}
