package generators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/configs"
	"github.com/reusee/quizrun/modes"
	"github.com/reusee/quizrun/vars"
)

func TestOpenAIGenerate(t *testing.T) {
	var got ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Error(err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range []string{
			`{"choices":[{"delta":{"role":"assistant","content":"Let me look."}}]}`,
			`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"render_page","arguments":""}}]}}]}`,
			`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"url\":\"https://example.com/q1\"}"}}]}}]}`,
			`{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
			`{"choices":[],"usage":{"prompt_tokens":10,"completion_tokens":5}}`,
		} {
			fmt.Fprintf(w, "data: %s\n\n", line)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	dscope.New(
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
		new(Module),
	).Call(func(
		newOpenAI NewOpenAI,
	) {
		generator := newOpenAI(GeneratorArgs{
			BaseURL: server.URL + "/v1",
			Model:   "test",
		}, "key")

		conv, err := NewConversation(
			NewText(RoleSystem, "system"),
			NewText(RoleUser, "Solve the quiz at this URL: https://example.com/q1"),
		)
		if err != nil {
			t.Fatal(err)
		}
		content, err := generator.Generate(t.Context(), conv, GenerateOptions{
			Tools: []FuncDecl{
				{
					Name: "render_page",
					Params: Vars{
						{Name: "url", Type: TypeString},
					},
				},
			},
			Temperature:       vars.PtrTo(float32(0.1)),
			MaxGenerateTokens: vars.PtrTo(8192),
		})
		if err != nil {
			t.Fatal(err)
		}

		if content.Text() != "Let me look." {
			t.Fatalf("got %q", content.Text())
		}
		calls := content.Calls()
		if len(calls) != 1 || calls[0].ID != "call_1" || calls[0].Args["url"] != "https://example.com/q1" {
			t.Fatalf("got %+v", calls)
		}

		if got.Model != "test" || !got.Stream {
			t.Fatalf("got %+v", got)
		}
		if got.Temperature == nil || *got.Temperature != 0.1 {
			t.Fatalf("got %v", got.Temperature)
		}
		if got.MaxCompletionTokens != 8192 {
			t.Fatalf("got %v", got.MaxCompletionTokens)
		}
		if len(got.Tools) != 1 || got.Tools[0].Function.Name != "render_page" {
			t.Fatalf("got %+v", got.Tools)
		}
		if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
			t.Fatalf("got %+v", got.Messages)
		}
	})
}

func TestOpenAITooManyRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"slow down"}}`)
	}))
	defer server.Close()

	dscope.New(
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
		new(Module),
	).Call(func(
		newOpenAI NewOpenAI,
	) {
		generator := newOpenAI(GeneratorArgs{
			BaseURL: server.URL,
			Model:   "test",
		}, "")
		conv, err := NewConversation(NewText(RoleUser, "hi"))
		if err != nil {
			t.Fatal(err)
		}
		_, err = generator.Generate(t.Context(), conv, GenerateOptions{})
		if err == nil {
			t.Fatal("expecting error")
		}
		if !IsRetryable(err) {
			t.Fatalf("should be retryable: %v", err)
		}
		if !strings.Contains(err.Error(), "slow down") {
			t.Fatalf("got %v", err)
		}
	})
}

func TestConversationToOpenAIMessages(t *testing.T) {
	conv, err := NewConversation(
		NewText(RoleSystem, "system"),
		NewText(RoleUser, "start"),
		&Content{
			Role: RoleModel,
			Parts: []Part{
				Thought("thinking"),
				FuncCall{Name: "render_page", Args: map[string]any{"url": "u"}},
				FuncCall{Name: "fetch_file", Args: map[string]any{"url": "f"}},
			},
		},
		&Content{
			Role:  RoleTool,
			Parts: []Part{CallResult{Name: "render_page", Results: map[string]any{"html": "<p>"}}},
		},
		&Content{
			Role:  RoleTool,
			Parts: []Part{CallResult{Name: "fetch_file", Results: map[string]any{"path": "LLMFiles/f"}}},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	messages, err := conversationToOpenAIMessages(conv)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 5 {
		t.Fatalf("got %+v", messages)
	}
	assistant := messages[2]
	if assistant.Role != "assistant" || len(assistant.ToolCalls) != 2 || assistant.Content != "" {
		t.Fatalf("got %+v", assistant)
	}
	if messages[3].ToolCallID != assistant.ToolCalls[0].ID ||
		messages[4].ToolCallID != assistant.ToolCalls[1].ID {
		t.Fatalf("got %+v", messages)
	}
	if messages[4].Content != `{"path":"LLMFiles/f"}` {
		t.Fatalf("got %s", messages[4].Content)
	}
}
