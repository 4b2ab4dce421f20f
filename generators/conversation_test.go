package generators

import (
	"errors"
	"testing"
)

func TestConversationSystem(t *testing.T) {
	conv, err := NewConversation(NewText(RoleUser, "Solve the quiz at this URL: https://example.com/q1"))
	if err != nil {
		t.Fatal(err)
	}
	if conv.System() != nil {
		t.Fatal("unexpected system message")
	}

	if err := conv.EnsureSystem(NewText(RoleSystem, "one")); err != nil {
		t.Fatal(err)
	}
	if err := conv.EnsureSystem(NewText(RoleSystem, "two")); err != nil {
		t.Fatal(err)
	}
	contents := conv.Contents()
	if len(contents) != 2 {
		t.Fatalf("got %d", len(contents))
	}
	if contents[0].Role != RoleSystem || contents[0].Text() != "one" {
		t.Fatalf("got %+v", contents[0])
	}

	if err := conv.Append(NewText(RoleSystem, "three")); !errors.Is(err, ErrSystemMessage) {
		t.Fatalf("got %v", err)
	}
}

func TestConversationToolResults(t *testing.T) {
	conv, err := NewConversation(NewText(RoleUser, "start"))
	if err != nil {
		t.Fatal(err)
	}

	if err := conv.Append(&Content{
		Role: RoleModel,
		Parts: []Part{
			FuncCall{ID: "a", Name: "render_page"},
			FuncCall{ID: "b", Name: "fetch_file"},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if n := len(conv.Pending()); n != 2 {
		t.Fatalf("got %d", n)
	}

	// out of order
	err = conv.Append(&Content{
		Role:  RoleTool,
		Parts: []Part{CallResult{ID: "b", Name: "fetch_file"}},
	})
	if !errors.Is(err, ErrUnexpectedResult) {
		t.Fatalf("got %v", err)
	}

	// interleaved message
	if err := conv.Append(NewText(RoleUser, "context")); !errors.Is(err, ErrUnansweredCalls) {
		t.Fatalf("got %v", err)
	}

	for _, result := range []CallResult{
		{ID: "a", Name: "render_page"},
		{ID: "b", Name: "fetch_file"},
	} {
		if err := conv.Append(&Content{
			Role:  RoleTool,
			Parts: []Part{result},
		}); err != nil {
			t.Fatal(err)
		}
	}
	if len(conv.Pending()) != 0 {
		t.Fatal("should be answered")
	}

	// no call to answer
	err = conv.Append(&Content{
		Role:  RoleTool,
		Parts: []Part{CallResult{ID: "c", Name: "fetch_file"}},
	})
	if !errors.Is(err, ErrUnexpectedResult) {
		t.Fatalf("got %v", err)
	}

	if err := conv.Append(NewText(RoleUser, "context")); err != nil {
		t.Fatal(err)
	}
	if conv.Len() != 5 {
		t.Fatalf("got %d", conv.Len())
	}
}

func TestConversationMatchByName(t *testing.T) {
	conv := new(Conversation)
	if err := conv.Append(&Content{
		Role:  RoleModel,
		Parts: []Part{FuncCall{Name: "execute_code"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := conv.Append(&Content{
		Role:  RoleTool,
		Parts: []Part{CallResult{Name: "execute_code"}},
	}); err != nil {
		t.Fatal(err)
	}
}
