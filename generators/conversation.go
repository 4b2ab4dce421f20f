package generators

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrSystemMessage    = errors.New("system message must be first and unique")
	ErrUnansweredCalls  = errors.New("tool calls not answered")
	ErrUnexpectedResult = errors.New("unexpected tool result")
)

// Conversation is the append-only message history of one run. Tool results
// must follow the message that requested them, one message per call, in
// request order.
type Conversation struct {
	contents []*Content
	pending  []FuncCall
}

func NewConversation(contents ...*Content) (*Conversation, error) {
	conv := new(Conversation)
	for _, content := range contents {
		if content.Role == RoleSystem {
			if err := conv.EnsureSystem(content); err != nil {
				return nil, err
			}
			continue
		}
		if err := conv.Append(content); err != nil {
			return nil, err
		}
	}
	return conv, nil
}

func (c *Conversation) Contents() []*Content {
	return slices.Clone(c.contents)
}

func (c *Conversation) Len() int {
	return len(c.contents)
}

func (c *Conversation) Last() *Content {
	if len(c.contents) == 0 {
		return nil
	}
	return c.contents[len(c.contents)-1]
}

// System returns the system message, or nil.
func (c *Conversation) System() *Content {
	if len(c.contents) > 0 && c.contents[0].Role == RoleSystem {
		return c.contents[0]
	}
	return nil
}

// Pending returns the calls of the last reasoner message still lacking a result.
func (c *Conversation) Pending() []FuncCall {
	return slices.Clone(c.pending)
}

// EnsureSystem places content at the front unless a system message exists.
func (c *Conversation) EnsureSystem(content *Content) error {
	if content.Role != RoleSystem {
		return fmt.Errorf("%w: got role %s", ErrSystemMessage, content.Role)
	}
	if c.System() != nil {
		return nil
	}
	c.contents = slices.Insert(c.contents, 0, content)
	return nil
}

func (c *Conversation) Append(content *Content) error {
	switch content.Role {

	case RoleSystem:
		return ErrSystemMessage

	case RoleTool:
		var results []CallResult
		for _, part := range content.Parts {
			if result, ok := part.(CallResult); ok {
				results = append(results, result)
			}
		}
		if len(results) != 1 {
			return fmt.Errorf("%w: want one result per message, got %d", ErrUnexpectedResult, len(results))
		}
		if len(c.pending) == 0 {
			return fmt.Errorf("%w: %s", ErrUnexpectedResult, results[0].Name)
		}
		if !answers(results[0], c.pending[0]) {
			return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedResult, results[0].Name, c.pending[0].Name)
		}
		c.pending = c.pending[1:]

	default:
		if len(c.pending) > 0 {
			return fmt.Errorf("%w: %d remaining", ErrUnansweredCalls, len(c.pending))
		}
		if content.Role.IsReasoner() {
			c.pending = content.Calls()
		}

	}

	c.contents = append(c.contents, content)
	return nil
}

func answers(result CallResult, call FuncCall) bool {
	if result.ID != "" && call.ID != "" {
		return result.ID == call.ID
	}
	return result.Name == call.Name
}
