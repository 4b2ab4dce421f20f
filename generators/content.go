package generators

import "strings"

// Content is one message of a conversation.
type Content struct {
	Role  Role
	Parts []Part
}

func (c Content) Merge(c2 *Content) (*Content, bool) {
	if c.Role != c2.Role {
		// different role
		return nil, false
	}

	var parts []Part
	mergePart := func(part Part) (merge bool) {
		if len(parts) == 0 {
			return false
		}
		prev := parts[len(parts)-1]
		switch prev := prev.(type) {
		case Text:
			if text, ok := part.(Text); ok {
				parts[len(parts)-1] = prev + text
				return true
			}
		case Thought:
			if thought, ok := part.(Thought); ok {
				parts[len(parts)-1] = prev + thought
				return true
			}
		}
		return false
	}

	for _, part := range c.Parts {
		if !mergePart(part) {
			parts = append(parts, part)
		}
	}
	for _, part := range c2.Parts {
		if !mergePart(part) {
			parts = append(parts, part)
		}
	}

	return &Content{
		Role:  c.Role,
		Parts: parts,
	}, true
}

// Calls returns the tool invocations in request order.
func (c *Content) Calls() (ret []FuncCall) {
	for _, part := range c.Parts {
		if call, ok := part.(FuncCall); ok {
			ret = append(ret, call)
		}
	}
	return
}

// Text concatenates the text parts, thoughts excluded.
func (c *Content) Text() string {
	var b strings.Builder
	for _, part := range c.Parts {
		if text, ok := part.(Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func NewText(role Role, text string) *Content {
	return &Content{
		Role: role,
		Parts: []Part{
			Text(text),
		},
	}
}
