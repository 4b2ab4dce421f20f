package generators

import (
	"github.com/tiktoken-go/tokenizer"
)

type TokenCounter = func(text string) (int, error)

// BPETokenCounter approximates token counts for every backend.
type BPETokenCounter TokenCounter

func (Module) BPETokenCounter() BPETokenCounter {
	enc, err := tokenizer.Get(tokenizer.O200kBase)
	if err != nil {
		return func(string) (int, error) {
			return 0, err
		}
	}

	return func(text string) (int, error) {
		n, err := enc.Count(text)
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

// CountConversation sums the text of every message.
func CountConversation(generator Generator, conv *Conversation) (int, error) {
	total := 0
	for _, content := range conv.Contents() {
		for _, part := range content.Parts {
			var text string
			switch part := part.(type) {
			case Text:
				text = string(part)
			case Thought:
				text = string(part)
			case CallResult:
				text = part.Text()
			case FuncCall:
				text = part.Name
			default:
				continue
			}
			n, err := generator.CountTokens(text)
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, nil
}
