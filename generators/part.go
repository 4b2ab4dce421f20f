package generators

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"google.golang.org/protobuf/types/known/structpb"
)

type Part interface {
	isPart()
	ToGemini() (*generativelanguagepb.Part, error)
}

type Text string

func (Text) isPart() {}

func (t Text) ToGemini() (*generativelanguagepb.Part, error) {
	return &generativelanguagepb.Part{
		Data: &generativelanguagepb.Part_Text{
			Text: string(t),
		},
	}, nil
}

type Thought string

func (Thought) isPart() {}

func (t Thought) ToGemini() (*generativelanguagepb.Part, error) {
	return &generativelanguagepb.Part{
		Data: &generativelanguagepb.Part_Text{
			Text: string(t),
		},
		Thought: true,
	}, nil
}

// FuncCall is one tool invocation requested by the reasoning service.
type FuncCall struct {
	ID     string
	Name   string
	Args   map[string]any
	Origin any
}

func (FuncCall) isPart() {}

func (f FuncCall) ToGemini() (*generativelanguagepb.Part, error) {
	// reuse the original part to keep thought signatures
	if f.Origin != nil {
		if pbPart, ok := f.Origin.(*generativelanguagepb.Part); ok {
			return pbPart, nil
		}
	}
	s, err := structpb.NewStruct(f.Args)
	if err != nil {
		return nil, err
	}
	return &generativelanguagepb.Part{
		Data: &generativelanguagepb.Part_FunctionCall{
			FunctionCall: &generativelanguagepb.FunctionCall{
				Id:   f.ID,
				Name: f.Name,
				Args: s,
			},
		},
	}, nil
}

// CallResult is the outcome of one FuncCall. Results is always set, failures
// included.
type CallResult struct {
	ID      string
	Name    string
	Results map[string]any
}

func (CallResult) isPart() {}

func (c CallResult) ToGemini() (*generativelanguagepb.Part, error) {
	s, err := structpb.NewStruct(jsonCompatible(c.Results))
	if err != nil {
		return nil, err
	}
	return &generativelanguagepb.Part{
		Data: &generativelanguagepb.Part_FunctionResponse{
			FunctionResponse: &generativelanguagepb.FunctionResponse{
				Id:       c.ID,
				Name:     c.Name,
				Response: s,
			},
		},
	}, nil
}

// Text renders the results as a JSON object string.
func (c CallResult) Text() string {
	bs, err := json.Marshal(c.Results)
	if err != nil {
		return fmt.Sprintf("%v", c.Results)
	}
	return string(bs)
}

type FinishReason string

func (FinishReason) isPart() {}

func (FinishReason) ToGemini() (*generativelanguagepb.Part, error) {
	return nil, nil
}

type Usage struct {
	Prompt struct {
		TokenCount       int
		TokenCountCached int
	}
	Candidates struct {
		TokenCount int
	}
	Thoughts struct {
		TokenCount int
	}
}

func (Usage) isPart() {}

func (Usage) ToGemini() (*generativelanguagepb.Part, error) {
	return nil, nil
}

func PartFromGemini(part *generativelanguagepb.Part) (Part, error) {
	switch data := part.Data.(type) {

	case *generativelanguagepb.Part_Text:
		if part.Thought {
			return Thought(data.Text), nil
		}
		return Text(data.Text), nil

	case *generativelanguagepb.Part_CodeExecutionResult:
		return Text(data.CodeExecutionResult.GetOutput()), nil

	case *generativelanguagepb.Part_ExecutableCode:
		return Text(data.ExecutableCode.GetCode()), nil

	case *generativelanguagepb.Part_FunctionResponse:
		return CallResult{
			ID:      data.FunctionResponse.Id,
			Name:    data.FunctionResponse.Name,
			Results: data.FunctionResponse.GetResponse().AsMap(),
		}, nil

	case *generativelanguagepb.Part_FunctionCall:
		call := data.FunctionCall
		return FuncCall{
			ID:     call.Id,
			Name:   call.Name,
			Args:   call.Args.AsMap(),
			Origin: part,
		}, nil

	}

	return nil, fmt.Errorf("unknown part type: %T", part.Data)
}

// jsonCompatible round-trips v through JSON so that structpb accepts it;
// tool results may carry ints and typed slices.
func jsonCompatible(v map[string]any) map[string]any {
	bs, err := json.Marshal(v)
	if err != nil {
		return map[string]any{
			"error": err.Error(),
		}
	}
	var ret map[string]any
	if err := json.Unmarshal(bs, &ret); err != nil {
		return map[string]any{
			"error": err.Error(),
		}
	}
	return ret
}
