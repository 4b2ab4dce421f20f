package generators

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/cmds"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/nets"
	"github.com/reusee/quizrun/vars"
)

var debugOpenAI = cmds.Switch("-debug-openai")

type OpenAI struct {
	args   GeneratorArgs
	apiKey string
	client nets.HTTPClient

	Count  dscope.Inject[BPETokenCounter]
	Logger dscope.Inject[logs.Logger]
}

var _ Generator = new(OpenAI)

func (o *OpenAI) Args() GeneratorArgs {
	return o.args
}

func (o *OpenAI) CountTokens(text string) (int, error) {
	return o.Count()(text)
}

func (o *OpenAI) Generate(ctx context.Context, conv *Conversation, options GenerateOptions) (*Content, error) {
	messages, err := conversationToOpenAIMessages(conv)
	if err != nil {
		return nil, err
	}

	var tools []Tool
	for _, decl := range options.Tools {
		tools = append(tools, decl.ToOpenAI())
	}

	if *debugOpenAI {
		jsonText, err := json.Marshal(messages)
		if err != nil {
			return nil, err
		}
		o.Logger().InfoContext(ctx, "open ai messages to send",
			"messages", jsonText,
		)
	}

	o.Logger().InfoContext(ctx, "generating",
		"model", o.args.Model,
	)

	req := ChatCompletionRequest{
		Model:               o.args.Model,
		Messages:            messages,
		Stream:              true,
		MaxCompletionTokens: vars.DerefOrZero(options.maxGenerateTokens(o.args)),
		Temperature:         options.temperature(o.args),
		Tools:               tools,
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(o.args.BaseURL, "/")+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, OpenAIError{
			Err:     err,
			Request: req,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == nil {
			err := fmt.Errorf("bad status: %d, body: %s", resp.StatusCode, string(body))
			if isRetryableStatus(resp.StatusCode) {
				return nil, errors.Join(err, ErrRetryable)
			}
			return nil, OpenAIError{
				Err:     err,
				Request: req,
			}
		}
		errResp.Error.HTTPStatusCode = resp.StatusCode
		if isRetryableStatus(resp.StatusCode) {
			return nil, errors.Join(errResp.Error, ErrRetryable)
		}
		return nil, OpenAIError{
			Err:     errResp.Error,
			Request: req,
		}
	}

	ret := &Content{
		Role: RoleAssistant,
	}
	parser := new(OpenAIParser)
	appendContents := func(contents []*Content) {
		for _, content := range contents {
			if *debugOpenAI {
				o.Logger().InfoContext(ctx, "OpenAI content",
					"details", content,
				)
			}
			content.Role = RoleAssistant
			ret, _ = ret.Merge(content)
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*K), 4*M)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "data: [DONE]") {
			break
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var streamResp ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			return nil, fmt.Errorf("error unmarshalling stream response: %w", err)
		}

		if streamResp.Usage != nil {
			o.Logger().DebugContext(ctx, "openai usage",
				"prompt", streamResp.Usage.PromptTokens,
				"completion", streamResp.Usage.CompletionTokens,
			)
		}

		if len(streamResp.Choices) == 0 {
			continue
		}

		contents, err := parser.Input(streamResp.Choices[0].Delta)
		if err != nil {
			return nil, err
		}
		appendContents(contents)

		if reason := streamResp.Choices[0].FinishReason; reason != "" {
			contents, err := parser.End()
			if err != nil {
				return nil, err
			}
			appendContents(contents)
			ret.Parts = append(ret.Parts, FinishReason(reason))
			if reason == "error" {
				return nil, errors.Join(errors.New(reason), ErrRetryable)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("error reading stream: %w", err), ErrRetryable)
	}

	contents, err := parser.End()
	if err != nil {
		return nil, err
	}
	appendContents(contents)

	if len(ret.Parts) == 0 {
		return nil, errors.Join(fmt.Errorf("no output"), ErrRetryable)
	}

	return ret, nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

func conversationToOpenAIMessages(conv *Conversation) (messages []ChatCompletionMessage, err error) {
	// calls without ids get generated ones, answered in order
	var generatedIDs []string
	n := 0

	for _, content := range conv.Contents() {
		switch content.Role {

		case RoleSystem, RoleUser:
			messages = append(messages, ChatCompletionMessage{
				Role:    string(content.Role),
				Content: content.Text(),
			})

		case RoleModel, RoleAssistant:
			msg := ChatCompletionMessage{
				Role:    string(RoleAssistant),
				Content: content.Text(),
			}
			for _, call := range content.Calls() {
				argsBytes, err := json.Marshal(call.Args)
				if err != nil {
					return nil, err
				}
				id := call.ID
				if id == "" {
					n++
					id = fmt.Sprintf("call_%d", n)
					generatedIDs = append(generatedIDs, id)
				}
				msg.ToolCalls = append(msg.ToolCalls, ToolCall{
					ID:   id,
					Type: "function",
					Function: FunctionCall{
						Name:      call.Name,
						Arguments: string(argsBytes),
					},
				})
			}
			if msg.Content == "" && len(msg.ToolCalls) == 0 {
				continue
			}
			messages = append(messages, msg)

		case RoleTool:
			for _, part := range content.Parts {
				result, ok := part.(CallResult)
				if !ok {
					continue
				}
				id := result.ID
				if id == "" && len(generatedIDs) > 0 {
					id = generatedIDs[0]
					generatedIDs = generatedIDs[1:]
				}
				messages = append(messages, ChatCompletionMessage{
					Role:       string(RoleTool),
					ToolCallID: id,
					Content:    result.Text(),
				})
			}

		}
	}

	return
}

type NewOpenAI func(args GeneratorArgs, apiKey string) *OpenAI

func (Module) NewOpenAI(
	inject dscope.InjectStruct,
	client nets.HTTPClient,
) NewOpenAI {
	return func(args GeneratorArgs, apiKey string) *OpenAI {
		ret := &OpenAI{
			args:   args,
			client: client,
			apiKey: apiKey,
		}
		inject(&ret)
		return ret
	}
}

type ChatCompletionRequest struct {
	Model               string                  `json:"model"`
	Messages            []ChatCompletionMessage `json:"messages"`
	Stream              bool                    `json:"stream"`
	MaxCompletionTokens int                     `json:"max_completion_tokens,omitempty"`
	Temperature         *float32                `json:"temperature,omitempty"`
	Tools               []Tool                  `json:"tools,omitempty"`
}

type ChatCompletionMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type Tool struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function,omitempty"`
}

type FunctionDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Strict      bool   `json:"strict,omitempty"`
	Parameters  any    `json:"parameters"`
}

type ToolCall struct {
	Index    *int         `json:"index,omitempty"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type ChatCompletionStreamResponse struct {
	Choices []ChatCompletionStreamChoice `json:"choices"`
	Usage   *CompletionUsage             `json:"usage,omitempty"`
}

type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type ChatCompletionStreamChoice struct {
	Delta        ChatCompletionStreamChoiceDelta `json:"delta"`
	FinishReason string                          `json:"finish_reason"`
}

type ChatCompletionStreamChoiceDelta struct {
	Content          string     `json:"content,omitempty"`
	Role             string     `json:"role,omitempty"`
	ToolCalls        []ToolCall `json:"tool_calls,omitempty"`
	ReasoningContent string     `json:"reasoning_content,omitempty"`
}

type ErrorResponse struct {
	Error *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code           any     `json:"code,omitempty"`
	Message        string  `json:"message,omitempty"`
	Param          *string `json:"param,omitempty"`
	Type           string  `json:"type,omitempty"`
	HTTPStatusCode int     `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

type OpenAIError struct {
	Err     error
	Request ChatCompletionRequest
}

var _ error = OpenAIError{}

func (o OpenAIError) Error() string {
	return o.Err.Error()
}

func (o OpenAIError) Unwrap() error {
	return o.Err
}
