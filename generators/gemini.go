package generators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	generativelanguage "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	"cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"github.com/reusee/dscope"
	"github.com/reusee/quizrun/cmds"
	"github.com/reusee/quizrun/logs"
	"github.com/reusee/quizrun/nets"
	"github.com/reusee/quizrun/vars"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
)

var debugGemini = cmds.Switch("-debug-gemini")

type Gemini struct {
	args      GeneratorArgs
	GetClient dscope.Inject[GetGeminiClient]
	Counter   dscope.Inject[BPETokenCounter]
	Logger    dscope.Inject[logs.Logger]
}

var _ Generator = Gemini{}

func (g Gemini) Args() GeneratorArgs {
	return g.args
}

func (g Gemini) CountTokens(text string) (int, error) {
	return g.Counter()(text)
}

func (g Gemini) Generate(ctx context.Context, conv *Conversation, options GenerateOptions) (*Content, error) {
	client, err := g.GetClient()(ctx, g.args.APIKey)
	if err != nil {
		return nil, err
	}

	req, err := g.request(conv, options)
	if err != nil {
		return nil, err
	}

	g.Logger().InfoContext(ctx, "generating",
		"model", g.args.Model,
	)

	streamClient, err := client.StreamGenerateContent(ctx, req)
	if err != nil {
		return nil, wrap(err)
	}
	defer streamClient.CloseSend()

	ret := &Content{
		Role: RoleModel,
	}
	hasContent := false
	for {
		resp, err := streamClient.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrap(err)
		}

		if *debugGemini {
			g.Logger().InfoContext(ctx, "gemini response",
				"details", resp,
			)
		}

		if metadata := resp.GetUsageMetadata(); metadata != nil {
			var usage Usage
			usage.Prompt.TokenCount = int(metadata.PromptTokenCount)
			usage.Prompt.TokenCountCached = int(metadata.CachedContentTokenCount)
			usage.Candidates.TokenCount = int(metadata.CandidatesTokenCount)
			usage.Thoughts.TokenCount = int(metadata.ThoughtsTokenCount)
			g.Logger().DebugContext(ctx, "gemini usage",
				"prompt", usage.Prompt.TokenCount,
				"cached", usage.Prompt.TokenCountCached,
				"candidates", usage.Candidates.TokenCount,
				"thoughts", usage.Thoughts.TokenCount,
			)
		}

		if len(resp.Candidates) == 0 {
			continue
		}
		candidate := resp.Candidates[0]

		if candidate.Content != nil {
			chunk := &Content{
				Role: RoleModel,
			}
			for _, part := range candidate.Content.Parts {
				p, err := PartFromGemini(part)
				if err != nil {
					return nil, err
				}
				if _, isThought := p.(Thought); !isThought {
					hasContent = true
				}
				chunk.Parts = append(chunk.Parts, p)
			}
			ret, _ = ret.Merge(chunk)
		}

		if reason := candidate.GetFinishReason(); reason > 0 {
			ret.Parts = append(ret.Parts, FinishReason(reason.String()))
		}
	}

	if !hasContent {
		return nil, errors.Join(fmt.Errorf("no output"), ErrRetryable)
	}

	return ret, nil
}

func (g Gemini) request(conv *Conversation, options GenerateOptions) (*generativelanguagepb.GenerateContentRequest, error) {
	var maxOutputTokens *int32
	if n := options.maxGenerateTokens(g.args); n != nil {
		maxOutputTokens = vars.PtrTo(int32(*n))
	}

	var tools []*generativelanguagepb.Tool
	var functionCallingConfig *generativelanguagepb.FunctionCallingConfig
	if len(options.Tools) > 0 {
		var funcDecls []*generativelanguagepb.FunctionDeclaration
		for _, decl := range options.Tools {
			funcDecls = append(funcDecls, decl.ToGemini())
		}
		tools = append(tools, &generativelanguagepb.Tool{
			FunctionDeclarations: funcDecls,
		})
		functionCallingConfig = &generativelanguagepb.FunctionCallingConfig{
			Mode: generativelanguagepb.FunctionCallingConfig_AUTO,
		}
	}

	var systemInstruction *generativelanguagepb.Content
	var contents []*generativelanguagepb.Content
	var last *Content
	flush := func() error {
		if last == nil {
			return nil
		}
		pbContent := &generativelanguagepb.Content{
			Role: string(last.Role),
		}
		for _, part := range last.Parts {
			pbPart, err := part.ToGemini()
			if err != nil {
				return err
			}
			if pbPart != nil {
				pbContent.Parts = append(pbContent.Parts, pbPart)
			}
		}
		if len(pbContent.Parts) > 0 {
			contents = append(contents, pbContent)
		}
		last = nil
		return nil
	}

	for _, content := range conv.Contents() {
		if content.Role == RoleSystem {
			systemInstruction = &generativelanguagepb.Content{
				Parts: []*generativelanguagepb.Part{
					{
						Data: &generativelanguagepb.Part_Text{
							Text: content.Text(),
						},
					},
				},
			}
			continue
		}

		// gemini knows only user and model
		role := RoleUser
		if content.Role.IsReasoner() {
			role = RoleModel
		}
		c := &Content{
			Role:  role,
			Parts: content.Parts,
		}
		if last != nil {
			// consecutive function responses must share one content
			if merged, ok := last.Merge(c); ok && content.Role == RoleTool {
				last = merged
				continue
			}
		}
		if err := flush(); err != nil {
			return nil, err
		}
		last = c
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return &generativelanguagepb.GenerateContentRequest{
		Model: g.args.Model,
		Tools: tools,
		ToolConfig: &generativelanguagepb.ToolConfig{
			FunctionCallingConfig: functionCallingConfig,
		},
		GenerationConfig: &generativelanguagepb.GenerationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     options.temperature(g.args),
		},
		Contents:          contents,
		SystemInstruction: systemInstruction,
	}, nil
}

type GetGeminiClient = func(ctx context.Context, key string) (*generativelanguage.GenerativeClient, error)

func (Module) GetGeminiClient(
	dialer nets.Dialer,
	apiKey GoogleAPIKey,
) GetGeminiClient {
	var clients sync.Map // key -> *generativelanguage.GenerativeClient
	return func(ctx context.Context, key string) (*generativelanguage.GenerativeClient, error) {
		key = vars.FirstNonZero(
			key,
			string(apiKey),
		)
		if key == "" {
			return nil, fmt.Errorf("no google api key")
		}

		if v, ok := clients.Load(key); ok {
			return v.(*generativelanguage.GenerativeClient), nil
		}

		clientOptions := []option.ClientOption{
			option.WithAPIKey(key),
			option.WithGRPCDialOption(
				grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
					return dialer.DialContext(ctx, "tcp", addr)
				}),
			),
		}
		client, err := generativelanguage.NewGenerativeClient(ctx, clientOptions...)
		if err != nil {
			return nil, err
		}

		v, loaded := clients.LoadOrStore(key, client)
		if loaded {
			// not store
			client.Close()
		}

		return v.(*generativelanguage.GenerativeClient), nil
	}
}

type NewGemini func(args GeneratorArgs) Gemini

func (Module) NewGemini(
	inject dscope.InjectStruct,
) NewGemini {
	return func(args GeneratorArgs) Gemini {
		ret := Gemini{
			args: args,
		}
		inject(&ret)
		return ret
	}
}
