package generators

type GeneratorArgs struct {
	BaseURL           string   `json:"base_url"`
	APIKey            string   `json:"api_key"`
	Model             string   `json:"model"`
	ContextTokens     int      `json:"context_tokens"`
	MaxGenerateTokens *int     `json:"max_generate_tokens"`
	Temperature       *float32 `json:"temperature"`
	IsOpenRouter      bool     `json:"is_open_router"`
}

// GenerateOptions are per-call settings. Non-nil fields override the
// generator's own arguments.
type GenerateOptions struct {
	Tools             []FuncDecl
	Temperature       *float32
	MaxGenerateTokens *int
}

func (o GenerateOptions) temperature(args GeneratorArgs) *float32 {
	if o.Temperature != nil {
		return o.Temperature
	}
	return args.Temperature
}

func (o GenerateOptions) maxGenerateTokens(args GeneratorArgs) *int {
	if o.MaxGenerateTokens != nil {
		return o.MaxGenerateTokens
	}
	return args.MaxGenerateTokens
}
