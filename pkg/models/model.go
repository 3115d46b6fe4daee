package models

// ModelConfig describes the chat model used for analysis and interviews.
// Extra stores vendor specific additional parameters (e.g. ark region).
type ModelConfig struct {
	Provider string                 `json:"provider"`
	Model    string                 `json:"model"`
	BaseUrl  string                 `json:"base_url"`
	ApiKey   string                 `json:"api_key"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

func (m *ModelConfig) Normalize() {
	if m.Extra == nil {
		m.Extra = map[string]interface{}{}
	}
}

// SupportedModelProviders supported model providers
var SupportedModelProviders = map[string]struct{}{
	"openai":    {},
	"deepseek":  {},
	"anthropic": {},
	"google":    {},
	"ark":       {},
	"ollama":    {},
	"qianfan":   {},
	"qwen":      {},
	"custom":    {},
}
