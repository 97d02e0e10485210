package domain

import "encoding/json"

// ToolSummary is the per-tool entry of the discovery manifest.
type ToolSummary struct {
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	Streaming   bool   `json:"streaming"`
	SessionMode bool   `json:"session_mode"`
}

// ToolManifest is the full description of one tool, as printed by
// `<tool> --manifest`.
type ToolManifest struct {
	Name        string          `json:"name"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Streaming   bool            `json:"streaming"`
	SessionMode bool            `json:"session_mode"`
	Schema      json.RawMessage `json:"schema"`
	Examples    []any           `json:"examples,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// ResourceManifest describes one registered resource pattern.
type ResourceManifest struct {
	URIPattern string   `json:"uri_pattern"`
	Summary    string   `json:"summary"`
	MimeTypes  []string `json:"mime_types"`
	Tags       []string `json:"tags"`
}

// PromptManifest describes one registered prompt template.
type PromptManifest struct {
	Name      string            `json:"name"`
	Summary   string            `json:"summary"`
	Arguments map[string]string `json:"arguments"`
	Tags      []string          `json:"tags"`
}

// Manifest is the app-level discovery document answered to `--discover`.
type Manifest struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	Tools     []ToolSummary      `json:"tools"`
	Resources []ResourceManifest `json:"resources"`
	Prompts   []PromptManifest   `json:"prompts"`
}
