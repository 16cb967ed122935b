// Package models управляет каталогом моделей OpenRouter.
package models

// ModelInfo информация о модели.
type ModelInfo struct {
	ID   string `json:"id"`   // Идентификатор OpenRouter: "google/gemini-3-flash-preview"
	Name string `json:"name"` // Отображаемое имя
}

// Registry встроенный список моделей, доступный без сети.
var Registry = []ModelInfo{
	{ID: "google/gemini-3-flash-preview", Name: "Gemini 3 Flash (preview)"},
	{ID: "google/gemini-2.5-flash", Name: "Gemini 2.5 Flash"},
	{ID: "google/gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
	{ID: "openai/gpt-4o-mini", Name: "GPT-4o mini"},
	{ID: "openai/gpt-4.1", Name: "GPT-4.1"},
	{ID: "anthropic/claude-sonnet-4.5", Name: "Claude Sonnet 4.5"},
	{ID: "anthropic/claude-haiku-4.5", Name: "Claude Haiku 4.5"},
	{ID: "deepseek/deepseek-chat", Name: "DeepSeek V3"},
	{ID: "meta-llama/llama-3.3-70b-instruct", Name: "Llama 3.3 70B Instruct"},
	{ID: "mistralai/mistral-small-3.2-24b-instruct", Name: "Mistral Small 3.2"},
}

// DefaultModelID возвращает ID модели по умолчанию.
func DefaultModelID() string {
	return Registry[0].ID
}
