package driven

// PromptStore resolves named prompt templates for the LLM service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Implementations fall back to an embedded default when the user
	// has not customised the prompt on disk.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptRephraseAnswer rewrites a synthesised executive summary
	// into a natural answer to the original question.
	PromptRephraseAnswer = "rephrase_answer"
)
