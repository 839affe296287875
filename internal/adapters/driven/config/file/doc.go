// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: read-only TOML configuration
//   - PromptStore: user-editable LLM prompt files with embedded defaults
package file
