package driven

// ConfigStore provides read access to persistent configuration. Keys
// use dot notation ("query.top_k", "knowledge.dir"). The engine only
// ever reads configuration; users edit the backing file directly.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool
}

// Well-known configuration keys.
const (
	ConfigKnowledgeDir    = "knowledge.dir"
	ConfigCacheBackend    = "cache.backend" // "memory" or "sqlite"
	ConfigCacheTTLMinutes = "cache.ttl_minutes"
	ConfigQueryTopK       = "query.top_k"
	ConfigDomainTimeoutMS = "query.domain_timeout_ms"
	ConfigLLMEnabled      = "llm.enabled"
	ConfigLLMBaseURL      = "llm.base_url"
	ConfigLLMModel        = "llm.model"
)
