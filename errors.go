package lectern

import "fmt"

// ConfigError reports an invalid configuration value. It is returned from
// constructors so that bad thresholds or chunking parameters fail fast,
// never at query time.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

// EmbeddingError wraps a failure of the embedding provider. It propagates
// to the caller as a retrieval failure; the grounding decision is never
// reached for that query.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s: %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// ErrLLM reports a provider-side failure that is not an HTTP error, such
// as a malformed response body.
type ErrLLM struct {
	Provider string
	Message  string
}

func (e *ErrLLM) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ErrHTTP reports a non-200 response from a provider API.
type ErrHTTP struct {
	Status int
	Body   string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// IndexError wraps a vector index failure. Distinct from the legitimate
// empty-index case, which is not an error.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }
