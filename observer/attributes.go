package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for query and LLM observability spans and metrics.
var (
	AttrLLMModel    = attribute.Key("llm.model")
	AttrLLMProvider = attribute.Key("llm.provider")

	AttrTokensInput  = attribute.Key("llm.tokens.input")
	AttrTokensOutput = attribute.Key("llm.tokens.output")

	AttrEmbedTextCount  = attribute.Key("llm.embed.text_count")
	AttrEmbedDimensions = attribute.Key("llm.embed.dimensions")

	AttrQueryMode     = attribute.Key("lectern.mode")
	AttrQueryReason   = attribute.Key("lectern.reason")
	AttrQueryChunks   = attribute.Key("lectern.chunks")
	AttrQueryMaxScore = attribute.Key("lectern.max_score")
)
