// Package ai defines the consumed AI capability interfaces of the pipeline:
// the LLM-backed window chunker and the embedding service, together with
// their configuration and the retryable/permanent upstream error taxonomy.
//
// Concrete implementations live in subpackages (openai for OpenAI-compatible
// APIs, mock for tests).
package ai
