// Package openai implements the ai interfaces against OpenAI-compatible
// chat APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//
// The fact extractor runs in JSON mode at temperature 0, repairs common
// formatting damage in replies, and retries once with a stricter reminder
// before surfacing a non-conformant reply. The narrator streams tokens
// through the caller's fragment callback.
package openai
