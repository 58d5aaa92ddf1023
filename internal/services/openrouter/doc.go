// Package openrouter talks to an OpenRouter-compatible chat completions API.
// The orchestrator treats any failure here as "reasoning unavailable" and
// falls back to the deterministic keyword diagnosis.
package openrouter
