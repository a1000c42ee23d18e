// Package openai adapts the unified client pipeline to the OpenAI API:
// text generation over /chat/completions (blocking and SSE streaming),
// embeddings over /embeddings, and image generation over
// /images/generations.
package openai
