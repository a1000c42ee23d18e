// Package anthropic adapts the unified request pipeline to the Anthropic
// Messages API. It serves text generation, blocking and streamed. The
// streamed form follows the Messages SSE lifecycle: message_start opens
// with input usage, content_block_delta events carry the text, and
// message_delta closes with the stop reason and output usage.
package anthropic
