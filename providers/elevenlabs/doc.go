// Package elevenlabs adapts the unified request pipeline to the
// ElevenLabs text-to-speech API. Blocking calls POST to the synthesis
// endpoint and return raw encoded audio; streamed calls speak the
// stream-input WebSocket protocol and yield audio chunks as they are
// synthesized.
package elevenlabs
