package server

import "github.com/smarathe/yojanasetu/internal/dialogue"

// Client → server message types.
const (
	msgHello = "hello"
	msgAudio = "audio"
)

// clientMessage is the envelope for everything the browser sends. Unused
// fields stay empty depending on Type.
type clientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`

	// Data is the base64-encoded audio blob for "audio" messages.
	Data     string `json:"data,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

// helloAck confirms the session handshake.
type helloAck struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Language  string `json:"language"`
}

// Pipeline progress events pushed to the client while a turn runs.
const (
	eventAudioReceived = "AUDIO_RECEIVED"
	eventSTTStart      = "STT_START"
	eventSTTRejected   = "STT_REJECTED"
	eventAgentStart    = "AGENT_START"
	eventPlan          = "PLAN"
	eventTTSStart      = "TTS_START"
	eventError         = "ERROR"
)

// agentEvent is a pipeline progress notification.
type agentEvent struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// sttResult carries the transcription back to the client for display.
type sttResult struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// toolMessage mirrors one engine trace entry (tool_call or tool_result) to
// the client.
type toolMessage struct {
	Type    string `json:"type"`
	Tool    string `json:"tool"`
	Payload any    `json:"payload,omitempty"`
}

// assistantMessage is the final reply for one turn: text, render payload,
// and the synthesized audio. TTSAudioB64 is empty when synthesis failed and
// the turn degraded to text-only.
type assistantMessage struct {
	Type        string      `json:"type"`
	Text        string      `json:"text"`
	UI          dialogue.UI `json:"ui"`
	TTSAudioB64 string      `json:"ttsAudioB64"`
	TTSMime     string      `json:"ttsMime"`
}

func newAgentEvent(event string, payload any) agentEvent {
	return agentEvent{Type: "agent_event", Event: event, Payload: payload}
}

func newAssistantMessage(text string, ui dialogue.UI, audioB64, mime string) assistantMessage {
	return assistantMessage{
		Type:        "assistant_message",
		Text:        text,
		UI:          ui,
		TTSAudioB64: audioB64,
		TTSMime:     mime,
	}
}
