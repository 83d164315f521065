package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/smarathe/yojanasetu/internal/dialogue"
	"github.com/smarathe/yojanasetu/internal/observe"
	"github.com/smarathe/yojanasetu/internal/profile"
	"github.com/smarathe/yojanasetu/internal/sessionstore"
)

// maxAudioMessage caps one websocket frame. Browser recordings of a single
// utterance stay well under this.
const maxAudioMessage = 16 << 20

// Replies the server produces without consulting the engine.
const (
	emptyTranscriptReply = "मला नीट ऐकू आलं नाही. कृपया पुन्हा हळू आणि स्पष्ट मराठीत सांगा."
	techDifficultyReply  = "क्षमस्व, तांत्रिक अडचण आली. कृपया पुन्हा प्रयत्न करा."
)

// handleWS upgrades the connection and runs the per-session message loop.
// Turns are processed one at a time in arrival order.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Error("websocket accept failed", "err", err)
		return
	}
	defer c.CloseNow()
	c.SetReadLimit(maxAudioMessage)

	ctx := r.Context()
	s.metrics.ActiveSessions.Add(ctx, 1)
	defer s.metrics.ActiveSessions.Add(ctx, -1)

	s.log.Info("websocket connected", "remote", r.RemoteAddr)

	var sessionID string
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			s.log.Info("websocket disconnected", "session_id", sessionID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("dropping malformed message", "err", err)
			continue
		}

		switch msg.Type {
		case msgHello:
			sessionID = msg.SessionID
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			s.send(ctx, c, helloAck{Type: "hello_ack", SessionID: sessionID, Language: s.language})

		case msgAudio:
			if sessionID == "" {
				sessionID = msg.SessionID
				if sessionID == "" {
					sessionID = uuid.NewString()
				}
			}
			s.turn(ctx, c, sessionID, msg)

		default:
			// Unknown types are ignored so older clients keep working.
		}
	}
}

// turn runs the full pipeline for one audio message: transcription, profile
// merge, engine decision, persistence, and the synthesized reply. All
// failures end in a spoken retry prompt; the websocket never sees a turn
// abort silently.
func (s *Server) turn(ctx context.Context, c *websocket.Conn, sessionID string, msg clientMessage) {
	start := time.Now()
	ctx, span := observe.StartTurnSpan(ctx, sessionID)
	defer span.End()

	s.send(ctx, c, newAgentEvent(eventAudioReceived, nil))

	audio, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		s.failTurn(ctx, c, sessionID, fmt.Errorf("decode audio: %w", err))
		return
	}

	s.send(ctx, c, newAgentEvent(eventSTTStart, nil))
	sttStart := time.Now()
	transcript, err := s.stt.Transcribe(ctx, audio, s.isoLang)
	s.metrics.STTDuration.Record(ctx, time.Since(sttStart).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, "stt", "stt")
		s.failTurn(ctx, c, sessionID, fmt.Errorf("transcribe: %w", err))
		return
	}
	s.send(ctx, c, sttResult{Type: "stt_result", Text: transcript.Text, Confidence: transcript.Confidence})

	if strings.TrimSpace(transcript.Text) == "" {
		s.send(ctx, c, newAgentEvent(eventSTTRejected, map[string]string{"reason": "empty"}))
		s.reply(ctx, c, emptyTranscriptReply, dialogue.UI{
			Intent:    dialogue.UIIntentError,
			Questions: []string{"कृपया पुन्हा सांगा."},
			Cards:     []dialogue.Card{},
		})
		s.finishTurn(ctx, start, "empty_transcript")
		return
	}

	sess, err := s.store.LoadOrCreate(ctx, sessionID, s.language)
	if err != nil {
		s.failTurn(ctx, c, sessionID, fmt.Errorf("load session: %w", err))
		return
	}
	if err := s.store.AddMessage(ctx, sessionID, sessionstore.RoleUser, transcript.Text); err != nil {
		s.log.Warn("failed to log user message", "session_id", sessionID, "err", err)
	}

	updates := s.extractor.FreeForm(transcript.Text)
	pending, conflict := profile.Merge(sess.Profile, sess.Pending, updates)
	sess.Pending = pending

	if conflict != nil {
		if err := s.store.Save(ctx, sess); err != nil {
			s.failTurn(ctx, c, sessionID, fmt.Errorf("save session: %w", err))
			return
		}
		text := fmt.Sprintf("तुम्ही आधी %s = %v सांगितले होते, आता %v म्हणत आहात. कोणते बरोबर आहे?",
			conflict.Field, conflict.OldValue, conflict.NewValue)
		s.reply(ctx, c, text, dialogue.UI{
			Intent:    dialogue.UIIntentQuestion,
			Questions: []string{"जुने की नवीन?"},
			Cards:     []dialogue.Card{},
		})
		if err := s.store.AddMessage(ctx, sessionID, sessionstore.RoleAssistant, text); err != nil {
			s.log.Warn("failed to log assistant message", "session_id", sessionID, "err", err)
		}
		s.finishTurn(ctx, start, "conflict")
		return
	}

	s.send(ctx, c, newAgentEvent(eventAgentStart, nil))
	result := s.engine.Load().Turn(ctx, dialogue.TurnInput{
		SessionID:  sessionID,
		Utterance:  transcript.Text,
		Confidence: transcript.Confidence,
		Profile:    sess.Profile,
		State:      sess.State,
	})
	sess.State = result.State

	if err := s.store.Save(ctx, sess); err != nil {
		s.failTurn(ctx, c, sessionID, fmt.Errorf("save session: %w", err))
		return
	}

	for _, evt := range result.Trace {
		switch evt.Kind {
		case dialogue.TraceToolCall:
			s.send(ctx, c, toolMessage{Type: "tool_call", Tool: evt.Tool, Payload: evt.Payload})
		case dialogue.TraceToolResult:
			s.send(ctx, c, toolMessage{Type: "tool_result", Tool: evt.Tool, Payload: evt.Payload})
		case dialogue.TracePlan:
			s.send(ctx, c, newAgentEvent(eventPlan, evt.Payload))
		}
	}

	if err := s.store.AddMessage(ctx, sessionID, sessionstore.RoleAssistant, result.Message); err != nil {
		s.log.Warn("failed to log assistant message", "session_id", sessionID, "err", err)
	}

	s.reply(ctx, c, result.Message, result.UI)
	s.finishTurn(ctx, start, "answered")
}

// failTurn logs err, notifies the client, and speaks the generic retry
// prompt. It mirrors the catch-all a turn must never escape from.
func (s *Server) failTurn(ctx context.Context, c *websocket.Conn, sessionID string, err error) {
	s.log.Error("turn failed", "session_id", sessionID, "err", err)
	s.send(ctx, c, newAgentEvent(eventError, map[string]string{"message": err.Error()}))
	s.reply(ctx, c, techDifficultyReply, dialogue.UI{
		Intent:    dialogue.UIIntentError,
		Questions: []string{"पुन्हा बोला."},
		Cards:     []dialogue.Card{},
	})
	s.metrics.RecordTurn(ctx, "error")
}

// reply synthesizes text and sends the assistant message. Synthesis failures
// degrade to a text-only message rather than failing the turn.
func (s *Server) reply(ctx context.Context, c *websocket.Conn, text string, ui dialogue.UI) {
	s.send(ctx, c, newAgentEvent(eventTTSStart, nil))

	ttsStart := time.Now()
	audio, err := s.tts.Synthesize(ctx, text, s.isoLang)
	s.metrics.TTSDuration.Record(ctx, time.Since(ttsStart).Seconds())

	var audioB64, mime string
	if err != nil {
		s.metrics.RecordProviderError(ctx, "tts", "tts")
		s.log.Warn("tts failed, sending text-only reply", "err", err)
	} else {
		audioB64 = base64.StdEncoding.EncodeToString(audio.Data)
		mime = audio.MIMEType
	}

	s.send(ctx, c, newAssistantMessage(text, ui, audioB64, mime))
}

// finishTurn records turn latency and outcome.
func (s *Server) finishTurn(ctx context.Context, start time.Time, outcome string) {
	s.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
	s.metrics.RecordTurn(ctx, outcome)
}

// send marshals v and writes it as one text frame. Write errors are logged
// and otherwise ignored; the read loop notices the dead connection next.
func (s *Server) send(ctx context.Context, c *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal outbound message", "err", err)
		return
	}
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		s.log.Debug("websocket write failed", "err", err)
	}
}
