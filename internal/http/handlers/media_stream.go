package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/novo-contact-backend/internal/pkg/mulaw"
	"github.com/yungbote/novo-contact-backend/internal/pkg/wav"
)

const (
	// 20 ms of 8 kHz μ-law.
	mediaFrameBytes = 160
	// Inbound audio kept per stream, two minutes at 8 kHz.
	maxInboundBytes = 2 * 60 * mulaw.SampleRate
	closeWriteWait  = time.Second
)

type streamMessage struct {
	Event     string `json:"event"`
	StreamSID string `json:"streamSid,omitempty"`
	Start     *struct {
		StreamSID string `json:"streamSid"`
		CallSID   string `json:"callSid"`
	} `json:"start,omitempty"`
	Media *struct {
		Payload string `json:"payload"`
	} `json:"media,omitempty"`
	Mark *struct {
		Name string `json:"name"`
	} `json:"mark,omitempty"`
}

type outboundMedia struct {
	Payload string `json:"payload"`
}

type outboundMark struct {
	Name string `json:"name"`
}

// MediaStream speaks the provider's bidirectional stream protocol. After
// start it plays the call's script; on stop the buffered caller audio is
// transcribed and stored as a client turn.
func (h *VoiceHandler) MediaStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Media stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	var (
		streamSID string
		callSID   string
		inbound   []byte
	)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Media stream read ended", "call_sid", callSID, "error", err)
			}
			break
		}
		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Event {
		case "start":
			if msg.Start == nil {
				continue
			}
			streamSID, callSID = msg.Start.StreamSID, msg.Start.CallSID
			call, err := h.orch.Lookup(ctx, callSID)
			if err != nil {
				h.log.Warn("Media stream for unknown call", "call_sid", callSID)
				closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "call not found")
				_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(closeWriteWait))
				return
			}
			if err := h.playScript(ctx, conn, streamSID, call.Script); err != nil {
				h.log.Warn("Media stream write failed", "call_sid", callSID, "error", err)
				return
			}

		case "media":
			if callSID == "" || msg.Media == nil || msg.Media.Payload == "" {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(msg.Media.Payload)
			if err != nil {
				continue
			}
			if len(inbound)+len(audio) <= maxInboundBytes {
				inbound = append(inbound, audio...)
			}

		case "stop":
			h.finishStream(ctx, callSID, inbound)
			return
		}
	}
	h.finishStream(ctx, callSID, inbound)
}

func (h *VoiceHandler) playScript(ctx context.Context, conn *websocket.Conn, streamSID, script string) error {
	pcm, err := h.synth.PCM(ctx, script)
	if err != nil {
		h.log.Warn("Script synthesis failed, stream stays silent", "error", err)
		return nil
	}
	ulaw := mulaw.FromPCM16(pcm, wav.SampleRate)
	for off := 0; off < len(ulaw); off += mediaFrameBytes {
		end := off + mediaFrameBytes
		if end > len(ulaw) {
			end = len(ulaw)
		}
		frame := gin.H{
			"event":     "media",
			"streamSid": streamSID,
			"media":     outboundMedia{Payload: base64.StdEncoding.EncodeToString(ulaw[off:end])},
		}
		if err := conn.WriteJSON(frame); err != nil {
			return err
		}
	}
	return conn.WriteJSON(gin.H{
		"event":     "mark",
		"streamSid": streamSID,
		"mark":      outboundMark{Name: "script_done"},
	})
}

func (h *VoiceHandler) finishStream(ctx context.Context, callSID string, inbound []byte) {
	if callSID == "" || len(inbound) == 0 {
		return
	}
	audio := wav.EncodeFormat(mulaw.ToPCM16(inbound), wav.Format{
		Channels:      1,
		SampleRate:    mulaw.SampleRate,
		BitsPerSample: 16,
	})
	text := h.recognizer.Recognize(ctx, audio)
	if text == "" {
		return
	}
	if err := h.orch.RecordUtterance(ctx, callSID, text); err != nil {
		h.log.Warn("Stream utterance not recorded", "call_sid", callSID, "error", err)
	}
}
