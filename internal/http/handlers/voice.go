package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/novo-contact-backend/internal/http/response"
	"github.com/yungbote/novo-contact-backend/internal/modules/dialog"
	"github.com/yungbote/novo-contact-backend/internal/modules/voice"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/pkg/twiml"
	"github.com/yungbote/novo-contact-backend/internal/pkg/wav"
)

type VoiceDeps struct {
	Log          *logger.Logger
	Orchestrator *dialog.Orchestrator
	Synth        *voice.Synthesizer
	Assets       *dialog.Assets
	Clips        dialog.ClipStore
	Recognizer   voice.Recognizer
	// Links, when set, is required to verify ?sig= on /tts.
	Links   *voice.LinkSigner
	Metrics *observability.Metrics
}

// VoiceHandler serves the provider facing endpoints: call webhooks, audio
// fetches and the media stream.
type VoiceHandler struct {
	log        *logger.Logger
	orch       *dialog.Orchestrator
	synth      *voice.Synthesizer
	assets     *dialog.Assets
	clips      dialog.ClipStore
	recognizer voice.Recognizer
	links      *voice.LinkSigner
	metrics    *observability.Metrics
	upgrader   websocket.Upgrader
}

func NewVoiceHandler(d VoiceDeps) *VoiceHandler {
	if d.Recognizer == nil {
		d.Recognizer = voice.NopRecognizer()
	}
	return &VoiceHandler{
		log:        d.Log.With("handler", "VoiceHandler"),
		orch:       d.Orchestrator,
		synth:      d.Synth,
		assets:     d.Assets,
		clips:      d.Clips,
		recognizer: d.Recognizer,
		links:      d.Links,
		metrics:    d.Metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func formValue(c *gin.Context, key string) string {
	if v := c.PostForm(key); v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.Query(key))
}

func (h *VoiceHandler) Answer(c *gin.Context) {
	response.RespondTwiML(c, h.orch.Answer(c.Request.Context(), formValue(c, "CallSid")))
}

// Gather answers a captured utterance. Only an unknown call is an HTTP
// error; anything else ends the call politely.
func (h *VoiceHandler) Gather(c *gin.Context) {
	sid := formValue(c, "CallSid")
	doc, err := h.orch.Gather(c.Request.Context(), sid, formValue(c, "SpeechResult"))
	switch {
	case dialog.IsNotFound(err):
		response.RespondError(c, http.StatusNotFound, "call_not_found", err)
	case err != nil:
		h.log.Error("Gather failed", "call_sid", sid, "error", err)
		response.RespondTwiML(c, h.orch.Goodbye())
	default:
		response.RespondTwiML(c, doc)
	}
}

func (h *VoiceHandler) Status(c *gin.Context) {
	status := formValue(c, "CallStatus")
	h.metrics.IncCallStatus(status)
	h.orch.StatusUpdate(c.Request.Context(), formValue(c, "CallSid"), status)
	response.RespondTwiML(c, twiml.New())
}

// TTS synthesizes ?text= (or a form field) on demand for links minted by
// the orchestrator. Unlike the internal path, a failed synthesis is an
// error here.
func (h *VoiceHandler) TTS(c *gin.Context) {
	text := formValue(c, "text")
	if text == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissing("text"))
		return
	}
	if utf8.RuneCountInString(text) > voice.MaxSpeechChars {
		response.RespondError(c, http.StatusBadRequest, "text_too_long", fmt.Errorf("text exceeds %d characters", voice.MaxSpeechChars))
		return
	}
	if h.links != nil {
		if err := h.links.Verify(text, formValue(c, "sig")); err != nil {
			h.log.Warn("TTS link rejected", "error", err)
			response.RespondError(c, http.StatusForbidden, "invalid_link", voice.ErrBadLink)
			return
		}
	}
	audio, err := h.synth.SynthesizeStrict(c.Request.Context(), text)
	if err != nil {
		h.log.Warn("TTS endpoint synthesis failed", "error", err)
		response.RespondError(c, http.StatusBadGateway, "synthesis_failed", err)
		return
	}
	c.Data(http.StatusOK, wav.ContentType, audio)
}

func (h *VoiceHandler) Asset(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("name"), ".wav")
	audio, err := h.assets.Get(c.Request.Context(), name)
	if errors.Is(err, dialog.ErrUnknownAsset) {
		response.RespondError(c, http.StatusNotFound, "asset_not_found", err)
		return
	}
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "asset_failed", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, wav.ContentType, audio)
}

func (h *VoiceHandler) Clip(c *gin.Context) {
	id := strings.TrimSuffix(c.Param("id"), ".wav")
	audio, err := h.clips.Get(c.Request.Context(), id)
	if errors.Is(err, dialog.ErrClipNotFound) {
		response.RespondError(c, http.StatusNotFound, "clip_not_found", fmt.Errorf("clip %s not found", id))
		return
	}
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "clip_failed", err)
		return
	}
	c.Data(http.StatusOK, wav.ContentType, audio)
}
