// Package twiml builds the declarative voice-response documents returned to
// the telephony provider from webhook handlers.
package twiml

import (
	"sort"
	"strconv"

	gotwiml "github.com/twilio/twilio-go/twiml"
)

const ContentType = "application/xml"

// Response is an ordered list of top-level verbs rendered by twilio-go.
type Response struct {
	Verbs []gotwiml.Element
}

func New() *Response { return &Response{} }

// PlayVerb is a standalone Play, for nesting inside a Gather.
func PlayVerb(url string) gotwiml.Element {
	return &gotwiml.VoicePlay{Url: url}
}

func (r *Response) Play(url string) *Response {
	r.Verbs = append(r.Verbs, PlayVerb(url))
	return r
}

// GatherSpeech appends a speech-only Gather. prompt, when non-empty, is
// played inside the Gather.
func (r *Response) GatherSpeech(action string, timeoutSec int, language string, prompt ...gotwiml.Element) *Response {
	g := &gotwiml.VoiceGather{
		Input:         "speech",
		Action:        action,
		Method:        "POST",
		Language:      language,
		InnerElements: prompt,
	}
	if timeoutSec > 0 {
		g.Timeout = strconv.Itoa(timeoutSec)
	}
	r.Verbs = append(r.Verbs, g)
	return r
}

func (r *Response) Hangup() *Response {
	r.Verbs = append(r.Verbs, &gotwiml.VoiceHangup{})
	return r
}

func (r *Response) ConnectStream(url string, params map[string]string) *Response {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	stream := &gotwiml.VoiceStream{Url: url}
	for _, k := range keys {
		stream.InnerElements = append(stream.InnerElements, &gotwiml.VoiceParameter{Name: k, Value: params[k]})
	}
	r.Verbs = append(r.Verbs, &gotwiml.VoiceConnect{InnerElements: []gotwiml.Element{stream}})
	return r
}

// Marshal renders the document with the XML declaration.
func (r *Response) Marshal() ([]byte, error) {
	doc, err := gotwiml.Voice(r.Verbs)
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

func (r *Response) String() string {
	b, err := r.Marshal()
	if err != nil {
		return ""
	}
	return string(b)
}

// Primitives lists the top-level verb names in order.
func (r *Response) Primitives() []string {
	out := make([]string, 0, len(r.Verbs))
	for _, v := range r.Verbs {
		out = append(out, v.GetName())
	}
	return out
}

func (r *Response) Count(name string) int {
	n := 0
	for _, v := range r.Verbs {
		if v.GetName() == name {
			n++
		}
	}
	return n
}

// PlayURL returns the URL of the Play at index i, or "" when that verb is
// not a Play.
func (r *Response) PlayURL(i int) string {
	if i < 0 || i >= len(r.Verbs) || r.Verbs[i].GetName() != "Play" {
		return ""
	}
	return r.Verbs[i].GetText()
}

// GatherAt returns the Gather at index i, or nil.
func (r *Response) GatherAt(i int) *gotwiml.VoiceGather {
	if i < 0 || i >= len(r.Verbs) {
		return nil
	}
	g, _ := r.Verbs[i].(*gotwiml.VoiceGather)
	return g
}
