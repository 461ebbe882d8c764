package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server) Client {
	t.Helper()
	c, err := New(logger.Nop(), Config{
		AccountSID:  "AC123",
		AuthToken:   "secret",
		BaseURL:     srv.URL,
		DefaultFrom: "+15550000000",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCreateCallSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/Accounts/AC123/Calls.json" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("basic auth: got=%s/%s", user, pass)
		}
		_ = r.ParseForm()
		if r.PostForm.Get("To") != "+15551112222" || r.PostForm.Get("From") != "+15550000000" {
			t.Errorf("numbers: got to=%q from=%q", r.PostForm.Get("To"), r.PostForm.Get("From"))
		}
		if r.PostForm.Get("Url") != "https://example.test/api/voice/answer" {
			t.Errorf("Url: got=%q", r.PostForm.Get("Url"))
		}
		if got := r.PostForm["StatusCallbackEvent"]; len(got) != 2 {
			t.Errorf("StatusCallbackEvent: got=%v", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA42","status":"queued"}`))
	}))
	defer srv.Close()

	call, err := newTestClient(t, srv).CreateCall(context.Background(), CreateCallRequest{
		To:                   "+15551112222",
		URL:                  "https://example.test/api/voice/answer",
		StatusCallbackURL:    "https://example.test/api/voice/status",
		StatusCallbackEvents: []string{"answered", "completed"},
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	if call.SID != "CA42" {
		t.Fatalf("sid: want=CA42 got=%s", call.SID)
	}
}

func TestCreateCallRetriesRateLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"sid":"CA43"}`))
	}))
	defer srv.Close()

	call, err := newTestClient(t, srv).CreateCall(context.Background(), CreateCallRequest{To: "+1555", TwiML: "<Response/>"})
	if err != nil || call.SID != "CA43" {
		t.Fatalf("CreateCall: err=%v call=%v", err, call)
	}
	if hits != 2 {
		t.Fatalf("hits: want=2 got=%d", hits)
	}
}

func TestCreateCallServerErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv).CreateCall(context.Background(), CreateCallRequest{To: "+1555", TwiML: "<Response/>"}); err == nil {
		t.Fatalf("CreateCall: expected error on 503")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("hits: want=1 got=%d", n)
	}
}

// A slow provider may already have placed the call, so a client timeout
// must not send a second create.
func TestCreateCallTimeoutNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"sid":"CA2"}`))
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{
		AccountSID:  "AC123",
		AuthToken:   "secret",
		BaseURL:     srv.URL,
		DefaultFrom: "+15550000000",
		Timeout:     100 * time.Millisecond,
		MaxRetries:  2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	call, err := c.CreateCall(context.Background(), CreateCallRequest{To: "+1555", TwiML: "<Response/>"})
	if err == nil {
		t.Fatalf("CreateCall: want timeout error got call=%v", call)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("provider POSTs: want=1 got=%d", n)
	}
}

func TestRefusedConnectionIsNotDelivered(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(logger.Nop(), Config{
		AccountSID:  "AC123",
		AuthToken:   "secret",
		BaseURL:     addr,
		DefaultFrom: "+15550000000",
		Timeout:     time.Second,
		MaxRetries:  0,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.CreateCall(context.Background(), CreateCallRequest{To: "+1555", TwiML: "<Response/>"})
	if err == nil || !notDelivered(err) {
		t.Fatalf("refused dial should count as not delivered, got=%v", err)
	}
}

func TestFetchCallRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"sid":"CA42","status":"in-progress"}`))
	}))
	defer srv.Close()

	call, err := newTestClient(t, srv).FetchCall(context.Background(), "CA42")
	if err != nil || call.Status != "in-progress" {
		t.Fatalf("FetchCall: err=%v call=%v", err, call)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("hits: want=2 got=%d", n)
	}
}

func TestCreateCallClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).CreateCall(context.Background(), CreateCallRequest{To: "bad", TwiML: "<Response/>"})
	if err == nil || !strings.Contains(err.Error(), "21211") {
		t.Fatalf("expected api error, got=%v", err)
	}
	if hits != 1 {
		t.Fatalf("hits: want=1 got=%d", hits)
	}
}

func TestFetchCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/Accounts/AC123/Calls/CA42.json" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"sid":"CA42","status":"completed","duration":"17","start_time":"Tue, 10 Aug 2010 08:02:17 +0000","end_time":"Tue, 10 Aug 2010 08:02:34 +0000"}`))
	}))
	defer srv.Close()

	call, err := newTestClient(t, srv).FetchCall(context.Background(), "CA42")
	if err != nil {
		t.Fatalf("FetchCall: %v", err)
	}
	if call.Status != "completed" || call.Duration != "17" {
		t.Fatalf("call: want=completed/17 got=%s/%s", call.Status, call.Duration)
	}
}

func TestConfigured(t *testing.T) {
	if (Config{}).Configured() {
		t.Fatalf("empty config should not be configured")
	}
	if !(Config{AccountSID: "AC", AuthToken: "t", DefaultFrom: "+1"}).Configured() {
		t.Fatalf("sid+token+from should be configured")
	}
	if (Config{AccountSID: "AC", APIKey: "k", DefaultFrom: "+1"}).Configured() {
		t.Fatalf("api key without secret should not be configured")
	}
}
