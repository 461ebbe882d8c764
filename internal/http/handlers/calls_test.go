package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/modules/telephony"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/pkg/apierr"
	"github.com/yungbote/novo-contact-backend/internal/pkg/ctxutil"
	"github.com/yungbote/novo-contact-backend/internal/services"
)

type stubCalls struct {
	gotUser    uuid.UUID
	gotContact uuid.UUID
	gotScript  string
	err        error
}

func (s *stubCalls) Initiate(_ context.Context, userID, contactID uuid.UUID, script string) (*services.InitiateResult, error) {
	s.gotUser, s.gotContact, s.gotScript = userID, contactID, script
	if s.err != nil {
		return nil, s.err
	}
	return &services.InitiateResult{CallSID: telephony.SimulatedCallSID, Status: "initiated", Message: "ok"}, nil
}

func (s *stubCalls) Status(_ context.Context, sid string) (*telephony.Status, error) {
	return &telephony.Status{CallSID: sid, Status: telephony.StatusSimulated}, nil
}

func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID, SessionID: uuid.New()})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func callRouter(calls services.CallService, userID uuid.UUID, m *observability.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCallHandler(calls, m)
	r.GET("/healthcheck", NewHealthHandler().HealthCheck)
	g := r.Group("/api", withUser(userID))
	g.POST("/calls/initiate", h.Initiate)
	g.GET("/calls/:sid/status", h.Status)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestInitiateCall(t *testing.T) {
	user, contact := uuid.New(), uuid.New()
	calls := &stubCalls{}
	m := observability.NewMetrics()
	r := callRouter(calls, user, m)

	rec := doJSON(r, http.MethodPost, "/api/calls/initiate", `{"contact_id":"`+contact.String()+`","script":"Hello there"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if calls.gotUser != user || calls.gotContact != contact || calls.gotScript != "Hello there" {
		t.Fatalf("forwarded: %+v", calls)
	}
	if !strings.Contains(rec.Body.String(), `"call_sid":"SIMULATED_CALL_SID"`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
	var sb strings.Builder
	_ = m.WritePrometheus(&sb)
	if !strings.Contains(sb.String(), `novo_calls_placed_total{result="initiated"} 1`) {
		t.Fatalf("metrics: %s", sb.String())
	}
}

func TestInitiateCallRejections(t *testing.T) {
	r := callRouter(&stubCalls{}, uuid.New(), nil)
	if rec := doJSON(r, http.MethodPost, "/api/calls/initiate", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing contact: want=400 got=%d", rec.Code)
	}

	notFound := &stubCalls{err: apierr.New(http.StatusNotFound, "contact_not_found", errors.New("contact not found"))}
	r = callRouter(notFound, uuid.New(), nil)
	rec := doJSON(r, http.MethodPost, "/api/calls/initiate", `{"contact_id":"`+uuid.NewString()+`"}`)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "contact_not_found") {
		t.Fatalf("unknown contact: code=%d body=%s", rec.Code, rec.Body.String())
	}

	r = callRouter(&stubCalls{}, uuid.Nil, nil)
	if rec := doJSON(r, http.MethodPost, "/api/calls/initiate", `{"contact_id":"`+uuid.NewString()+`"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: want=401 got=%d", rec.Code)
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	r := callRouter(&stubCalls{err: errors.New("db password leaked")}, uuid.New(), nil)
	rec := doJSON(r, http.MethodPost, "/api/calls/initiate", `{"contact_id":"`+uuid.NewString()+`"}`)
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCallStatusAndHealth(t *testing.T) {
	r := callRouter(&stubCalls{}, uuid.New(), nil)
	rec := doJSON(r, http.MethodGet, "/api/calls/CA9/status", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"simulated"`) {
		t.Fatalf("status: code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(r, http.MethodGet, "/healthcheck", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Fatalf("health: code=%d body=%s", rec.Code, rec.Body.String())
	}
}
