package apierr

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/yungbote/novo-contact-backend/internal/pkg/errors"
)

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Fatalf("From(nil) should be nil")
	}
	nf := From(fmt.Errorf("contact: %w", pkgerrors.ErrNotFound))
	if nf.Status != http.StatusNotFound {
		t.Fatalf("not found status: want=%d got=%d", http.StatusNotFound, nf.Status)
	}
	orig := New(http.StatusBadRequest, "no_script", fmt.Errorf("no script"))
	if got := From(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Fatalf("From should unwrap existing *Error")
	}
	if got := From(fmt.Errorf("boom")); got.Status != http.StatusInternalServerError {
		t.Fatalf("default status: want=500 got=%d", got.Status)
	}
}
