package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOperationLabelsResult(t *testing.T) {
	before := testutil.ToFloat64(operations.WithLabelValues("swap", "error"))
	Operation("swap", errors.New("boom"))
	if got, want := testutil.ToFloat64(operations.WithLabelValues("swap", "error")), before+1; got != want {
		t.Fatalf("swap/error = %v; want %v", got, want)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	MarketPoll("fallback")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `volvot_market_polls_total{outcome="fallback"}`) {
		t.Fatalf("metrics body missing market poll counter")
	}
}
