package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/form", "200"))

	RecordHTTPRequest("GET", "/form", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/form", "200"))
	if after != before+1 {
		t.Errorf("requests counter = %v; want %v", after, before+1)
	}
}

func TestRecordUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("openweather", "unavailable"))

	RecordUpstream("openweather", "unavailable", time.Second)
	RecordUpstream("openweather", "unavailable", time.Second)

	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("openweather", "unavailable"))
	if after != before+2 {
		t.Errorf("upstream counter = %v; want %v", after, before+2)
	}
}
