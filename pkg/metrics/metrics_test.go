package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFriendOperation(t *testing.T) {
	success := friendOperations.WithLabelValues(OpAcceptRequest, ResultSuccess)
	failure := friendOperations.WithLabelValues(OpAcceptRequest, ResultError)
	beforeOK := testutil.ToFloat64(success)
	beforeErr := testutil.ToFloat64(failure)

	ObserveFriendOperation(OpAcceptRequest, time.Now(), nil)
	ObserveFriendOperation(OpAcceptRequest, time.Now(), errors.New("boom"))
	ObserveFriendOperation(OpAcceptRequest, time.Now(), nil)

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(failure))
}

func TestWSGauge(t *testing.T) {
	before := testutil.ToFloat64(wsConnections)
	WSConnected()
	WSConnected()
	WSDisconnected()
	assert.Equal(t, before+1, testutil.ToFloat64(wsConnections))
	WSDisconnected()
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveFriendOperation(OpSendRequest, time.Now(), nil)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "social_friend_operations_total")
	assert.Contains(t, w.Body.String(), "social_friend_operation_duration_seconds")
}
