package resolve

import (
	"errors"
	"net/http"
	"testing"

	"github.com/pavitra93/menulink/shared/backend"
	"github.com/stretchr/testify/assert"
)

func response(status int, body string) *backend.Response {
	return &backend.Response{StatusCode: status, Body: []byte(body)}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		resp    *backend.Response
		err     error
		kind    Kind
		message string
	}{
		{
			name: "ready",
			resp: response(http.StatusOK, `{"success":true,"restaurant":{"id":"r1"}}`),
			kind: KindReady,
		},
		{
			name:    "unknown slug with message",
			resp:    response(http.StatusNotFound, `{"success":false,"slug":false,"message":"No such place"}`),
			kind:    KindNotFound,
			message: "No such place",
		},
		{
			name:    "unknown slug without message",
			resp:    response(http.StatusNotFound, `{"success":false,"slug":false}`),
			kind:    KindNotFound,
			message: "Restaurant not found",
		},
		{
			name:    "inactive membership",
			resp:    response(http.StatusForbidden, `{"success":false,"membership":false}`),
			kind:    KindInactive,
			message: "Membership is not active",
		},
		{
			name:    "slug marker wins over membership marker",
			resp:    response(http.StatusNotFound, `{"success":false,"slug":false,"membership":false}`),
			kind:    KindNotFound,
			message: "Restaurant not found",
		},
		{
			name:    "server error with message",
			resp:    response(http.StatusInternalServerError, `{"success":false,"message":"db down"}`),
			kind:    KindOther,
			message: "db down",
		},
		{
			name:    "server error without message",
			resp:    response(http.StatusInternalServerError, `{"success":false}`),
			kind:    KindOther,
			message: "Failed to load restaurant",
		},
		{
			name:    "success flag on non-2xx is not ready",
			resp:    response(http.StatusInternalServerError, `{"success":true}`),
			kind:    KindOther,
			message: "Failed to load restaurant",
		},
		{
			name:    "slug marker true is ignored",
			resp:    response(http.StatusBadRequest, `{"success":false,"slug":true}`),
			kind:    KindOther,
			message: "Failed to load restaurant",
		},
		{
			name:    "malformed body",
			resp:    response(http.StatusOK, `<html>`),
			kind:    KindOther,
			message: TransportFailureMessage,
		},
		{
			name:    "transport failure",
			err:     errors.New("connection refused"),
			kind:    KindOther,
			message: TransportFailureMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Classify(RestaurantSubject, tt.resp, tt.err)
			assert.Equal(t, tt.kind, outcome.Kind)
			assert.Equal(t, tt.message, outcome.Message)
			if tt.kind == KindReady {
				assert.NotEmpty(t, outcome.Payload)
			} else {
				assert.Nil(t, outcome.Payload)
			}
		})
	}
}

func TestClassifyDocumentSubject(t *testing.T) {
	outcome := Classify(DocumentSubject, response(http.StatusNotFound, `{"success":false,"slug":false}`), nil)
	assert.Equal(t, KindNotFound, outcome.Kind)
	assert.Equal(t, "PDF not found", outcome.Message)
}
