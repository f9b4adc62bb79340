package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errSentinel = fmt.Errorf("sentinel")

func TestProblemDetail_FlattensExtensions(t *testing.T) {
	problem := NewStepProblem(ErrBadGateway.WithDetail("lines failed"), "order_lines", true)

	body, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, TypeOrderPlacement, decoded["type"])
	require.EqualValues(t, http.StatusBadGateway, decoded["status"])
	require.Equal(t, "order_lines", decoded["step"])
	require.Equal(t, true, decoded["retryable"])
	require.NotContains(t, decoded, "instance")
}

func TestProblemDetail_WithExtensionCopies(t *testing.T) {
	base := ErrConflict.WithExtension("a", 1)
	derived := base.WithExtension("b", 2)
	require.Len(t, base.Extensions, 1)
	require.Len(t, derived.Extensions, 2)
	require.Nil(t, ErrConflict.Extensions)
}

func TestResponder_MapsThroughChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	responder := NewResponder("", func(err error) (ProblemDetail, bool) {
		if err == errSentinel {
			return ErrConflict.WithDetail("mapped"), true
		}
		return ProblemDetail{}, false
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	responder.RespondError(c, errSentinel)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Equal(t, "/v1/cart", decoded["instance"])
	require.Equal(t, "mapped", decoded["detail"])
	require.True(t, c.IsAborted())
}

func TestResponder_UnknownIsInternal(t *testing.T) {
	responder := NewResponder("https://api.freshcart.com")
	problem := responder.Problem(fmt.Errorf("boom"))
	require.Equal(t, http.StatusInternalServerError, problem.Status)
	require.Equal(t, http.StatusBadGateway, HTTPStatusFromError(fmt.Errorf("wrap: %w", ErrBadGateway)))
}
