package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONEnvelope(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, map[string]interface{}{"cache_hit": true})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, []interface{}{"a"}, body["data"])
	assert.Equal(t, true, body["meta"].(map[string]interface{})["cache_hit"])
	assert.NotContains(t, body, "error")
}

func TestErrorEnvelope(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrNotFound, "student not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
	assert.Empty(t, c.Errors)

	c, w = newContext()
	Error(c, errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, c.Errors, 1)
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "grades.csv", "text/csv", 4, strings.NewReader("a,b\n"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="grades.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
