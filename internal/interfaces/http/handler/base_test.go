package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stockflows/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withScope injects a resolved request context, standing in for the session
// and context middleware in handler tests.
func withScope(rc middleware.RequestContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.RequestContextKey, rc)
		c.Next()
	}
}

func testScope(role identity.Role, branchID *uuid.UUID) middleware.RequestContext {
	return middleware.RequestContext{
		OrgID:    uuid.New(),
		BranchID: branchID,
		UserID:   uuid.New(),
		Role:     role,
	}
}

func TestHandleError_DomainErrorMapping(t *testing.T) {
	h := &BaseHandler{}
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, "ERR_CONCURRENCY_CONFLICT"},
		{"state", shared.NewDomainError("INVALID_STATE", "nope"), http.StatusUnprocessableEntity, "ERR_INVALID_STATE"},
		{"validation", shared.NewDomainError("INVALID_NAME", "bad name"), http.StatusBadRequest, "ERR_VALIDATION"},
		{"unknown", assertError{}, http.StatusInternalServerError, "ERR_INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

type assertError struct{}

func (assertError) Error() string { return "boom" }

func TestBindJSON_ValidationDetails(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var body struct {
		Name string `json:"name" binding:"required"`
	}
	ok := h.BindJSON(c, &body)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	assert.Contains(t, w.Body.String(), "required")
}

func TestBindJSON_MalformedBody(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	c.Request.Header.Set("Content-Type", "application/json")

	var body struct {
		Name string `json:"name"`
	}
	ok := h.BindJSON(c, &body)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_BAD_REQUEST")
}

func TestPathID_Invalid(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	_, ok := h.PathID(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBranchScope_RequiresBranch(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/probe", withScope(testScope(identity.RoleOrgAdmin, nil)), func(c *gin.Context) {
		_, _, ok := h.BranchScope(c)
		if !ok {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "branch")
}

func TestSystemHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewSystemHandler("1.2.3").Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), "1.2.3")
}
