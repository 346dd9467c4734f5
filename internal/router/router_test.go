package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"papertrail/internal/authz"
	"papertrail/internal/domain"
	"papertrail/internal/handler"
	"papertrail/internal/metrics"
	"papertrail/internal/router"
	"papertrail/internal/service"
	"papertrail/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingFunc func() error

func (f pingFunc) PingContext(context.Context) error { return f() }

type routerFixture struct {
	engine   *gin.Engine
	verifier *mocks.MockTokenVerifier
	custody  *mocks.MockCustodyService
}

func setupRouter(t *testing.T) *routerFixture {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	access := filepath.Join(filepath.Dir(file), "..", "..", "config", "access")
	a, err := authz.NewAuthorizer(filepath.Join(access, "model.conf"), filepath.Join(access, "policy.csv"))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics.New(reg)

	f := &routerFixture{
		verifier: new(mocks.MockTokenVerifier),
		custody:  new(mocks.MockCustodyService),
	}
	f.engine = router.Setup(
		f.verifier,
		a,
		[]string{"http://localhost:3000"},
		handler.NewCustodyHandler(f.custody, 100),
		handler.NewHealthHandler(pingFunc(func() error { return nil })),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)
	return f
}

func (f *routerFixture) login(token string, userID int64, role domain.UserRole) {
	f.verifier.On("ValidateToken", token).Return(&service.Claims{UserID: userID, Role: role}, nil)
}

func (f *routerFixture) do(method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicEndpoints(t *testing.T) {
	f := setupRouter(t)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/readyz", "").Code)

	w := f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "papertrail_custody_notices_failed_total")
}

func TestRouter_APIRequiresToken(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodGet, "/api/v1/documents/10/custody", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.custody.AssertNotCalled(t, "GetCustody", mock.Anything, mock.Anything)
}

func TestRouter_MemberCannotRollback(t *testing.T) {
	f := setupRouter(t)
	f.login("member-token", 5, domain.RoleMember)

	w := f.do(http.MethodPost, "/api/v1/documents/10/custody/rollback", "member-token")

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.custody.AssertNotCalled(t, "Rollback", mock.Anything, mock.Anything)
}

func TestRouter_AdminRollbackReachesService(t *testing.T) {
	f := setupRouter(t)
	f.login("admin-token", 1, domain.RoleAdmin)
	f.custody.On("Rollback", mock.Anything, &service.RollbackInput{DocumentID: 10, AdminUser: 1}).
		Return(&domain.CustodyRecord{DocumentID: 10, Status: domain.CustodyStatusAvailable}, nil)

	w := f.do(http.MethodPost, "/api/v1/documents/10/custody/rollback", "admin-token")

	assert.Equal(t, http.StatusOK, w.Code)
	f.custody.AssertExpectations(t)
}

func TestRouter_MemberReadsOverdue(t *testing.T) {
	f := setupRouter(t)
	f.login("member-token", 5, domain.RoleMember)
	f.custody.On("ListOverdue", mock.Anything, mock.Anything, 0, 20).
		Return(nil, 0, errors.New("connection reset"))

	w := f.do(http.MethodGet, "/api/v1/custody/overdue", "member-token")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	f.custody.AssertExpectations(t)
}
