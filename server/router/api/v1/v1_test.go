package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/profile"
)

func newTestService() (*APIV1Service, *echo.Echo) {
	p := &profile.Profile{Mode: "dev", Version: "0.3.0-dev"}
	service := NewAPIV1Service(p, nil, nil)
	e := echo.New()
	service.Register(e)
	return service, e
}

func TestGetStatus(t *testing.T) {
	_, e := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"version":"0.3.0-dev"`)
	require.Contains(t, rec.Body.String(), `"ai":false`)
}

func TestChatQueryUnavailableWithoutAI(t *testing.T) {
	_, e := newTestService()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/query", strings.NewReader(`{"query":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInvalidRestaurantID(t *testing.T) {
	_, e := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurants/abc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersRequiresUserID(t *testing.T) {
	_, e := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRestaurantsRejectsBadCoordinates(t *testing.T) {
	_, e := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurants?lat=abc&lng=1.0", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryParamID(t *testing.T) {
	e := echo.New()

	newCtx := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		return e.NewContext(req, httptest.NewRecorder())
	}

	_, err := queryParamID(newCtx("/?userId=7"), "userId")
	require.NoError(t, err)

	_, err = queryParamID(newCtx("/"), "userId")
	require.Error(t, err)

	_, err = queryParamID(newCtx("/?userId=-1"), "userId")
	require.Error(t, err)

	_, err = queryParamID(newCtx("/?userId=notanumber"), "userId")
	require.Error(t, err)
}
