package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/platform/auth"
	"github.com/rent-home/service-matching/internal/platform/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCounter struct {
	count int64
	err   error
}

func (s stubCounter) CountApartments(context.Context) (int64, error) {
	return s.count, s.err
}

type stubChecker struct {
	err   error
	calls int
}

func (s *stubChecker) RequireActive(context.Context, string) error {
	s.calls++
	return s.err
}

func newJWT() *auth.JWTManager {
	return auth.NewJWTManager("handler-test-secret", time.Hour, time.Hour)
}

func token(t *testing.T, m *auth.JWTManager, subject string, role auth.Role) string {
	t.Helper()
	tok, err := m.Generate(subject, "13800000000", role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doJSON(t *testing.T, r http.Handler, method, path, authHeader string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	NewHealthHandler(stubCounter{count: 7}).RegisterRoutes(r.Group(""))

	w, body := doJSON(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(7), body["apartmentsCount"])
}

func TestMatchHandler_MissingParams(t *testing.T) {
	r := gin.New()
	svc := application.NewMatchService(nil, nil, nil, zap.NewNop())
	NewMatchHandler(svc, nil).RegisterRoutes(r.Group(""), newJWT())

	for _, payload := range []interface{}{
		map[string]interface{}{"workAddress": "国贸", "commuteTime": 30},
		map[string]interface{}{"workAddress": "国贸", "commuteTime": "thirty", "budget": 3000},
	} {
		w, body := doJSON(t, r, http.MethodPost, "/api/match", "", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["message"], "缺少必要参数")
	}
}

func TestMatchHandler_SubscriptionGate(t *testing.T) {
	jwtManager := newJWT()
	checker := &stubChecker{err: domain.NewForbiddenError("请先开通或续费订阅服务").WithCode("SUBSCRIPTION_EXPIRED")}

	r := gin.New()
	svc := application.NewMatchService(nil, nil, nil, zap.NewNop())
	NewMatchHandler(svc, checker).RegisterRoutes(r.Group(""), jwtManager)

	w, body := doJSON(t, r, http.MethodPost, "/api/match", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
	assert.Zero(t, checker.calls)

	w, body = doJSON(t, r, http.MethodPost, "/api/match", token(t, jwtManager, "U0001", auth.RoleUser), map[string]interface{}{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "SUBSCRIPTION_EXPIRED", body["code"])

	checker.err = nil
	w, _ = doJSON(t, r, http.MethodPost, "/api/match", token(t, jwtManager, "U0001", auth.RoleUser), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 2, checker.calls)
}

func TestApartmentHandler_AdminRoutesRequireAdminRole(t *testing.T) {
	jwtManager := newJWT()
	r := gin.New()
	NewApartmentHandler(nil, nil, nil).RegisterRoutes(r.Group(""), jwtManager)

	w, _ := doJSON(t, r, http.MethodGet, "/api/admin/districts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/admin/districts", token(t, jwtManager, "U0001", auth.RoleUser), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApartmentHandler_Upload_NotConfigured(t *testing.T) {
	jwtManager := newJWT()
	r := gin.New()
	media := application.NewMediaService(nil, zap.NewNop())
	NewApartmentHandler(nil, media, nil).RegisterRoutes(r.Group(""), jwtManager)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "room.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload?type=image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", token(t, jwtManager, "A0001", auth.RoleAdmin))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "COS 未配置")
}

func TestApartmentHandler_Upload_MissingFile(t *testing.T) {
	jwtManager := newJWT()
	r := gin.New()
	NewApartmentHandler(nil, application.NewMediaService(nil, zap.NewNop()), nil).RegisterRoutes(r.Group(""), jwtManager)

	w, body := doJSON(t, r, http.MethodPost, "/api/admin/upload", token(t, jwtManager, "A0001", auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "请选择要上传的文件", body["message"])
}

func TestSuggestionHandler_BlankKeyword(t *testing.T) {
	r := gin.New()
	NewSuggestionHandler(application.NewSuggestionService(nil, "北京市", zap.NewNop())).RegisterRoutes(r.Group(""))

	w, body := doJSON(t, r, http.MethodGet, "/api/suggestion?keyword=", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestAuthHandler_SendCode_InvalidPhone(t *testing.T) {
	r := gin.New()
	svc := application.NewAuthService(nil, nil, nil, nil, newJWT(), "", zap.NewNop())
	NewAuthHandler(svc).RegisterRoutes(r.Group(""), newJWT())

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/send-code", "", map[string]string{"phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "请输入正确的手机号", body["message"])

	w, body = doJSON(t, r, http.MethodPost, "/api/admin/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "请输入用户名和密码", body["message"])
}

func TestSubscriptionHandler_RequiresLogin(t *testing.T) {
	r := gin.New()
	NewSubscriptionHandler(nil).RegisterRoutes(r.Group(""), newJWT())

	w, body := doJSON(t, r, http.MethodGet, "/api/subscription/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "请先登录", body["message"])
}
