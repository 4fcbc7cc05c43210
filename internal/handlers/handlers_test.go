package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Totarae/URLShortenerFront/internal/auth"
	"github.com/Totarae/URLShortenerFront/internal/handlers"
	"github.com/Totarae/URLShortenerFront/internal/handlers/mocks"
	"github.com/Totarae/URLShortenerFront/internal/model"
	"github.com/Totarae/URLShortenerFront/internal/service"
	"github.com/Totarae/URLShortenerFront/internal/storage"
	"github.com/Totarae/URLShortenerFront/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type testEnv struct {
	h       *handlers.Handler
	gateway *mocks.MockGateway
	store   *storage.MessageStore
	auth    *auth.Auth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLimit(t, 1<<20)
}

func newTestEnvWithLimit(t *testing.T, maxUploadSize int64) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	page, err := view.NewPage()
	require.NoError(t, err)

	env := &testEnv{
		gateway: mocks.NewMockGateway(ctrl),
		store:   storage.NewMessageStore(),
		auth:    auth.New("test-secret"),
	}
	env.h = handlers.NewHandler(env.gateway, env.store, env.auth, page, zap.NewNop(), maxUploadSize)
	return env
}

func (e *testEnv) withSession(req *http.Request, sessionID string) *http.Request {
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: e.auth.SignCookieValue(sessionID)})
	return req
}

func strPtr(s string) *string { return &s }

func newURLForm(rawURL, short string) *http.Request {
	form := url.Values{"url": {rawURL}, "short": {short}}
	req := httptest.NewRequest(http.MethodPost, "/create", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func newUploadForm(t *testing.T, path, fileName, content, short string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("short", short))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHome_Prompt(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.h.Home(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	resp := rec.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), view.PromptText)
	assert.NotEmpty(t, resp.Cookies())
}

func TestCreateForm_SuccessThenHomeShowsLink(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().
		CreateURL(gomock.Any(), model.URLRequest{URL: "https://example.com/path?q=1", Short: "abc"}).
		Return(&model.ShortenResult{Short: "https://short.ly/abc"}, nil)

	rec := httptest.NewRecorder()
	env.h.CreateForm(rec, env.withSession(newURLForm("https://example.com/path?q=1", "abc"), "s1"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	env.h.Home(rec, env.withSession(httptest.NewRequest(http.MethodGet, "/", nil), "s1"))
	assert.Contains(t, rec.Body.String(), `<a href="https://short.ly/abc" target="_blank"`)

	// сообщение показывается один раз
	rec = httptest.NewRecorder()
	env.h.Home(rec, env.withSession(httptest.NewRequest(http.MethodGet, "/", nil), "s1"))
	assert.Contains(t, rec.Body.String(), view.PromptText)
}

func TestCreateForm_LocalErrorShownAsFailure(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().
		CreateURL(gomock.Any(), model.URLRequest{URL: "not a url", Short: ""}).
		Return(model.NewErrorResult(service.MsgInvalidURL), nil)

	rec := httptest.NewRecorder()
	env.h.CreateForm(rec, env.withSession(newURLForm("not a url", ""), "s2"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	msg, ok := env.store.Take("s2")
	require.True(t, ok)
	assert.Equal(t, "Invalid URL", msg)
}

func TestCreateForm_NewSessionGetsCookie(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().CreateURL(gomock.Any(), gomock.Any()).
		Return(&model.ShortenResult{Short: "https://short.ly/x"}, nil)

	rec := httptest.NewRecorder()
	env.h.CreateForm(rec, newURLForm("https://example.com", "x"))

	resp := rec.Result()
	defer resp.Body.Close()

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	env.h.Home(rec, req)
	assert.Contains(t, rec.Body.String(), "https://short.ly/x")
}

func TestCreateForm_TransportErrorRendersFailurePage(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().CreateURL(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	rec := httptest.NewRecorder()
	env.h.CreateForm(rec, env.withSession(newURLForm("https://example.com", ""), "s3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.Equal(t, 0, env.store.Len())
}

func TestUploadForm_ForwardsFile(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().UploadFile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req model.FileRequest) (*model.ShortenResult, error) {
			assert.Equal(t, "report.pdf", req.Name)
			assert.Equal(t, int64(len("%PDF-1.4")), req.Size)
			assert.Equal(t, "doc", req.Short)
			data, err := io.ReadAll(req.Content)
			require.NoError(t, err)
			assert.Equal(t, "%PDF-1.4", string(data))
			return &model.ShortenResult{Short: "https://short.ly/doc"}, nil
		})

	rec := httptest.NewRecorder()
	env.h.UploadForm(rec, env.withSession(newUploadForm(t, "/upload", "report.pdf", "%PDF-1.4", "doc"), "s4"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	msg, _ := env.store.Take("s4")
	assert.Equal(t, "https://short.ly/doc", msg)
}

func TestUploadForm_NoFilePart(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().UploadFile(gomock.Any(), model.FileRequest{Short: "abc"}).
		Return(model.NewErrorResult(service.MsgNoFile), nil)

	rec := httptest.NewRecorder()
	env.h.UploadForm(rec, env.withSession(newUploadForm(t, "/upload", "", "", "abc"), "s5"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	msg, _ := env.store.Take("s5")
	assert.Equal(t, "No file selected", msg)
}

func TestUploadForm_NotMultipart(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("short=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	env.h.UploadForm(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJSON_ReplaysBackendBody(t *testing.T) {
	env := newTestEnv(t)
	raw := `{"short":"https://short.ly/abc","error":null,"created":true}`

	env.gateway.EXPECT().
		CreateURL(gomock.Any(), model.URLRequest{URL: "https://example.com", Short: "abc"}).
		Return(&model.ShortenResult{Short: "https://short.ly/abc", Raw: []byte(raw)}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader(`{"url":"https://example.com","short":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.h.CreateJSON(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, raw, rec.Body.String())
}

func TestCreateJSON_LocalError(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().CreateURL(gomock.Any(), gomock.Any()).
		Return(model.NewErrorResult(service.MsgInvalidURL), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader(`{"url":"bad","short":""}`))
	rec := httptest.NewRecorder()
	env.h.CreateJSON(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"short":"","error":"Invalid URL"}`, rec.Body.String())
}

func TestCreateJSON_BadBody(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.h.CreateJSON(rec, httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJSON_TransportError(t *testing.T) {
	env := newTestEnv(t)

	env.gateway.EXPECT().CreateURL(gomock.Any(), gomock.Any()).
		Return(nil, service.ErrTransport)

	rec := httptest.NewRecorder()
	env.h.CreateJSON(rec, httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader(`{"url":"https://example.com"}`)))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUploadJSON_ReplaysBackendBody(t *testing.T) {
	env := newTestEnv(t)
	raw := `{"short":"","error":"Short already taken"}`

	env.gateway.EXPECT().UploadFile(gomock.Any(), gomock.Any()).
		Return(&model.ShortenResult{Error: strPtr("Short already taken"), Raw: []byte(raw)}, nil)

	rec := httptest.NewRecorder()
	env.h.UploadJSON(rec, newUploadForm(t, "/api/upload", "a.txt", "data", "taken"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, raw, rec.Body.String())
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.h.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestUpload_TooLarge(t *testing.T) {
	big := strings.Repeat("x", 4096)

	tests := []struct {
		name   string
		path   string
		handle func(h *handlers.Handler) http.HandlerFunc
	}{
		{"form", "/upload", func(h *handlers.Handler) http.HandlerFunc { return h.UploadForm }},
		{"api", "/api/upload", func(h *handlers.Handler) http.HandlerFunc { return h.UploadJSON }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWithLimit(t, 1024)
			// шлюз не должен вызываться: EXPECT не задан

			rec := httptest.NewRecorder()
			tt.handle(env.h)(rec, newUploadForm(t, tt.path, "big.bin", big, "big"))

			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Equal(t, 0, env.store.Len())
		})
	}
}
