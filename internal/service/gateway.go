package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Totarae/URLShortenerFront/internal/model"
	"github.com/Totarae/URLShortenerFront/internal/util"
	"go.uber.org/zap"
)

// Сообщения локальной валидации, показываемые пользователю.
const (
	MsgInvalidURL = "Invalid URL"
	MsgNoFile     = "No file selected"
)

const (
	createPath = "/create"
	uploadPath = "/upload"

	defaultMaxResponseSize = 1 << 20
)

var (
	// ErrBackendNotConfigured возвращается, если SERVER_URL не задан.
	ErrBackendNotConfigured = errors.New("backend server URL is not configured")
	// ErrTransport оборачивает сетевые ошибки запроса к бэкенду.
	ErrTransport = errors.New("backend request failed")
	// ErrDecode оборачивает ошибки разбора ответа бэкенда.
	ErrDecode = errors.New("backend response is not valid JSON")
	// ErrResponseTooLarge возвращается, если ответ бэкенда больше MaxResponseSize.
	ErrResponseTooLarge = errors.New("backend response is too large")
)

// BackendResolver отдаёт базовый адрес бэкенда. Вызывается на каждый запрос.
type BackendResolver interface {
	BackendURL() string
}

// StaticBackend — фиксированный адрес бэкенда.
type StaticBackend string

// BackendURL implements BackendResolver.
func (s StaticBackend) BackendURL() string {
	return string(s)
}

// Gateway пересылает запросы на сокращение во внешний сервис.
type Gateway struct {
	Resolver BackendResolver
	Client   *http.Client
	Logger   *zap.Logger
	// MaxResponseSize ограничивает тело ответа бэкенда (по умолчанию 1 MiB).
	// Более длинный ответ не обрезается, а завершается ErrResponseTooLarge.
	MaxResponseSize int64
}

// NewGateway создаёт Gateway. Нулевой timeout означает отсутствие ограничения.
func NewGateway(resolver BackendResolver, timeout time.Duration, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		Resolver:        resolver,
		Client:          &http.Client{Timeout: timeout},
		Logger:          logger,
		MaxResponseSize: defaultMaxResponseSize,
	}
}

// CreateURL проверяет URL и отправляет его на POST {SERVER_URL}/create.
func (g *Gateway) CreateURL(ctx context.Context, req model.URLRequest) (*model.ShortenResult, error) {
	if !util.IsValidURL(req.URL) {
		return model.NewErrorResult(MsgInvalidURL), nil
	}

	endpoint, err := g.endpoint(createPath)
	if err != nil {
		return nil, err
	}

	// JSON.stringify не экранирует &, < и >
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("encode create request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bytes.TrimSuffix(body.Bytes(), []byte("\n"))))
	if err != nil {
		return nil, fmt.Errorf("build create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return g.do(httpReq)
}

// UploadFile отправляет файл и алиас на POST {SERVER_URL}/upload.
func (g *Gateway) UploadFile(ctx context.Context, req model.FileRequest) (*model.ShortenResult, error) {
	if req.Size == 0 || req.Content == nil {
		return model.NewErrorResult(MsgNoFile), nil
	}

	endpoint, err := g.endpoint(uploadPath)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writeFilePart(mw, req); err != nil {
		return nil, fmt.Errorf("encode upload request: %w", err)
	}
	if err := mw.WriteField("short", req.Short); err != nil {
		return nil, fmt.Errorf("encode upload request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encode upload request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	return g.do(httpReq)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, req model.FileRequest) error {
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(req.Name)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, req.Content)
	return err
}

func (g *Gateway) endpoint(path string) (string, error) {
	base := ""
	if g.Resolver != nil {
		base = g.Resolver.BackendURL()
	}
	if base == "" {
		return "", ErrBackendNotConfigured
	}
	g.Logger.Info("Using server URL", zap.String("server_url", base))
	return util.JoinEndpoint(base, path), nil
}

// do выполняет запрос и разбирает JSON-ответ независимо от статуса.
func (g *Gateway) do(req *http.Request) (*model.ShortenResult, error) {
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		g.Logger.Error("Ошибка запроса к бэкенду",
			zap.String("endpoint", req.URL.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	limit := g.MaxResponseSize
	if limit <= 0 {
		limit = defaultMaxResponseSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, limit, req.URL)
	}

	g.Logger.Info("Backend response",
		zap.String("endpoint", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var result model.ShortenResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	result.Raw = json.RawMessage(data)

	return &result, nil
}
