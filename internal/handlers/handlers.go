package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Totarae/URLShortenerFront/internal/auth"
	"github.com/Totarae/URLShortenerFront/internal/model"
	"github.com/Totarae/URLShortenerFront/internal/storage"
	"github.com/Totarae/URLShortenerFront/internal/view"
	"go.uber.org/zap"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock_gateway.go -package=mocks

// Gateway пересылает запросы во внешний сервис сокращения ссылок.
type Gateway interface {
	CreateURL(ctx context.Context, req model.URLRequest) (*model.ShortenResult, error)
	UploadFile(ctx context.Context, req model.FileRequest) (*model.ShortenResult, error)
}

// Handler обслуживает страницу и действия форм.
type Handler struct {
	gateway       Gateway
	messages      storage.Storage
	auth          *auth.Auth
	page          *view.Page
	logger        *zap.Logger
	maxUploadSize int64
}

// NewHandler создаёт обработчик.
func NewHandler(gateway Gateway, messages storage.Storage, authService *auth.Auth, page *view.Page, logger *zap.Logger, maxUploadSize int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		gateway:       gateway,
		messages:      messages,
		auth:          authService,
		page:          page,
		logger:        logger,
		maxUploadSize: maxUploadSize,
	}
}

// Home отдаёт страницу с последним сообщением сессии.
// Сообщение показывается один раз: обновление страницы возвращает приглашение.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	sessionID := h.auth.GetOrSetSessionID(w, r)
	msg, _ := h.messages.Take(sessionID)

	var buf bytes.Buffer
	if err := h.page.Render(&buf, msg); err != nil {
		h.logger.Error("Ошибка рендеринга страницы", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// CreateForm обрабатывает отправку формы с URL.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	sessionID := h.auth.GetOrSetSessionID(w, r)

	req := model.URLRequest{
		URL:   r.PostFormValue("url"),
		Short: r.PostFormValue("short"),
	}

	res, err := h.gateway.CreateURL(r.Context(), req)
	if err != nil {
		h.renderFailure(w, err)
		return
	}

	h.remember(sessionID, res)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UploadForm обрабатывает отправку формы с файлом.
func (h *Handler) UploadForm(w http.ResponseWriter, r *http.Request) {
	sessionID := h.auth.GetOrSetSessionID(w, r)

	req, cleanup, err := h.readFileRequest(w, r)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	defer cleanup()

	res, err := h.gateway.UploadFile(r.Context(), req)
	if err != nil {
		h.renderFailure(w, err)
		return
	}

	h.remember(sessionID, res)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CreateJSON принимает URLRequest в JSON и возвращает ответ бэкенда как есть.
func (h *Handler) CreateJSON(w http.ResponseWriter, r *http.Request) {
	var req model.URLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	res, err := h.gateway.CreateURL(r.Context(), req)
	if err != nil {
		h.logger.Error("Ошибка обращения к бэкенду", zap.Error(err))
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	h.writeResult(w, res)
}

// UploadJSON принимает multipart-форму и возвращает ответ бэкенда как есть.
func (h *Handler) UploadJSON(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := h.readFileRequest(w, r)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}
	defer cleanup()

	res, err := h.gateway.UploadFile(r.Context(), req)
	if err != nil {
		h.logger.Error("Ошибка обращения к бэкенду", zap.Error(err))
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	h.writeResult(w, res)
}

// Ping сообщает, что сервер жив.
func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// readFileRequest разбирает multipart-форму. Отсутствие файла не ошибка:
// такой запрос получает нулевой размер и отклоняется шлюзом.
func (h *Handler) readFileRequest(w http.ResponseWriter, r *http.Request) (model.FileRequest, func(), error) {
	noop := func() {}

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return model.FileRequest{}, noop, err
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	req := model.FileRequest{Short: r.FormValue("short")}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return req, cleanup, nil
	}
	if err != nil {
		cleanup()
		return model.FileRequest{}, noop, err
	}

	req.Name = header.Filename
	req.ContentType = header.Header.Get("Content-Type")
	req.Size = header.Size
	req.Content = file

	return req, func() {
		_ = file.Close()
		cleanup()
	}, nil
}

const multipartMemory = 8 << 20

func (h *Handler) remember(sessionID string, res *model.ShortenResult) {
	h.messages.Save(sessionID, view.Project(res))
}

func (h *Handler) renderFailure(w http.ResponseWriter, err error) {
	h.logger.Error("Ошибка обращения к бэкенду", zap.Error(err))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if rerr := h.page.RenderFailure(w); rerr != nil {
		h.logger.Error("Ошибка рендеринга страницы ошибки", zap.Error(rerr))
	}
}

func (h *Handler) writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	h.logger.Warn("Некорректная multipart-форма", zap.Error(err))
	http.Error(w, "Bad Request", http.StatusBadRequest)
}

// writeResult отдаёт тело ответа бэкенда без изменений, если оно есть.
func (h *Handler) writeResult(w http.ResponseWriter, res *model.ShortenResult) {
	w.Header().Set("Content-Type", "application/json")

	if len(res.Raw) > 0 {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Raw)
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		h.logger.Error("Ошибка кодирования ответа", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
