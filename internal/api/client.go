package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

// Заголовок для корреляции запросов в логах клиента и сервера.
const RequestIDHeader = "X-Request-ID"

// DefaultFallback - сообщение для ответов без detail, если запрос не задал свое.
var DefaultFallback = StatusFallback("Error en la petición") //nolint:gochecknoglobals // Неизменяемое значение

// Client определяет интерфейс для взаимодействия с REST API событий.
type Client interface {
	// Do выполняет запрос и декодирует JSON ответа в out (если out != nil).
	Do(ctx context.Context, req Request, out any) error
	// ResolveURL превращает путь в абсолютный URL относительно базового адреса API.
	ResolveURL(path string, query url.Values) (string, error)
	// BaseURL возвращает базовый адрес API.
	BaseURL() string
}

// Request описывает один запрос к API.
type Request struct {
	Method string
	// Path - путь относительно базового URL или абсолютный адрес, начинающийся с "http".
	Path   string
	Query  url.Values
	Header http.Header
	// JSON и Form взаимоисключающие; JSON имеет приоритет.
	JSON any
	Form url.Values
	// Fallback формирует сообщение для ответа без detail. По умолчанию DefaultFallback.
	Fallback func(status int) string
}

// Option настраивает клиент.
type Option func(*httpClient)

// WithHTTPClient подменяет HTTP клиент (таймауты, транспорт в тестах).
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) {
		if c != nil {
			h.httpClient = c
		}
	}
}

// WithLogger задает логгер запросов.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *httpClient) {
		h.logger = logger
	}
}

// httpClient реализует интерфейс Client поверх net/http.
type httpClient struct {
	baseURL    string       // Базовый URL API, например "http://localhost:8000"
	httpClient *http.Client // HTTP клиент для выполнения запросов
	logger     zerolog.Logger
}

// NewHTTPClient создает новый экземпляр API клиента.
func NewHTTPClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{}, // Без таймаута: зависший запрос блокирует только свой индикатор загрузки
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) BaseURL() string {
	return c.baseURL
}

func (c *httpClient) ResolveURL(path string, query url.Values) (string, error) {
	var (
		rawURL string
		err    error
	)
	path, inline, _ := strings.Cut(path, "?")

	if strings.HasPrefix(path, "http") {
		rawURL = path
	} else {
		rawURL, err = url.JoinPath(c.baseURL, path)
		if err != nil {
			return "", fmt.Errorf("ошибка формирования URL для '%s': %w", path, err)
		}
	}

	merged := url.Values{}
	if inline != "" {
		parsed, parseErr := url.ParseQuery(inline)
		if parseErr != nil {
			return "", fmt.Errorf("некорректная строка запроса '%s': %w", inline, parseErr)
		}
		for k, vs := range parsed {
			merged[k] = append(merged[k], vs...)
		}
	}
	for k, vs := range query {
		merged[k] = append(merged[k], vs...)
	}
	if len(merged) > 0 {
		rawURL += "?" + merged.Encode()
	}
	return rawURL, nil
}

func (c *httpClient) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	fallback := req.Fallback
	if fallback == nil {
		fallback = DefaultFallback
	}

	target, err := c.ResolveURL(req.Path, req.Query)
	if err != nil {
		return err
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса %s %s: %w", method, target, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	logger := c.logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", target).
		Logger()

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn().Err(err).Msg("Запрос не выполнен")
		return &Error{Kind: KindNetwork, Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("Ответ получен")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := decodeDetail(data)
		message := detail
		if message == "" {
			message = fallback(resp.StatusCode)
		}
		return &Error{
			Kind:       KindStatus,
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Detail:     detail,
			Message:    message,
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return &Error{
			Kind:       KindDecode,
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("ошибка декодирования ответа: %w", err),
		}
	}
	return nil
}

// encodeBody кодирует тело запроса и возвращает соответствующий Content-Type.
func encodeBody(req Request) (io.Reader, string, error) {
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("ошибка кодирования тела запроса: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case req.Form != nil:
		return strings.NewReader(req.Form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return http.NoBody, "", nil
	}
}

// decodeDetail извлекает сообщение из тела ошибки {"detail": ...}.
func decodeDetail(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var errResp models.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return ""
	}
	return errResp.Message()
}
