// Пакет draftapi — HTTP-клиент Draft API платформы CEDO.
// Поддерживает TLS с кастомным CA (DK_DRAFT_API_CA_CERT) и
// проброс bearer-токена через TokenProvider.
// Операции: GetDraft (GET /drafts/{draftId}).
package draftapi

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// TokenProvider — функция, возвращающая bearer-токен для авторизации
// запросов к Draft API. Обычно это проброс токена входящего запроса
// (middleware.RawTokenFromContext) либо статический сервисный токен из
// конфигурации. Пустой токен без ошибки — запрос без авторизации.
type TokenProvider func(ctx context.Context) (string, error)

// ErrDraftNotFound — черновик отсутствует на сервере (404).
var ErrDraftNotFound = errors.New("черновик не найден")

// Draft — черновик из Draft API (ответ GET /drafts/{draftId}).
// Payload хранит секции как сырой JSON: извлечение и разбор секции
// отложены до Section.
type Draft struct {
	ID      string                     `json:"id"`
	Payload map[string]json.RawMessage `json:"payload"`
}

// Section извлекает данные секции из payload черновика.
// Возвращает false, если секции нет или её содержимое — не JSON-объект:
// повреждённая секция означает отсутствие данных, не ошибку.
func (d *Draft) Section(name string) (map[string]any, bool) {
	if d == nil || d.Payload == nil {
		return nil, false
	}
	raw, ok := d.Payload[name]
	if !ok {
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return data, true
}

// Client — HTTP-клиент Draft API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokenProvider TokenProvider
	logger        *slog.Logger
}

// New создаёт клиент Draft API.
// baseURL — базовый URL API (например, https://api.cedo.lan/api/v1).
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
// timeout — таймаут HTTP-запросов (из конфигурации DK_DRAFT_API_TIMEOUT).
// tokenProvider — функция получения bearer-токена (может быть nil).
func New(baseURL, caCertPath string, timeout time.Duration, tokenProvider TokenProvider, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата Draft API: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат Draft API добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       normalizeURL(baseURL),
		tokenProvider: tokenProvider,
		logger:        logger.With(slog.String("component", "draft_api_client")),
	}, nil
}

// GetDraft запрашивает черновик по идентификатору.
// GET {baseURL}/drafts/{draftId} — авторизация через bearer-токен.
// 404 возвращается как ErrDraftNotFound, прочие не-2xx — как ошибка
// со статусом и телом ответа.
func (c *Client) GetDraft(ctx context.Context, draftID string) (*Draft, error) {
	reqURL := fmt.Sprintf("%s/drafts/%s", c.baseURL, draftID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса GetDraft: %w", err)
	}

	// Добавляем авторизацию; пустой токен — запрос без заголовка
	if c.tokenProvider != nil {
		token, tokenErr := c.tokenProvider(ctx)
		if tokenErr != nil {
			return nil, fmt.Errorf("получение токена для Draft API: %w", tokenErr)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос GetDraft к %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("черновик %s: %w", draftID, ErrDraftNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Draft API вернул статус %d: %s", resp.StatusCode, string(body))
	}

	var draft Draft
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		return nil, fmt.Errorf("декодирование черновика %s: %w", draftID, err)
	}

	return &draft, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// normalizeURL убирает trailing slash из URL.
func normalizeURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}
