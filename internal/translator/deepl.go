package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
)

const (
	// ServerURLPro is the DeepL API endpoint for paid accounts.
	ServerURLPro = "https://api.deepl.com"
	// ServerURLFree is the DeepL API endpoint for free accounts.
	ServerURLFree = "https://api-free.deepl.com"

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	translatePath = "/v2/translate"
	userAgent     = "deepl-component/1.0"
)

// DeepL translates text through the DeepL REST API.
type DeepL struct {
	authKey   string
	serverURL string
	timeout   time.Duration
	doer      heimdall.Doer
	client    *httpclient.Client
}

// Option configures a DeepL client.
type Option func(*DeepL)

// WithServerURL overrides the API endpoint picked from the auth key.
func WithServerURL(url string) Option {
	return func(d *DeepL) {
		if url != "" {
			d.serverURL = strings.TrimRight(url, "/")
		}
	}
}

// WithTimeout sets the HTTP timeout (default: 30s).
func WithTimeout(timeout time.Duration) Option {
	return func(d *DeepL) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDoer replaces the underlying HTTP client.
func WithDoer(doer heimdall.Doer) Option {
	return func(d *DeepL) { d.doer = doer }
}

// New creates a DeepL client bound to authKey. Keys issued for free
// accounts end in ":fx" and are routed to the free endpoint.
func New(authKey string, opts ...Option) (*DeepL, error) {
	if authKey == "" {
		return nil, ErrEmptyAuthKey
	}

	d := &DeepL{
		authKey:   authKey,
		serverURL: ServerURLPro,
		timeout:   DefaultTimeout,
	}
	if IsFreeAccountKey(authKey) {
		d.serverURL = ServerURLFree
	}
	for _, opt := range opts {
		opt(d)
	}

	// No retrier: each call is a single round trip.
	clientOpts := []httpclient.Option{
		httpclient.WithHTTPTimeout(d.timeout),
		httpclient.WithRetryCount(0),
	}
	if d.doer != nil {
		clientOpts = append(clientOpts, httpclient.WithHTTPClient(d.doer))
	}
	d.client = httpclient.NewClient(clientOpts...)

	return d, nil
}

// NewFactory returns a Factory building DeepL clients with opts.
func NewFactory(opts ...Option) Factory {
	return func(apiKey string) (Translator, error) {
		d, err := New(apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// IsFreeAccountKey reports whether authKey belongs to a DeepL free account.
func IsFreeAccountKey(authKey string) bool {
	return strings.HasSuffix(authKey, ":fx")
}

// ServerURL returns the endpoint the client talks to.
func (d *DeepL) ServerURL() string {
	return d.serverURL
}

type translateRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
}

type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// TranslateText translates text into target. AutoDetect as source lets
// DeepL detect the source language.
func (d *DeepL) TranslateText(ctx context.Context, text string, source SourceLang, target string) (*TextResult, error) {
	req := translateRequest{
		Text:       []string{text},
		TargetLang: target,
	}
	if source != AutoDetect && source != "" {
		req.SourceLang = string(source)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("deepl: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.serverURL+translatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("deepl: failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+d.authKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		// heimdall's MultiError does not unwrap, so report the context
		// cause directly when the caller gave up.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("deepl: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepl: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(resp.StatusCode, errorMessage(body))
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("deepl: failed to parse response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return nil, ErrEmptyResponse
	}

	return &TextResult{
		DetectedSourceLang: parsed.Translations[0].DetectedSourceLanguage,
		Text:               parsed.Translations[0].Text,
	}, nil
}

func errorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return strings.TrimSpace(string(body))
	}
	if resp.Detail != "" {
		return resp.Message + ", " + resp.Detail
	}
	return resp.Message
}
