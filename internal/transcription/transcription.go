package transcription

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
	"path/filepath"
	"strings"
	"time"

	"telecheck-go/internal/logger"
	"telecheck-go/internal/types"
)

// ErrEmptyTranscript is returned when the service answers with no text.
var ErrEmptyTranscript = errors.New("transcription returned empty text")

// Client calls an OpenAI-compatible speech-to-text endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	language   string
	timeout    time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

type Options struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
	// Timeout bounds each call. Zero means 120s.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logger.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("transcription: api key not configured")
	}
	if opts.BaseURL == "" || opts.Model == "" {
		return nil, errors.New("transcription: base url and model are required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		language:   opts.Language,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		log:        logger.OrNop(opts.Logger).Component("transcription"),
	}, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio once and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio types.Audio) (types.Transcript, error) {
	if len(audio.Data) == 0 {
		return "", errors.New("transcription: audio is empty")
	}
	body, contentType, err := c.buildForm(audio)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("transcription: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	log := c.log.WithField("filename", audio.Filename).WithField("bytes", len(audio.Data))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithField("error", err.Error()).Warn("transcription request failed")
		return "", fmt.Errorf("transcription: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transcription: read response: %w", err)
	}
	log = log.WithField("http_status", resp.StatusCode).WithField("duration_ms", time.Since(start).Milliseconds())
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("transcription returned error status")
		return "", &APIError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("transcription: decode response: %w (body=%s)", err, truncate(string(raw), 512))
	}
	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	log.WithField("transcript_len", len([]rune(text))).Info("transcription complete")
	return types.Transcript(text), nil
}

func (c *Client) buildForm(audio types.Audio) (io.Reader, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	filename := filepath.Base(audio.Filename)
	if filename == "." || filename == "/" || filename == "" {
		filename = "audio.wav"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	ct := audio.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("transcription: create file part: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", fmt.Errorf("transcription: write file part: %w", err)
	}

	fields := [][2]string{
		{"model", c.model},
		{"response_format", "json"},
	}
	if c.language != "" {
		fields = append(fields, [2]string{"language", c.language})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("transcription: write %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("transcription: close form: %w", err)
	}
	return &b, w.FormDataContentType(), nil
}

// APIError is a non-2xx answer from the transcription endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("transcription http error %d: %s", e.StatusCode, e.Body)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
