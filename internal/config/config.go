package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SinkGoogle = "google"
	SinkXLSX   = "xlsx"
	SinkNone   = "none"

	maxEvalConcurrency = 5
)

// Config is the process configuration, read once at startup.
type Config struct {
	OpenAI OpenAI
	Eval   Eval
	Sink   Sink
	Server Server
}

type OpenAI struct {
	APIKey            string
	BaseURL           string
	Model             string
	WhisperModel      string
	Language          string
	Temperature       float64
	LLMTimeout        time.Duration
	TranscribeTimeout time.Duration
}

type Eval struct {
	// Concurrency bounds the category stages running at once. 1 keeps them sequential.
	Concurrency int
}

type Sink struct {
	Kind            string
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
	XLSXPath        string
	MaxAttempts     int
}

type Server struct {
	Port         string
	MaxUploadMB  int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load() // loads .env
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (Config, error) {
	var errs []error
	intVar := func(key string, def int) int {
		v, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	secondsVar := func(key string, def int) time.Duration {
		return time.Duration(intVar(key, def)) * time.Second
	}

	cfg := Config{
		OpenAI: OpenAI{
			APIKey:            os.Getenv("OPENAI_API_KEY"),
			BaseURL:           strings.TrimRight(envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
			Model:             envOr("OPENAI_MODEL", "gpt-4o-mini"),
			WhisperModel:      envOr("WHISPER_MODEL", "whisper-1"),
			Language:          envOr("TRANSCRIBE_LANGUAGE", "ja"),
			LLMTimeout:        secondsVar("LLM_TIMEOUT_SEC", 60),
			TranscribeTimeout: secondsVar("TRANSCRIBE_TIMEOUT_SEC", 120),
		},
		Eval: Eval{
			Concurrency: intVar("EVAL_CONCURRENCY", 1),
		},
		Sink: Sink{
			Kind:            strings.ToLower(envOr("SINK", SinkGoogle)),
			CredentialsPath: os.Getenv("GSHEETS_SERVICE_ACCOUNT_JSON_PATH"),
			SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
			SheetName:       envOr("SHEET_NAME", "Sheet1"),
			XLSXPath:        envOr("XLSX_PATH", "telecheck_results.xlsx"),
			MaxAttempts:     intVar("SINK_MAX_ATTEMPTS", 1),
		},
		Server: Server{
			Port:         envOr("PORT", "8080"),
			MaxUploadMB:  int64(intVar("MAX_UPLOAD_MB", 25)),
			ReadTimeout:  secondsVar("SERVER_READ_TIMEOUT_SEC", 60),
			WriteTimeout: secondsVar("SERVER_WRITE_TIMEOUT_SEC", 600),
		},
	}

	temp, err := envFloat("LLM_TEMPERATURE", 0.0)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.OpenAI.Temperature = temp

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY not set")
	}
	if c.Eval.Concurrency < 1 || c.Eval.Concurrency > maxEvalConcurrency {
		return fmt.Errorf("EVAL_CONCURRENCY must be between 1 and %d, got %d", maxEvalConcurrency, c.Eval.Concurrency)
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %g", c.OpenAI.Temperature)
	}
	if c.OpenAI.LLMTimeout <= 0 || c.OpenAI.TranscribeTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	switch c.Sink.Kind {
	case SinkGoogle, SinkXLSX, SinkNone:
	default:
		return fmt.Errorf("unknown SINK %q (supported: google, xlsx, none)", c.Sink.Kind)
	}
	if c.Sink.MaxAttempts < 1 {
		return fmt.Errorf("SINK_MAX_ATTEMPTS must be >= 1, got %d", c.Sink.MaxAttempts)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer %q", k, v)
	}
	return n, nil
}

func envFloat(k string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: invalid number %q", k, v)
	}
	return f, nil
}
