package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"telecheck-go/internal/config"
	"telecheck-go/internal/llm"
	"telecheck-go/internal/logger"
	"telecheck-go/internal/pipeline"
	"telecheck-go/internal/processor"
	"telecheck-go/internal/prompts"
	"telecheck-go/internal/sheets"
	"telecheck-go/internal/stages"
	"telecheck-go/internal/transcription"
)

var audioTypes = map[string]string{
	".wav": "audio/wav",
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
}

// audioContentType returns the content type for a supported recording.
func audioContentType(filename string) (string, bool) {
	ct, ok := audioTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

func supportedExtensions() string {
	return ".wav, .mp3, .m4a"
}

// buildProcessor wires the evaluation stack from cfg. A sink that cannot be
// built is logged and disabled; evaluation still works without it.
func buildProcessor(ctx context.Context, cfg config.Config, log *logger.Logger, withSink bool) (*processor.Processor, error) {
	catalog, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	completion, err := llm.NewClient(llm.Options{
		BaseURL: cfg.OpenAI.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.LLMTimeout,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	stt, err := transcription.NewClient(transcription.Options{
		BaseURL:  cfg.OpenAI.BaseURL,
		APIKey:   cfg.OpenAI.APIKey,
		Model:    cfg.OpenAI.WhisperModel,
		Language: cfg.OpenAI.Language,
		Timeout:  cfg.OpenAI.TranscribeTimeout,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	workflow := pipeline.NewWorkflow(
		stages.New(completion, catalog, cfg.OpenAI.Temperature),
		pipeline.WorkflowOptions{Concurrency: cfg.Eval.Concurrency, Logger: log},
	)
	p := pipeline.New(stt, workflow, log)

	var sink sheets.Sink
	if withSink {
		sink, err = sheets.New(ctx, cfg.Sink, log)
		if err != nil {
			log.WithError(err).WithField("sink", cfg.Sink.Kind).Warn("spreadsheet sink disabled")
			sink = nil
		}
	}
	log.WithFields(logrus.Fields{
		"model":       cfg.OpenAI.Model,
		"stt_model":   cfg.OpenAI.WhisperModel,
		"concurrency": cfg.Eval.Concurrency,
		"sink":        sinkName(cfg.Sink.Kind, sink != nil),
	}).Info("evaluation stack ready")

	return processor.New(p, processor.Options{Sink: sink, Logger: log}), nil
}

func sinkName(kind string, enabled bool) string {
	if !enabled {
		return config.SinkNone
	}
	return kind
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}
