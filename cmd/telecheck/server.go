package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"telecheck-go/internal/logger"
	"telecheck-go/internal/processor"
	"telecheck-go/internal/types"
)

type callProcessor interface {
	Process(ctx context.Context, audio types.Audio) (processor.Result, error)
}

type server struct {
	proc      callProcessor
	maxUpload int64
	log       *logger.Logger
}

func newServer(proc callProcessor, maxUploadMB int64, log *logger.Logger) http.Handler {
	s := &server{proc: proc, maxUpload: maxUploadMB << 20, log: logger.OrNop(log).Component("http")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("POST /evaluate", s.evaluate)
	return mux
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	s.log.WithRequest(r).Debug("health check")
	fmt.Fprint(w, "ok")
}

func (s *server) evaluate(w http.ResponseWriter, r *http.Request) {
	id := logger.RequestID(r)
	r.Header.Set("X-Request-ID", id)
	w.Header().Set("X-Request-ID", id)
	reqLog := s.log.WithRequest(r).WithField("handler", "evaluate")

	audio, status, err := s.readUpload(w, r)
	if err != nil {
		reqLog.WithField("error", err.Error()).Warn("rejected upload")
		writeJSON(w, reqLog, status, map[string]string{"error": err.Error()})
		return
	}
	reqLog = reqLog.WithField("filename", audio.Filename).WithField("bytes", len(audio.Data))
	reqLog.Info("evaluate request received")

	// A client disconnect does not abort the run; per-call timeouts still apply.
	res, err := s.proc.Process(context.WithoutCancel(r.Context()), audio)
	reqLog = reqLog.WithField("duration_ms", res.DurationMs).WithField("evaluation_id", res.EvaluationID)
	if err != nil {
		reqLog.WithField("error", err.Error()).Warn("processor returned error")
		writeJSON(w, reqLog, http.StatusInternalServerError, res)
		return
	}
	reqLog.WithField("sink", res.Sink.Status).Info("processor finished")
	writeJSON(w, reqLog, http.StatusOK, res)
}

func (s *server) readUpload(w http.ResponseWriter, r *http.Request) (types.Audio, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.Audio{}, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d MB", s.maxUpload>>20)
		}
		return types.Audio{}, http.StatusBadRequest, errors.New("expected multipart form with a file field")
	}
	defer r.MultipartForm.RemoveAll()

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return types.Audio{}, http.StatusBadRequest, errors.New("missing file field")
	}
	defer f.Close()

	name := filepath.Base(hdr.Filename)
	ct, ok := audioContentType(name)
	if !ok {
		return types.Audio{}, http.StatusBadRequest, fmt.Errorf("unsupported file type %q (supported: %s)", filepath.Ext(name), supportedExtensions())
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return types.Audio{}, http.StatusBadRequest, errors.New("could not read uploaded file")
	}
	if len(data) == 0 {
		return types.Audio{}, http.StatusBadRequest, errors.New("uploaded file is empty")
	}
	return types.Audio{Data: data, Filename: name, ContentType: ct}, http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithField("error", err.Error()).Error("failed to write response")
	}
}
