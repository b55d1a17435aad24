package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecheck-go/internal/prompts"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestPromptsCommandListsStages(t *testing.T) {
	out, err := execute(t, "prompts")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+len(prompts.Stages()))
	assert.Contains(t, lines[0], "STAGE")
	for i, s := range prompts.Stages() {
		fields := strings.Fields(lines[i+1])
		require.Len(t, fields, 3)
		assert.Equal(t, s.String(), fields[0])
		if s.Structured() {
			assert.Equal(t, "json", fields[1])
		} else {
			assert.Equal(t, "text", fields[1])
		}
	}
}

func TestPromptsCommandShow(t *testing.T) {
	out, err := execute(t, "prompts", "--show", "to_json")
	require.NoError(t, err)
	assert.Equal(t, prompts.MustLoad().Prompt(prompts.StageToJSON)+"\n", out)

	_, err = execute(t, "prompts", "--show", "summary")
	assert.Error(t, err)
}

func TestEvaluateCommandValidatesInput(t *testing.T) {
	_, err := execute(t, "evaluate")
	assert.Error(t, err)

	_, err = execute(t, "evaluate", "notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	empty := filepath.Join(t.TempDir(), "call.wav")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = execute(t, "evaluate", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = execute(t, "evaluate", "--format", "xml", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestEvaluateCommandRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Chdir(t.TempDir())
	rec := filepath.Join(t.TempDir(), "call.mp3")
	require.NoError(t, os.WriteFile(rec, []byte("ID3"), 0o600))

	_, err := execute(t, "evaluate", rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoggerReadsDotEnv(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "ENVIRONMENT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nENVIRONMENT=production\n"), 0o600))
	t.Chdir(dir)

	log := newLogger()
	assert.Equal(t, logrus.DebugLevel, log.Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Logger.Formatter)
}

func TestLoggerEnvironmentWinsOverDotEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)

	assert.Equal(t, logrus.ErrorLevel, newLogger().Logger.GetLevel())
}

func TestAudioContentType(t *testing.T) {
	for name, want := range map[string]string{"a.wav": "audio/wav", "b.MP3": "audio/mpeg", "c.m4a": "audio/mp4"} {
		got, ok := audioContentType(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got)
	}
	_, ok := audioContentType("d.flac")
	assert.False(t, ok)
}
