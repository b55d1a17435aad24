package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"telecheck-go/internal/pipeline"
	"telecheck-go/internal/types"
)

func finalResult(t *testing.T) *types.Document {
	t.Helper()
	doc, err := types.ParseDocument(`{"担当者":"田中","評価":"B","改善ポイント":"用件を先に","自社紹介":{"総合評価":"良"}}`)
	require.NoError(t, err)
	return doc
}

func TestProcessSavesRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockRunner(ctrl)
	sink := NewMockSink(ctrl)

	audio := types.Audio{Data: []byte("x"), Filename: "call.wav"}
	doc := finalResult(t)
	runner.EXPECT().Run(gomock.Any(), audio).Return(doc, nil)
	sink.EXPECT().AppendRow(gomock.Any(), []string{"田中", "B", doc.JSON()}).Return(nil)

	res, err := New(runner, Options{Sink: sink}).Process(context.Background(), audio)
	require.NoError(t, err)

	_, err = uuid.Parse(res.EvaluationID)
	assert.NoError(t, err)
	assert.Equal(t, "call.wav", res.Filename)
	assert.Same(t, doc, res.Result)
	require.NotNil(t, res.Summary)
	assert.Equal(t, "用件を先に", res.Summary.Improvement)
	assert.Equal(t, SinkReport{Status: SinkSaved}, res.Sink)
	assert.Empty(t, res.Error)
}

func TestProcessSinkFailureKeepsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockRunner(ctrl)
	sink := NewMockSink(ctrl)

	doc := finalResult(t)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(doc, nil)
	sink.EXPECT().AppendRow(gomock.Any(), gomock.Any()).Return(errors.New("quota exceeded for quota metric"))

	res, err := New(runner, Options{Sink: sink}).Process(context.Background(), types.Audio{Data: []byte("x")})
	require.NoError(t, err)
	assert.Same(t, doc, res.Result)
	assert.Equal(t, SinkFailed, res.Sink.Status)
	assert.NotContains(t, res.Sink.Error, "quota")
	assert.Empty(t, res.Error)
}

func TestProcessWithoutSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(types.NewDocument(), nil)

	p := New(runner, Options{})
	assert.False(t, p.SinkEnabled())
	res, err := p.Process(context.Background(), types.Audio{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, SinkDisabled, res.Sink.Status)
	assert.Equal(t, "不明", res.Summary.Owner)
	assert.NotEmpty(t, res.Warnings)
}

func TestProcessPipelineErrorSkipsSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockRunner(ctrl)
	sink := NewMockSink(ctrl)

	cause := &pipeline.StageError{Stage: "to_json", Kind: pipeline.ErrMalformedResult, Err: errors.New("unexpected EOF at offset 12")}
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, cause)

	res, err := New(runner, Options{Sink: sink}).Process(context.Background(), types.Audio{Data: []byte("x")})
	assert.ErrorIs(t, err, pipeline.ErrMalformedResult)
	assert.Nil(t, res.Result)
	assert.Nil(t, res.Summary)
	assert.Equal(t, SinkSkipped, res.Sink.Status)
	assert.Equal(t, "評価結果を解析できませんでした", res.Error)
	assert.NotContains(t, res.Error, "offset")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pipeline.StageError{Stage: "transcribe", Kind: pipeline.ErrTranscription, Err: errors.New("401")}, "音声の文字起こしに失敗しました"},
		{&pipeline.StageError{Stage: "manner", Kind: pipeline.ErrCompletion, Err: errors.New("429")}, "評価の生成中にエラーが発生しました"},
		{context.DeadlineExceeded, "処理がタイムアウトしました"},
		{errors.New("something else"), "処理中にエラーが発生しました"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err), tt.err.Error())
	}
}
