package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitormoschetta/gemini-relay/internal/format"
	"github.com/vitormoschetta/gemini-relay/internal/model"
)

type stubGenerator struct {
	text      string
	err       error
	block     bool
	gotPrompt string
	gotModel  string
	calls     int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt, m string) (string, error) {
	s.calls++
	s.gotPrompt = prompt
	s.gotModel = m
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

type chatObservation struct {
	model, status, kind string
}

type recordingMetrics struct {
	seen []chatObservation
}

func (r *recordingMetrics) ObserveChat(m, status, kind string, _ float64) {
	r.seen = append(r.seen, chatObservation{model: m, status: status, kind: kind})
}

func TestNewRelay_ValidatesGenerator(t *testing.T) {
	_, err := NewRelay(nil)
	require.Error(t, err)
}

func TestNewRelay_Defaults(t *testing.T) {
	r, err := NewRelay(&stubGenerator{}, WithDefaultModel("  "), WithTimeout(-1))
	require.NoError(t, err)
	require.Equal(t, DefaultModel, r.DefaultModel())
	require.Equal(t, DefaultTimeout, r.timeout)
}

func TestChat_Success(t *testing.T) {
	gen := &stubGenerator{text: "<b>Hello</b> *world*. Bye."}
	m := &recordingMetrics{}
	r, err := NewRelay(gen, WithMetrics(m))
	require.NoError(t, err)

	res, err := r.Chat(context.Background(), model.ChatRequest{Prompt: "hi", Model: "gemini-2.5-pro"})
	require.NoError(t, err)
	require.Equal(t, model.ChatResult{
		Status:   model.StatusSuccess,
		Response: "Hello world.\nBye.",
		Model:    "gemini-2.5-pro",
	}, res)
	require.Equal(t, "hi", gen.gotPrompt)
	require.Equal(t, "gemini-2.5-pro", gen.gotModel)
	require.Equal(t, []chatObservation{{model: "gemini-2.5-pro", status: "success"}}, m.seen)
}

func TestChat_DefaultModel(t *testing.T) {
	gen := &stubGenerator{text: "ok"}
	r, err := NewRelay(gen, WithDefaultModel("gemini-2.5-flash"))
	require.NoError(t, err)

	res, err := r.Chat(context.Background(), model.ChatRequest{Prompt: "hi"})
	require.NoError(t, err)
	require.Equal(t, "gemini-2.5-flash", res.Model)
	require.Equal(t, "gemini-2.5-flash", gen.gotModel)
}

func TestChat_BlankModelIsForwarded(t *testing.T) {
	gen := &stubGenerator{text: "ok"}
	r, err := NewRelay(gen)
	require.NoError(t, err)

	res, err := r.Chat(context.Background(), model.ChatRequest{Prompt: "hi", Model: "   "})
	require.NoError(t, err)
	require.Equal(t, "   ", gen.gotModel)
	require.Equal(t, "   ", res.Model)
	require.Equal(t, DefaultModel, r.ResolveModel(""))
}

func TestChat_EmptyPromptIsForwarded(t *testing.T) {
	gen := &stubGenerator{text: "something"}
	r, err := NewRelay(gen)
	require.NoError(t, err)

	_, err = r.Chat(context.Background(), model.ChatRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, "", gen.gotPrompt)
}

func TestChat_EmptyGeneration(t *testing.T) {
	m := &recordingMetrics{}
	r, err := NewRelay(&stubGenerator{text: ""}, WithMetrics(m))
	require.NoError(t, err)

	res, err := r.Chat(context.Background(), model.ChatRequest{Prompt: "hi", Model: "gemini-1.5-pro"})
	require.Equal(t, model.ChatResult{
		Status:   model.StatusError,
		Response: "No response generated.",
		Model:    "gemini-1.5-pro",
	}, res)
	require.Equal(t, FailureEmptyGeneration, KindOf(err))
	require.Equal(t, []chatObservation{{model: "gemini-1.5-pro", status: "error", kind: "EMPTY_GENERATION"}}, m.seen)
}

func TestChat_CollaboratorFailure(t *testing.T) {
	cause := errors.New("404 model not found")
	r, err := NewRelay(&stubGenerator{err: cause})
	require.NoError(t, err)

	res, err := r.Chat(context.Background(), model.ChatRequest{Prompt: "hi", Model: "nope"})
	require.Equal(t, model.ChatResult{
		Status:   model.StatusError,
		Response: "Error: 404 model not found",
		Model:    "nope",
	}, res)

	var f *Failure
	require.ErrorAs(t, err, &f)
	require.Equal(t, FailureCollaboratorFailure, f.Kind)
	require.ErrorIs(t, err, cause)
}

func TestChat_TimeoutBoundsGenerator(t *testing.T) {
	r, err := NewRelay(&stubGenerator{block: true}, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	res, err := r.Chat(context.Background(), model.ChatRequest{Prompt: "hi"})
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, model.StatusError, res.Status)
	require.Equal(t, "Error: "+context.DeadlineExceeded.Error(), res.Response)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChat_RealTimeDisclaimer(t *testing.T) {
	r, err := NewRelay(&stubGenerator{text: "Well, I don't have access to real-time information, sorry."})
	require.NoError(t, err)

	res, err := r.Chat(context.Background(), model.ChatRequest{Prompt: "what time is it?"})
	require.NoError(t, err)
	require.Equal(t, format.RealTimeDisclaimer, res.Response)
}

func TestInvalidRequest(t *testing.T) {
	r, err := NewRelay(&stubGenerator{})
	require.NoError(t, err)

	res, err := r.InvalidRequest(errors.New("unexpected EOF"))
	require.Equal(t, model.StatusError, res.Status)
	require.Equal(t, "Error: invalid request body: unexpected EOF", res.Response)
	require.Equal(t, DefaultModel, res.Model)
	require.Equal(t, FailureInvalidRequest, KindOf(err))
}

func TestFailure_Error(t *testing.T) {
	require.Equal(t, "service: EMPTY_GENERATION", (&Failure{Kind: FailureEmptyGeneration}).Error())
	require.Equal(t, "service: COLLABORATOR_FAILURE: boom", (&Failure{Kind: FailureCollaboratorFailure, Err: errors.New("boom")}).Error())
	require.Equal(t, FailureKind(""), KindOf(errors.New("plain")))
}
