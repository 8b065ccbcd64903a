package server

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/bastiangx/gopostfix/internal/logger"
	"github.com/bastiangx/gopostfix/pkg/config"
	"github.com/bastiangx/gopostfix/pkg/postfix"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	log.SetLevel(log.ErrorLevel)
	goleak.VerifyTestMain(m)
}

// run encodes msgs, serves them and returns the raw responses after the
// ready message.
func run(t *testing.T, cfg *config.Config, msgs ...any) []msgpack.RawMessage {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, m := range msgs {
		require.NoError(t, enc.Encode(m))
	}

	var out bytes.Buffer
	srv := NewServerWithIO(postfix.Default(), cfg, "", &in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready ActionResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)

	var responses []msgpack.RawMessage
	for {
		raw, err := dec.DecodeRaw()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		responses = append(responses, raw)
	}
	return responses
}

func decodeAs[T any](t *testing.T, raw msgpack.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, msgpack.Unmarshal(raw, &v))
	return v
}

func TestCompletionRoundTrip(t *testing.T) {
	resp := run(t, nil, CompletionRequest{ID: "req_001", Line: "  items.", Column: 8, Trigger: ".", Language: "go"})
	require.Len(t, resp, 1)

	got := decodeAs[CompletionResponse](t, resp[0])
	assert.Equal(t, "req_001", got.ID)
	require.Equal(t, len(postfix.Builtin), got.Count)
	require.Len(t, got.Suggestions, got.Count)

	for i, s := range got.Suggestions {
		assert.Equal(t, uint16(i+1), s.Rank)
		assert.Equal(t, 2, s.ReplaceStart)
		assert.Equal(t, 8, s.ReplaceEnd)
		assert.True(t, s.Preselect)
		assert.Equal(t, "snippet", s.Kind)
	}
	assert.Equal(t, "printf", got.Suggestions[0].Label)
	assert.Equal(t, "items = append(items, $0)", got.Suggestions[2].InsertText)
}

func TestSkeletonHasNoRange(t *testing.T) {
	resp := run(t, nil, CompletionRequest{ID: "s", Line: "\tfor", Column: 4})
	require.Len(t, resp, 1)

	got := decodeAs[CompletionResponse](t, resp[0])
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "for", got.Suggestions[0].Label)
	assert.Equal(t, -1, got.Suggestions[0].ReplaceStart)
	assert.Equal(t, -1, got.Suggestions[0].ReplaceEnd)
}

func TestEmptyResults(t *testing.T) {
	resp := run(t, nil,
		CompletionRequest{ID: "comment", Line: "// items.", Column: 9, Trigger: "."},
		CompletionRequest{ID: "lang", Line: "items.", Column: 6, Trigger: ".", Language: "python"},
		CompletionRequest{ID: "trigger", Line: "items.", Column: 6, Trigger: ";"},
		CompletionRequest{ID: "range", Line: "items.", Column: 600},
		CompletionRequest{ID: "skeleton", Line: "\tfor", Column: 4, Trigger: "."},
	)
	require.Len(t, resp, 5)

	for i, id := range []string{"comment", "lang", "trigger"} {
		got := decodeAs[CompletionResponse](t, resp[i])
		assert.Equal(t, id, got.ID)
		assert.Equal(t, 0, got.Count, id)
		assert.Empty(t, got.Suggestions, id)
	}

	clamped := decodeAs[CompletionResponse](t, resp[3])
	assert.Equal(t, len(postfix.Builtin), clamped.Count, "column past the end is clamped")

	triggered := decodeAs[CompletionResponse](t, resp[4])
	assert.Equal(t, "skeleton", triggered.ID)
	assert.Zero(t, triggered.Count, "a trigger without a dot offers no skeletons")
}

func TestGeneratedID(t *testing.T) {
	resp := run(t, nil, CompletionRequest{Line: "x.", Column: 2})
	require.Len(t, resp, 1)
	got := decodeAs[CompletionResponse](t, resp[0])
	assert.Len(t, got.ID, 36)
}

func TestActions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Languages = []string{"go", "gotmpl"}

	resp := run(t, cfg,
		ActionRequest{ID: "a1", Action: "health"},
		ActionRequest{ID: "a2", Action: "list"},
		ActionRequest{ID: "a3", Action: "get_config"},
		ActionRequest{ID: "a4", Action: "reboot"},
	)
	require.Len(t, resp, 4)

	health := decodeAs[ActionResponse](t, resp[0])
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Requests)

	list := decodeAs[ActionResponse](t, resp[1])
	assert.Equal(t, postfix.Default().Labels(), list.Labels)

	conf := decodeAs[ActionResponse](t, resp[2])
	assert.Equal(t, []string{"go", "gotmpl"}, conf.Languages)
	assert.Equal(t, []string{"."}, conf.Triggers)
	assert.Equal(t, 4096, conf.MaxLine)

	unknown := decodeAs[CompletionError](t, resp[3])
	assert.Equal(t, "a4", unknown.ID)
	assert.Equal(t, CodeBadRequest, unknown.Code)
}

func TestErrorsLoggedWithPrefix(t *testing.T) {
	prev := logger.Output
	t.Cleanup(func() { logger.Output = prev })
	var logs bytes.Buffer
	logger.Output = &logs

	resp := run(t, nil, 42)
	require.Len(t, resp, 1)
	assert.Contains(t, logs.String(), "ipc")
	assert.Contains(t, logs.String(), "Unmarshaling request envelope")
}

func TestMalformedRequests(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxLineLength = 16

	resp := run(t, cfg,
		42,
		map[string]any{"id": "bad", "l": "x.", "c": "two"},
		CompletionRequest{ID: "long", Line: "a_very_long_identifier.", Column: 23},
		CompletionRequest{ID: "nl", Line: "x.\ny", Column: 2},
		CompletionRequest{ID: "after", Line: "x.", Column: 2},
	)
	require.Len(t, resp, 5)

	notMap := decodeAs[CompletionError](t, resp[0])
	assert.Equal(t, CodeBadRequest, notMap.Code)

	badType := decodeAs[CompletionError](t, resp[1])
	assert.Equal(t, "bad", badType.ID)
	assert.Equal(t, CodeBadRequest, badType.Code)

	long := decodeAs[CompletionError](t, resp[2])
	assert.Equal(t, "long", long.ID)
	assert.Equal(t, "line exceeds maximum length", long.Error)

	nl := decodeAs[CompletionError](t, resp[3])
	assert.Equal(t, "line contains a newline", nl.Error)

	after := decodeAs[CompletionResponse](t, resp[4])
	assert.Equal(t, "after", after.ID)
	assert.NotZero(t, after.Count, "server keeps serving after bad input")
}

func TestServeStopsOnCancelledContext(t *testing.T) {
	var in, out bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&in).Encode(CompletionRequest{ID: "x", Line: "x.", Column: 2}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := NewServerWithIO(postfix.Default(), nil, "", &in, &out)
	require.NoError(t, srv.Serve(ctx))

	dec := msgpack.NewDecoder(&out)
	var ready ActionResponse
	require.NoError(t, dec.Decode(&ready))
	_, err := dec.DecodeRaw()
	assert.ErrorIs(t, err, io.EOF, "no request is served after cancellation")
}

func TestSetConfig(t *testing.T) {
	var in, out bytes.Buffer
	srv := NewServerWithIO(postfix.Default(), nil, "", &in, &out)

	cfg := config.DefaultConfig()
	cfg.Server.TriggerCharacters = []string{".", ">"}
	srv.SetConfig(cfg)
	assert.Equal(t, []string{".", ">"}, srv.config.Load().Server.TriggerCharacters)

	srv.SetConfig(nil)
	assert.Equal(t, config.DefaultConfig().Server, srv.config.Load().Server)
}
