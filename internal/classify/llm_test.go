package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/postrelay/internal/domain"
)

func TestParseVerdict(t *testing.T) {
	c, err := parseVerdict("Sure!\n```json\n{\"label\":\"event\",\"confidence\":0.83,\"spam\":false,\"keywords\":[\"meetup\",\"go\"]}\n```")
	require.NoError(t, err)

	assert.Equal(t, "event", c.Label)
	assert.Equal(t, 83, c.Percent())
	assert.Equal(t, verdictNotSpam, c.Spam)
	assert.Equal(t, "🔑 Keywords: meetup, go", c.Keywords)
}

func TestParseVerdict_Clamps(t *testing.T) {
	c, err := parseVerdict(`{"label":"","confidence":3,"spam":true}`)
	require.NoError(t, err)

	assert.Equal(t, labelOther, c.Label)
	assert.Equal(t, 1.0, c.Confidence)
	assert.Equal(t, verdictSpam, c.Spam)
	assert.Equal(t, noKeywords, c.Keywords)
}

func TestParseVerdict_NoJSON(t *testing.T) {
	_, err := parseVerdict("I cannot help with that")
	assert.ErrorIs(t, err, domain.ErrClassifierBackend)
}

func TestOpenRouter_Classify(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"label\":\"job\",\"confidence\":0.5,\"spam\":false,\"keywords\":[\"hiring\"]}"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenRouter("key", "test-model")
	o.baseURL = srv.URL

	c, err := o.Classify(context.Background(), "We are hiring")
	require.NoError(t, err)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "We are hiring", got.Messages[1].Content)
	assert.Equal(t, "job", c.Label)
	assert.Equal(t, 50, c.Percent())
}

func TestOpenRouter_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := NewOpenRouter("key", "m")
	o.baseURL = srv.URL

	_, err := o.Classify(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrClassifierBackend)
}

func TestAnthropic_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "{\"label\":\"announcement\",\"confidence\":0.75,\"spam\":false,\"keywords\":[\"release\"]}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`))
	}))
	defer srv.Close()

	c, err := NewAnthropic("key", "claude-test", srv.URL).Classify(context.Background(), "v2 released")
	require.NoError(t, err)

	assert.Equal(t, "announcement", c.Label)
	assert.Equal(t, 75, c.Percent())
}

func TestWithFallback(t *testing.T) {
	failing := ClassifierFunc(func(context.Context, string) (domain.Classification, error) {
		return domain.Classification{}, errors.New("boom")
	})

	c, err := WithFallback(failing, NewLexical()).Classify(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "greeting", c.Label)
}

func TestNew(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &Lexical{}, c)

	_, err = New(Config{Backend: "openrouter"})
	assert.Error(t, err)

	_, err = New(Config{Backend: "anthropic"})
	assert.Error(t, err)

	_, err = New(Config{Backend: "magic"})
	assert.Error(t, err)

	c, err = New(Config{Backend: "anthropic", AnthropicKey: "k", AnthropicModel: "m"})
	require.NoError(t, err)
	assert.IsType(t, &fallback{}, c)
}
