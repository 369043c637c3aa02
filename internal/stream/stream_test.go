package stream

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeText(&buf, `say "hi" <now>`))
	assert.Equal(t, "0:\"say \\\"hi\\\" <now>\"\n", buf.String())
}

func TestEncodeFinish(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFinish(&buf, FinishStop))
	assert.Equal(t, "d:{\"finishReason\":\"stop\"}\n", buf.String())
}

func TestDecode_RoundTrip(t *testing.T) {
	texts := []string{
		"plain",
		`quotes "inside"`,
		"line one\nline two",
		"مرحباً",
		`back\slash`,
	}
	for _, text := range texts {
		var buf bytes.Buffer
		require.NoError(t, EncodeText(&buf, text))
		require.NoError(t, EncodeFinish(&buf, FinishStop))

		msg, err := Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, text, msg.Text)
		assert.Equal(t, FinishStop, msg.FinishReason)
	}
}

func TestDecode_ConcatenatesPartsAndSkipsUnknown(t *testing.T) {
	in := "0:\"Hel\"\n2:[{\"x\":1}]\n0:\"lo\"\r\nd:{\"finishReason\":\"length\"}\n"
	msg, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Hello", msg.Text)
	assert.Equal(t, "length", msg.FinishReason)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader("0:\"unterminated\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func failingReply(context.Context, string) (string, error) {
	return "", errors.New("upstream down")
}

func TestResponder(t *testing.T) {
	tests := []struct {
		name  string
		reply ReplyFunc
		msgs  []ChatMessage
		want  string
	}{
		{
			name:  "echo strips bold",
			reply: EchoReply,
			msgs:  []ChatMessage{{Role: "user", Content: "first"}, {Role: "user", Content: " ping "}},
			want:  "You said: ping",
		},
		{
			name:  "empty conversation falls back",
			reply: EchoReply,
			want:  DefaultGreeting,
		},
		{
			name:  "error falls back",
			reply: failingReply,
			msgs:  []ChatMessage{{Role: "user", Content: "hi"}},
			want:  DefaultGreeting,
		},
		{
			name: "nil reply falls back",
			msgs: []ChatMessage{{Role: "user", Content: "hi"}},
			want: DefaultGreeting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewResponder(tt.reply)
			require.NoError(t, r.Respond(context.Background(), &buf, tt.msgs))

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 2)

			msg, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Text)
			assert.Equal(t, FinishStop, msg.FinishReason)
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "bold text", Clean("  **bold** text\n"))
}

func TestResponder_LogsReplyError(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	var buf bytes.Buffer
	require.NoError(t, NewResponder(failingReply).Respond(context.Background(), &buf, []ChatMessage{{Role: "user", Content: "hi"}}))

	assert.Contains(t, logs.String(), "STREAM | reply failed err=upstream down")
	msg, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultGreeting, msg.Text)
}
