package stream

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

// DefaultGreeting is sent whenever no reply could be produced.
const DefaultGreeting = "Hello! I'm your assistant. How can I help you today?"

// ChatMessage is one entry of the conversation sent by the client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReplyFunc produces the assistant text for the user's last message.
type ReplyFunc func(ctx context.Context, prompt string) (string, error)

// Responder turns a conversation into a data stream. It never fails to
// produce the two protocol lines: errors and empty replies fall back to
// the greeting.
type Responder struct {
	Greeting string
	Reply    ReplyFunc
}

func NewResponder(reply ReplyFunc) *Responder {
	return &Responder{Greeting: DefaultGreeting, Reply: reply}
}

// Respond writes the reply for the last message in msgs to w.
func (r *Responder) Respond(ctx context.Context, w io.Writer, msgs []ChatMessage) error {
	prompt := ""
	if len(msgs) > 0 {
		prompt = msgs[len(msgs)-1].Content
	}

	text := ""
	if r.Reply != nil {
		reply, err := r.Reply(ctx, prompt)
		if err != nil {
			log.Printf("STREAM | reply failed err=%v", err)
		} else {
			text = Clean(reply)
		}
	}
	if text == "" {
		text = r.Greeting
	}

	if err := EncodeText(w, text); err != nil {
		return err
	}
	return EncodeFinish(w, FinishStop)
}

// Clean strips bold markers and surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}

// EchoReply is an offline ReplyFunc that acknowledges the prompt.
func EchoReply(_ context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", nil
	}
	return fmt.Sprintf("You said: **%s**", prompt), nil
}
