// Package stream encodes and decodes the line-oriented chat data stream:
// text parts as `0:"<json string>"` and a closing `d:{"finishReason":...}`.
package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	textPrefix   = "0:"
	finishPrefix = "d:"

	FinishStop  = "stop"
	ContentType = "text/plain; charset=utf-8"
)

var ErrMalformed = errors.New("stream: malformed line")

// Message is a fully decoded response.
type Message struct {
	Text         string
	FinishReason string
}

type finish struct {
	FinishReason string `json:"finishReason"`
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeText writes one text part.
func EncodeText(w io.Writer, text string) error {
	b, err := marshal(text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s%s\n", textPrefix, b)
	return err
}

// EncodeFinish writes the terminating line.
func EncodeFinish(w io.Writer, reason string) error {
	b, err := marshal(finish{FinishReason: reason})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s%s\n", finishPrefix, b)
	return err
}

// Decode reads the whole stream. Text parts are concatenated in order;
// lines with unknown prefixes are skipped.
func Decode(r io.Reader) (Message, error) {
	var msg Message
	var text strings.Builder

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.HasPrefix(line, textPrefix):
			var part string
			if err := json.Unmarshal([]byte(line[len(textPrefix):]), &part); err != nil {
				return msg, fmt.Errorf("%w: line %d: %v", ErrMalformed, n, err)
			}
			text.WriteString(part)
		case strings.HasPrefix(line, finishPrefix):
			var f finish
			if err := json.Unmarshal([]byte(line[len(finishPrefix):]), &f); err != nil {
				return msg, fmt.Errorf("%w: line %d: %v", ErrMalformed, n, err)
			}
			msg.FinishReason = f.FinishReason
		}
	}
	if err := sc.Err(); err != nil {
		return msg, err
	}

	msg.Text = text.String()
	return msg, nil
}
