package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrMalformed = errors.New("malformed envelope")
var ErrUnknownType = errors.New("unknown message type")
var ErrMissingField = errors.New("missing required field")
var ErrWrongType = errors.New("envelope holds another message type")

// MaxLine bounds a single encoded message.
const MaxLine = 1 << 20

// Envelope is a decoded message whose discriminator and required fields have been
// checked. The body is unmarshalled on demand with As.
type Envelope struct {
	Type Type
	data []byte
}

// Encode renders m as a flat object with TYPE first.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("encode %s: not an object", m.MessageType())
	}

	var b bytes.Buffer
	b.Grow(len(body) + 16)
	b.WriteString(`{"` + KeyType + `":`)
	b.WriteString(strconv.Itoa(int(m.MessageType())))
	if len(body) > 2 {
		b.WriteByte(',')
	}
	b.Write(body[1:])
	return b.Bytes(), nil
}

// Decode checks that data is an object carrying a known TYPE and every field that
// type requires.
func Decode(data []byte) (Envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	rt, ok := raw[KeyType]
	if !ok {
		return Envelope{}, fmt.Errorf("%w: %s", ErrMissingField, KeyType)
	}
	var t Type
	if err := json.Unmarshal(rt, &t); err != nil {
		return Envelope{}, fmt.Errorf("%w: %s: %v", ErrMalformed, KeyType, err)
	}
	s, ok := catalog[t]
	if !ok {
		return Envelope{}, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	for _, k := range s.required {
		if _, ok := raw[k]; !ok {
			return Envelope{}, fmt.Errorf("%w: %s needs %s", ErrMissingField, s.name, k)
		}
	}
	return Envelope{Type: t, data: data}, nil
}

// As unmarshals the envelope into the message type T.
func As[T Message](env Envelope) (T, error) {
	var out T
	if out.MessageType() != env.Type {
		return out, fmt.Errorf("%w: want %s, have %s", ErrWrongType, out.MessageType(), env.Type)
	}
	if err := json.Unmarshal(env.data, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	return out, nil
}

// Reader splits a stream into messages, one per line.
type Reader struct {
	s *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), MaxLine)
	return &Reader{s: s}
}

// Next returns the next non-empty line. It returns io.EOF when the stream ends.
func (r *Reader) Next() ([]byte, error) {
	for r.s.Scan() {
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 {
			continue
		}
		return bytes.Clone(line), nil
	}
	if err := r.s.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// WriteLine writes b followed by a newline in a single call.
func WriteLine(w io.Writer, b []byte) error {
	line := make([]byte, len(b)+1)
	copy(line, b)
	line[len(b)] = '\n'
	_, err := w.Write(line)
	return err
}

// Send encodes m and writes it as one line.
func Send(w io.Writer, m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	return WriteLine(w, b)
}
