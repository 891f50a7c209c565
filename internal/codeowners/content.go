// Package codeowners extracts, rewrites and locates CODEOWNERS files.
package codeowners

import (
	"fmt"
	"unicode/utf8"

	"github.com/isometry/gh-cleanowners-app/internal/models"
	"github.com/pkg/errors"
)

// DecodeError is returned when CODEOWNERS content cannot be turned into bytes.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode CODEOWNERS content: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// DecoderFunc adapts an accessor returning decoded content, such as the contents API GetContent.
type DecoderFunc func() (string, error)

// Bytes implements models.Content.
func (f DecoderFunc) Bytes() ([]byte, error) {
	s, err := f()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Raw is content that is already raw bytes, e.g. a git blob.
type Raw []byte

// Bytes implements models.Content.
func (r Raw) Bytes() ([]byte, error) {
	return r, nil
}

// Text is textual content that must be valid UTF-8.
type Text string

// Bytes implements models.Content.
func (t Text) Bytes() ([]byte, error) {
	if !utf8.ValidString(string(t)) {
		return nil, errors.New("invalid UTF-8 sequence")
	}
	return []byte(t), nil
}

// Normalize converts any supported content representation into one canonical byte sequence.
// Every failure is reported as a *DecodeError.
func Normalize(content models.Content) ([]byte, error) {
	if content == nil {
		return nil, &DecodeError{Cause: errors.New("no content")}
	}
	b, err := content.Bytes()
	if err != nil {
		return nil, &DecodeError{Cause: err}
	}
	return b, nil
}
