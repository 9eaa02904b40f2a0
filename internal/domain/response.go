package domain

import (
	"encoding"
	"fmt"
)

// Response is the user's answer to a review: they either knew the card or not.
type Response string

const (
	Know     Response = "know"
	DontKnow Response = "dont_know"
)

var (
	_ fmt.Stringer             = Response("")
	_ encoding.TextMarshaler   = Response("")
	_ encoding.TextUnmarshaler = (*Response)(nil)
)

// ParseResponse returns the Response named by s.
func ParseResponse(s string) (Response, error) {
	r := Response(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResponse, s)
	}
	return r, nil
}

// IsValid reports whether r is Know or DontKnow.
func (r Response) IsValid() bool {
	return r == Know || r == DontKnow
}

func (r Response) String() string {
	return string(r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Response) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResponse, string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Response) UnmarshalText(text []byte) error {
	v, err := ParseResponse(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
