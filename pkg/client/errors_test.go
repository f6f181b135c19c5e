package client

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestTransportError(t *testing.T) {
	err := &TransportError{Endpoint: "weapons", Err: io.ErrUnexpectedEOF}

	if !strings.Contains(err.Error(), "weapons") {
		t.Errorf("Error() = %q, want endpoint in message", err.Error())
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestStatusError_Class(t *testing.T) {
	tests := []struct {
		statusCode int
		want       ErrorClass
	}{
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.statusCode), func(t *testing.T) {
			err := &StatusError{Endpoint: "kills", StatusCode: tt.statusCode}
			if got := err.Class(); got != tt.want {
				t.Errorf("Class() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{name: "nil", err: nil, want: ""},
		{name: "transport", err: &TransportError{Endpoint: "x", Err: io.EOF}, want: ErrorClassNetwork},
		{name: "status 404", err: &StatusError{StatusCode: 404}, want: ErrorClassClient},
		{name: "status 502", err: &StatusError{StatusCode: 502}, want: ErrorClassServer},
		{name: "parse", err: &ParseError{Endpoint: "x", Err: io.EOF}, want: ErrorClassParse},
		{name: "panic", err: &PanicError{Key: "bfj:x", Value: "boom"}, want: ErrorClassPanic},
		{name: "wrapped parse", err: fmt.Errorf("outer: %w", &ParseError{Err: io.EOF}), want: ErrorClassParse},
		{name: "plain", err: errors.New("custom"), want: ErrorClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPanicError(t *testing.T) {
	err := &PanicError{Key: "bfj:weapons", Value: "nil map"}
	if !strings.Contains(err.Error(), "bfj:weapons") || !strings.Contains(err.Error(), "nil map") {
		t.Errorf("Error() = %q", err.Error())
	}
}
