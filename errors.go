package oaiharvest

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport is returned for network and HTTP failures.
	ErrTransport = errors.New("transport failure")

	// ErrParse is returned when a page cannot be parsed as OAI-PMH XML.
	ErrParse = errors.New("parse failure")

	// ErrFileSystem is returned when a directory or file cannot be written.
	ErrFileSystem = errors.New("file system failure")

	// ErrConfig is returned by Config.Validate.
	ErrConfig = errors.New("invalid config")
)

// StatusError reports a non-success HTTP status. It unwraps to ErrTransport.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// ProtocolError is an OAI-PMH <error> element returned by the repository.
// It unwraps to ErrParse.
type ProtocolError struct {
	Code    string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("oai error %s: %s", e.Code, e.Message)
}

func (e *ProtocolError) Unwrap() error { return ErrParse }
