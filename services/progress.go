package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// The progress protocol is a closed union of four frames. Exactly one init
// opens a batch, zero or more progress frames follow, and exactly one of
// complete/error terminates it. Serializing them from typed structs keeps
// client and server from drifting on shape.

type FrameType string

const (
	FrameInit     FrameType = "init"
	FrameProgress FrameType = "progress"
	FrameComplete FrameType = "complete"
	FrameError    FrameType = "error"
)

type Frame interface {
	frameType() FrameType
}

type InitFrame struct {
	Type  FrameType `json:"type"`
	Total int       `json:"total"`
}

type ProgressFrame struct {
	Type         FrameType `json:"type"`
	Current      int       `json:"current"`
	Total        int       `json:"total"`
	SuccessCount int       `json:"successCount"`
	ErrorCount   int       `json:"errorCount"`
}

type CompleteFrame struct {
	Type         FrameType    `json:"type"`
	SuccessCount int          `json:"successCount"`
	Errors       []RowFailure `json:"errors"`
}

type ErrorFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
}

// RowFailure is one row-level error as reported to the caller.
type RowFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

func (InitFrame) frameType() FrameType     { return FrameInit }
func (ProgressFrame) frameType() FrameType { return FrameProgress }
func (CompleteFrame) frameType() FrameType { return FrameComplete }
func (ErrorFrame) frameType() FrameType    { return FrameError }

func newInitFrame(total int) InitFrame {
	return InitFrame{Type: FrameInit, Total: total}
}

func newProgressFrame(current, total, success, errs int) ProgressFrame {
	return ProgressFrame{Type: FrameProgress, Current: current, Total: total, SuccessCount: success, ErrorCount: errs}
}

func newCompleteFrame(success int, errors []RowFailure) CompleteFrame {
	if errors == nil {
		errors = []RowFailure{}
	}
	return CompleteFrame{Type: FrameComplete, SuccessCount: success, Errors: errors}
}

func newErrorFrame(msg string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Message: msg}
}

// FrameWriter receives frames as the orchestrator emits them.
type FrameWriter interface {
	WriteFrame(Frame) error
}

// SSEFrameWriter streams frames as "data: {json}\n\n" blocks and flushes
// after each one, which is what keeps the connection alive through
// reverse-proxy idle timeouts on large files.
type SSEFrameWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func NewSSEFrameWriter(w io.Writer) *SSEFrameWriter {
	s := &SSEFrameWriter{w: w}
	if f, ok := w.(http.Flusher); ok {
		s.flusher = f
	}
	return s
}

func (s *SSEFrameWriter) WriteFrame(f Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// NopFrameWriter discards frames; used when the caller did not ask for a
// stream and only wants the terminal JSON summary.
type NopFrameWriter struct{}

func (NopFrameWriter) WriteFrame(Frame) error { return nil }
