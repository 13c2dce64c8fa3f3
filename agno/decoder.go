// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"bytes"
	"log/slog"
)

// Decoder turns raw response chunks into an ordered sequence of
// [Event] values. Frames are newline-delimited JSON objects, optionally
// carried as SSE "data:" lines; a frame split across chunk boundaries
// is reassembled before parsing and never yielded partially.
//
// A Decoder is bound to a single stream. Restarting requires a fresh
// transport open and a fresh Decoder.
type Decoder struct {
	buf bytes.Buffer
}

// NewDecoder creates a Decoder with an empty pending buffer.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the pending buffer and returns every event
// whose frame is now complete, in arrival order. A malformed frame
// yields a [ParseErrorEvent] in its position; surrounding frames are
// unaffected. An empty chunk yields whatever is already complete.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf.Write(chunk)

	var events []Event
	for {
		frame, ok := d.nextFrame()
		if !ok {
			return events
		}
		if ev := parseFrame(frame); ev != nil {
			events = append(events, ev)
		}
	}
}

// Flush drains the pending buffer after the transport signals end of
// stream. A complete trailing frame without a final newline is still
// parsed. A trailing fragment that no longer parses was cut off by the
// stream ending and is dropped: the sequence simply ends there.
func (d *Decoder) Flush() []Event {
	events := d.Feed(nil)
	rest := bytes.TrimSpace(d.buf.Bytes())
	d.buf.Reset()
	if len(rest) == 0 {
		return events
	}
	ev := parseFrame(rest)
	if ev == nil {
		return events
	}
	if _, truncated := ev.(*ParseErrorEvent); truncated {
		slog.Debug("dropping truncated trailing frame", "bytes", len(rest))
		return events
	}
	return append(events, ev)
}

// nextFrame extracts one newline-terminated frame from the front of
// the buffer, retaining the remainder.
func (d *Decoder) nextFrame() ([]byte, bool) {
	data := d.buf.Bytes()
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil, false
	}
	frame := append([]byte(nil), data[:i]...)
	d.buf.Next(i + 1)
	return frame, true
}

// parseFrame parses one extracted frame. Blank keep-alive lines and
// SSE terminators produce no event; anything else produces exactly one.
func parseFrame(frame []byte) Event {
	frame = bytes.TrimSpace(frame)
	if after, ok := bytes.CutPrefix(frame, []byte("data:")); ok {
		frame = bytes.TrimSpace(after)
	}
	if len(frame) == 0 || bytes.Equal(frame, []byte("[DONE]")) {
		return nil
	}

	ev, err := decodeEvent(frame)
	if err != nil {
		return &ParseErrorEvent{Raw: frame, Err: err}
	}
	return ev
}
