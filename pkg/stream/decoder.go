package stream

import (
	"bytes"
	"io"
	"strings"
)

// Frame kinds dispatched by the decoder.
const (
	FrameMetadata = "metadata"
	FrameChunk    = "chunk"
	FrameDone     = "done"
	FrameError    = "error"
)

// Frame is one complete event:/data: pair terminated by a blank line.
type Frame struct {
	Event string
	Data  string
}

// frameDecoder incrementally decodes text/event-stream framing from a
// byte stream.
//
// Bytes are buffered and only cut at line boundaries, so multi-byte
// UTF-8 sequences split across reads survive intact, and an incomplete
// trailing line is retained across reads rather than discarded. Lines
// matching neither `event:` nor `data:` nor blank are ignored.
type frameDecoder struct {
	r   io.Reader
	buf []byte // unconsumed bytes, ending in a possibly partial line

	event   string
	data    string
	pending bool
}

func newFrameDecoder(r io.Reader) *frameDecoder {
	return &frameDecoder{r: r}
}

// Next returns the next complete frame. It blocks on the underlying
// reader; cancellation is surfaced as a read error by the transport.
// io.EOF signals a cleanly closed stream with no frame pending.
func (d *frameDecoder) Next() (Frame, error) {
	for {
		// Drain complete lines already buffered.
		for {
			i := bytes.IndexByte(d.buf, '\n')
			if i < 0 {
				break
			}
			line := string(d.buf[:i])
			d.buf = d.buf[i+1:]
			if f, ok := d.consumeLine(line); ok {
				return f, nil
			}
		}

		chunk := make([]byte, 4096)
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return Frame{}, err
		}
	}
}

// consumeLine feeds one line into the pending frame. A blank line
// terminates and dispatches the frame, if any.
func (d *frameDecoder) consumeLine(line string) (Frame, bool) {
	line = strings.TrimSuffix(line, "\r")

	switch {
	case line == "":
		if !d.pending {
			return Frame{}, false
		}
		f := Frame{Event: d.event, Data: d.data}
		d.event, d.data, d.pending = "", "", false
		return f, true
	case strings.HasPrefix(line, "event:"):
		d.event = strings.TrimPrefix(strings.TrimPrefix(line, "event:"), " ")
		d.pending = true
	case strings.HasPrefix(line, "data:"):
		d.data = strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
		d.pending = true
	}
	// Anything else (comments, unknown fields) is ignored.
	return Frame{}, false
}
