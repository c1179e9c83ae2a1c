package stream

import (
	"io"
	"strings"
	"testing"
)

// drip returns a reader that yields at most n bytes per Read call, so
// tests can force lines and runes to straddle read boundaries.
type drip struct {
	data []byte
	n    int
}

func (d *drip) Read(p []byte) (int, error) {
	if len(d.data) == 0 {
		return 0, io.EOF
	}
	n := min(d.n, min(len(d.data), len(p)))
	copy(p, d.data[:n])
	d.data = d.data[n:]
	return n, nil
}

func collect(t *testing.T, r io.Reader) []Frame {
	t.Helper()
	dec := newFrameDecoder(r)
	var frames []Frame
	for {
		f, err := dec.Next()
		if err == io.EOF {
			return frames
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		frames = append(frames, f)
	}
}

func TestDecodeFrames(t *testing.T) {
	input := "event: metadata\ndata: {\"x\":1}\n\n" +
		"event: chunk\ndata: hello\n\n" +
		"event: done\ndata: {}\n\n"

	frames := collect(t, strings.NewReader(input))

	want := []Frame{
		{Event: "metadata", Data: `{"x":1}`},
		{Event: "chunk", Data: "hello"},
		{Event: "done", Data: "{}"},
	}
	if len(frames) != len(want) {
		t.Fatalf("frames = %d, want %d", len(frames), len(want))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestDecodeIgnoresUnknownLines(t *testing.T) {
	input := ": comment line\n" +
		"id: 17\n" +
		"garbage without colon\n" +
		"event: chunk\n" +
		"retry: 1000\n" +
		"data: x\n\n"

	frames := collect(t, strings.NewReader(input))

	if len(frames) != 1 || frames[0] != (Frame{Event: "chunk", Data: "x"}) {
		t.Errorf("frames = %+v, want single chunk x", frames)
	}
}

func TestDecodeCRLF(t *testing.T) {
	input := "event: chunk\r\ndata: hi\r\n\r\n"

	frames := collect(t, strings.NewReader(input))

	if len(frames) != 1 || frames[0].Data != "hi" {
		t.Errorf("frames = %+v, want chunk hi", frames)
	}
}

func TestDecodeLinesSplitAcrossReads(t *testing.T) {
	input := "event: chunk\ndata: split across many reads\n\n"

	for _, n := range []int{1, 2, 3, 7} {
		frames := collect(t, &drip{data: []byte(input), n: n})
		if len(frames) != 1 || frames[0].Data != "split across many reads" {
			t.Errorf("n=%d: frames = %+v", n, frames)
		}
	}
}

func TestDecodeMultiByteRuneSplitAcrossReads(t *testing.T) {
	// "héllo wörld 🌍" contains 2-byte and 4-byte sequences; a 1-byte
	// drip guarantees every one of them straddles a read boundary.
	payload := "héllo wörld 🌍"
	input := "event: chunk\ndata: " + payload + "\n\n"

	frames := collect(t, &drip{data: []byte(input), n: 1})

	if len(frames) != 1 || frames[0].Data != payload {
		t.Errorf("frames = %+v, want chunk %q", frames, payload)
	}
}

func TestDecodeIncompleteTrailingLineRetained(t *testing.T) {
	// The stream ends mid-line; the partial line must not produce a frame.
	input := "event: chunk\ndata: complete\n\nevent: chu"

	frames := collect(t, strings.NewReader(input))

	if len(frames) != 1 {
		t.Errorf("frames = %+v, want only the complete frame", frames)
	}
}

func TestDecodeBlankLineWithoutPendingFrame(t *testing.T) {
	input := "\n\n\nevent: chunk\ndata: a\n\n"

	frames := collect(t, strings.NewReader(input))

	if len(frames) != 1 || frames[0].Data != "a" {
		t.Errorf("frames = %+v, want single chunk a", frames)
	}
}
