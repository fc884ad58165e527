// Package input turns raw terminal bytes into page navigation keys.
package input

import (
	"bufio"
)

// Key is one navigation action.
type Key int

const (
	KeyNone Key = iota
	KeyQuit
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyTop
	KeyBottom
	KeyEnter
	KeySection // Jump to a section; Input.Section holds the index
)

// Input represents the keys pressed since the last read.
type Input struct {
	Keys    []Key
	Section int    // 0-based section for the last KeySection, -1 if none
	Pressed []byte // Raw bytes, for activity tracking
	Closed  bool   // The underlying reader has ended
}

// Has reports whether k was pressed.
func (in Input) Has(k Key) bool {
	for _, key := range in.Keys {
		if key == k {
			return true
		}
	}
	return false
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking) and
// parses them into keys.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Parse(buf)
	in.Closed = s.closed
	return in
}

// Parse converts a burst of raw bytes into keys. Escape sequences for the
// arrow, page and home/end keys are recognised in both CSI and SS3 forms.
func Parse(buf []byte) Input {
	in := Input{Section: -1, Pressed: buf}
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
			if key, n := parseEscape(buf[i+2:]); key != KeyNone {
				in.Keys = append(in.Keys, key)
				i += 1 + n
				continue
			}
		}

		switch b {
		case 'q', 'Q', '\x03':
			in.Keys = append(in.Keys, KeyQuit)
		case 'k', 'K', 'w', 'W':
			in.Keys = append(in.Keys, KeyUp)
		case 'j', 'J', 's', 'S':
			in.Keys = append(in.Keys, KeyDown)
		case 'b', 'B', '\x02':
			in.Keys = append(in.Keys, KeyPageUp)
		case ' ', 'f', 'F', '\x06':
			in.Keys = append(in.Keys, KeyPageDown)
		case 'g':
			in.Keys = append(in.Keys, KeyTop)
		case 'G':
			in.Keys = append(in.Keys, KeyBottom)
		case '\n', '\r':
			in.Keys = append(in.Keys, KeyEnter)
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			in.Keys = append(in.Keys, KeySection)
			in.Section = int(b - '1')
		}
	}
	return in
}

// parseEscape parses the tail of an escape sequence (after "ESC [" or
// "ESC O") and returns the key and the number of bytes consumed.
func parseEscape(seq []byte) (Key, int) {
	switch seq[0] {
	case 'A':
		return KeyUp, 1
	case 'B':
		return KeyDown, 1
	case 'H':
		return KeyTop, 1
	case 'F':
		return KeyBottom, 1
	}
	// VT-style "ESC [ <n> ~"
	if len(seq) >= 2 && seq[1] == '~' {
		switch seq[0] {
		case '1', '7':
			return KeyTop, 2
		case '4', '8':
			return KeyBottom, 2
		case '5':
			return KeyPageUp, 2
		case '6':
			return KeyPageDown, 2
		}
	}
	return KeyNone, 0
}
