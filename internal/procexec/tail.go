package procexec

import (
	"strings"
	"sync"
)

// tailBuffer keeps the last n lines written to it plus any unterminated
// remainder. Both \n and a bare \r end a line, so carriage-return progress
// output from ffmpeg and streamlink becomes separate lines. Blank lines are
// dropped.
type tailBuffer struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial strings.Builder
}

func newTailBuffer(max int) *tailBuffer {
	if max <= 0 {
		max = defaultTailLines
	}
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range p {
		if b == '\n' || b == '\r' {
			if t.partial.Len() > 0 {
				t.push(t.partial.String())
				t.partial.Reset()
			}
			continue
		}
		t.partial.WriteByte(b)
	}
	return len(p), nil
}

func (t *tailBuffer) push(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = append(t.lines[:0], t.lines[len(t.lines)-t.max:]...)
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := append([]string(nil), t.lines...)
	if rest := t.partial.String(); rest != "" {
		out = append(out, rest)
		if len(out) > t.max {
			out = out[len(out)-t.max:]
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
