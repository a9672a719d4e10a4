package tensorcanvas

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/gogpu/gg"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend/cpu"
)

// newTestBuilder returns a builder on a CPU device whose variables start
// at zero, with logging discarded.
func newTestBuilder(t *testing.T, opts ...Option) *Builder {
	t.Helper()
	base := []Option{WithLogger(nil)}
	return New(cpu.New(cpu.WithInitRange(0)), append(base, opts...)...)
}

// drag presses at from and releases at to, returning the release outcome.
func drag(b *Builder, from, to gg.Point) Outcome {
	b.Dispatch(Press(from))
	return b.Dispatch(Release(to))
}

func out(b *Builder, h NodeHandle, i int) gg.Point { return b.Node(h).OutputAnchor(i) }
func in(b *Builder, h NodeHandle, i int) gg.Point  { return b.Node(h).InputAnchor(i) }

// empty is a point that no node placed by the tests covers.
var empty = gg.Pt(-500, -500)

// testLogHandler captures log records for testing.
type testLogHandler struct {
	buf *bytes.Buffer
}

func newTestLogHandler() *testLogHandler {
	return &testLogHandler{buf: &bytes.Buffer{}}
}

func (h *testLogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *testLogHandler) WithGroup(string) slog.Handler      { return h }

func (h *testLogHandler) messages() []string {
	var msgs []string
	for _, line := range bytes.Split(h.buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err == nil {
			msgs = append(msgs, m["msg"].(string))
		}
	}
	return msgs
}
