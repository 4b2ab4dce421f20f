package logs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reusee/dscope"
)

func TestLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	dscope.New(new(Module)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		logger Logger,
	) {
		logger.Info("run started", "url", "https://example.com/quiz-1")
		if !strings.Contains(buf.String(), "url=https://example.com/quiz-1") {
			t.Fatalf("got %q", buf.String())
		}
	})
}

func TestJournalKey(t *testing.T) {
	if k := toJournalKey("logs.span"); k != "LOGS_SPAN" {
		t.Fatalf("got %q", k)
	}
}

func TestNewSpan(t *testing.T) {
	buf := new(bytes.Buffer)
	dscope.New(new(Module)).Fork(
		func() Writer {
			return buf
		},
	).Call(func(
		newSpan NewSpan,
		logger Logger,
	) {
		ctx := context.Background()
		ctx1, span1 := newSpan(ctx, "")
		ctx11, span11 := newSpan(ctx1, "")
		if SpanOf(ctx11) != span11 {
			t.Fatal("span not in context")
		}

		logger.InfoContext(ctx11, "step")
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		last := lines[len(lines)-1]
		if !strings.Contains(last, "logs.span="+string(span11)) {
			t.Fatalf("got %v", last)
		}

		err := WrapSpan(ctx1, errors.New("gateway failed"))
		if !strings.Contains(err.Error(), string(span1)) {
			t.Fatalf("got %v", err)
		}
		if WrapSpan(ctx, nil) != nil {
			t.Fatal("nil error should stay nil")
		}
	})
}

func TestFileWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	file := new(bytes.Buffer)
	dscope.New(new(Module)).Fork(
		func() Writer {
			return buf
		},
		func() FileWriter {
			return file
		},
	).Call(func(
		logger Logger,
	) {
		logger.Info("tool finished", "name", "render_page")
		if !strings.Contains(file.String(), `"name":"render_page"`) {
			t.Fatalf("got %q", file.String())
		}
		if !strings.Contains(buf.String(), "name=render_page") {
			t.Fatalf("got %q", buf.String())
		}
	})
}
