package lines

import (
	"errors"
	"testing"
)

func TestCursorPeekDoesNotAdvance(t *testing.T) {
	c := FromSlice([]string{"a", "b"})

	for i := 0; i < 3; i++ {
		line, err := c.Peek()
		if err != nil {
			t.Fatalf("Peek returned error: %v", err)
		}
		if line != "a" {
			t.Fatalf("Peek: got %q want %q", line, "a")
		}
	}
	if c.Consumed() != 0 {
		t.Fatalf("Peek consumed lines: %d", c.Consumed())
	}
}

func TestCursorNextAndExhaustion(t *testing.T) {
	c := FromSlice([]string{"a", "b"})

	for _, want := range []string{"a", "b"} {
		if !c.HasNext() {
			t.Fatalf("HasNext false before %q", want)
		}
		got, err := c.Next()
		if err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
		if got != want {
			t.Fatalf("Next: got %q want %q", got, want)
		}
	}

	if c.HasNext() {
		t.Fatalf("HasNext true after last line")
	}
	if _, err := c.Peek(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("Peek on empty cursor: got %v want ErrExhausted", err)
	}
	if _, err := c.Next(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("Next on empty cursor: got %v want ErrExhausted", err)
	}
	if c.Consumed() != 2 {
		t.Fatalf("Consumed: got %d want 2", c.Consumed())
	}
}

func TestCursorEmptySource(t *testing.T) {
	c := FromSlice(nil)
	if c.HasNext() {
		t.Fatalf("HasNext true for empty source")
	}
	if _, err := c.Next(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestCursorPullsLazily(t *testing.T) {
	pulls := 0
	src := []string{"x", "y", "z"}
	c := New(func() (string, bool) {
		if pulls >= len(src) {
			return "", false
		}
		pulls++
		return src[pulls-1], true
	})

	if pulls != 0 {
		t.Fatalf("source pulled before use: %d", pulls)
	}
	c.Peek()
	c.Peek()
	c.HasNext()
	if pulls != 1 {
		t.Fatalf("lookahead held more than one line: pulls=%d", pulls)
	}
	c.Next()
	if pulls != 1 {
		t.Fatalf("Next pulled an extra line: pulls=%d", pulls)
	}
	c.HasNext()
	if pulls != 2 {
		t.Fatalf("HasNext did not pull the next line: pulls=%d", pulls)
	}
}

func TestFromTextStripsTrailingWhitespace(t *testing.T) {
	c := FromText("Screen 0  \n\teDP-1\t\r\n  1920x1080 \n\n")
	defer c.Close()

	want := []string{"Screen 0", "\teDP-1", "  1920x1080", ""}
	for i, w := range want {
		got, err := c.Next()
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if got != w {
			t.Errorf("line %d: got %q want %q", i, got, w)
		}
	}
	if c.HasNext() {
		t.Fatalf("unexpected extra line")
	}
}

func TestCursorCloseStopsSequence(t *testing.T) {
	c := FromSeq(func(yield func(string) bool) {
		for {
			if !yield("again") {
				return
			}
		}
	})
	if line, _ := c.Next(); line != "again" {
		t.Fatalf("got %q want %q", line, "again")
	}
	c.Close()
	c.Close()
	if c.HasNext() {
		t.Fatalf("HasNext true after Close")
	}
}
