package parser

import (
	"io"
	"strings"
	"testing"
)

func TestByteSource_NextAdvancesPosition(t *testing.T) {
	s := NewByteSource(strings.NewReader("ab\ncd"), false)

	tests := []struct {
		want byte
		pos  Position
	}{
		{'a', Position{Line: 1, Column: 1, Offset: 0}},
		{'b', Position{Line: 1, Column: 2, Offset: 1}},
		{'\n', Position{Line: 1, Column: 3, Offset: 2}},
		{'c', Position{Line: 2, Column: 1, Offset: 3}},
	}

	for i, tt := range tests {
		gotPos := s.Pos()
		if gotPos != tt.pos {
			t.Errorf("step %d: Pos before Next = %+v, want %+v", i, gotPos, tt.pos)
		}
		b, err := s.Next()
		if err != nil {
			t.Fatalf("step %d: Next returned error: %v", i, err)
		}
		if b != tt.want {
			t.Errorf("step %d: Next = %q, want %q", i, b, tt.want)
		}
	}
}

func TestByteSource_PushBackRestoresPosition(t *testing.T) {
	s := NewByteSource(strings.NewReader("xyz"), false)

	before := s.Pos()
	b, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	s.PushBack(b)
	after := s.Pos()
	if before != after {
		t.Errorf("position after push-back = %+v, want %+v", after, before)
	}

	again, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if again != b {
		t.Errorf("Next after push-back = %q, want %q", again, b)
	}
}

func TestByteSource_PushBackAcrossNewline(t *testing.T) {
	s := NewByteSource(strings.NewReader("a\nb"), false)
	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}
	nl, err := s.Next()
	if err != nil || nl != '\n' {
		t.Fatalf("expected newline, got %q, %v", nl, err)
	}
	before := s.Pos()
	s.PushBack(nl)
	if s.Pos().Line != before.Line-1 {
		t.Errorf("push-back of newline should decrement line, got %+v", s.Pos())
	}
	got, err := s.Next()
	if err != nil || got != '\n' {
		t.Fatalf("expected newline again, got %q, %v", got, err)
	}
}

func TestByteSource_EOF(t *testing.T) {
	s := NewByteSource(strings.NewReader(""), false)
	if _, err := s.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestByteSource_Checksum(t *testing.T) {
	s := NewByteSource(strings.NewReader("G1 X2*"), true)
	for i := 0; i < 6; i++ {
		if _, err := s.Next(); err != nil {
			t.Fatal(err)
		}
	}
	want := byte('G') ^ '1' ^ ' ' ^ 'X' ^ '2' ^ '*'
	if got := s.Sum(); got != want {
		t.Errorf("Sum = %#x, want %#x", got, want)
	}

	b, err := s.Next()
	_ = b
	if err != io.EOF {
		t.Fatal(err)
	}
}

func TestByteSource_PushBackReversesChecksum(t *testing.T) {
	s := NewByteSource(strings.NewReader("AB"), true)
	a, _ := s.Next()
	b, _ := s.Next()
	sumAB := s.Sum()

	s.PushBack(b)
	if s.Sum() != a {
		t.Errorf("Sum after push-back = %#x, want %#x", s.Sum(), a)
	}

	again, _ := s.Next()
	if again != b {
		t.Fatalf("Next after push-back = %q, want %q", again, b)
	}
	if s.Sum() != sumAB {
		t.Errorf("Sum after re-reading = %#x, want %#x", s.Sum(), sumAB)
	}
}

func TestByteSource_ResetSum(t *testing.T) {
	s := NewByteSource(strings.NewReader("A"), true)
	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}
	s.ResetSum(0)
	if s.Sum() != 0 {
		t.Errorf("Sum after ResetSum(0) = %#x, want 0", s.Sum())
	}
}
