package option

import (
	"errors"
	"testing"
)

func TestSpin(t *testing.T) {
	o := NewSpin("Move Overhead", 10, 0, 5000)

	tests := []struct {
		raw  string
		want int
		err  error
	}{
		{"25", 25, nil},
		{" 0 ", 0, nil},
		{"5000", 5000, nil},
		{"5001", 5000, ErrOutOfRange},
		{"-1", 5000, ErrOutOfRange},
		{"ten", 5000, ErrInvalidValue},
	}
	for _, tt := range tests {
		err := o.Set(tt.raw)
		if !errors.Is(err, tt.err) {
			t.Errorf("Set(%q) error = %v, want %v", tt.raw, err, tt.err)
		}
		if o.Int() != tt.want {
			t.Errorf("after Set(%q) value = %d, want %d", tt.raw, o.Int(), tt.want)
		}
	}

	if got := NewSpin("x", 99, 0, 10).Int(); got != 10 {
		t.Errorf("default not clamped into range: %d", got)
	}
}

func TestCheckAndString(t *testing.T) {
	c := NewCheck("Debug Log", false)
	if err := c.Set("true"); err != nil || !c.Bool() {
		t.Fatalf("Set(true) = %v, value %v", err, c.Bool())
	}
	if err := c.Set("maybe"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Set(maybe) = %v, want ErrInvalidValue", err)
	}
	if !c.Bool() {
		t.Error("failed Set changed the value")
	}

	s := NewString("UCI_EngineAbout", "")
	if err := s.Set("hello world"); err != nil || s.Str() != "hello world" {
		t.Errorf("string option = %q, %v", s.Str(), err)
	}
	if err := s.Set("<empty>"); err != nil || s.Str() != "" {
		t.Errorf("<empty> = %q, %v", s.Str(), err)
	}
}

func TestSetRegistry(t *testing.T) {
	var changed int
	overhead := NewSpin("Move Overhead", 10, 0, 5000).OnChange(func(o *Option) { changed = o.Int() })
	set := NewSet(NewCheck("Debug Log", false), overhead, NewString("UCI_EngineAbout", "core"))

	if err := set.Apply("move overhead", "40"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changed != 40 {
		t.Errorf("OnChange saw %d, want 40", changed)
	}
	if err := set.Apply("Hash", "16"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("unknown option error = %v", err)
	}

	want := []string{
		"option name Debug Log type check default false",
		"option name Move Overhead type spin default 10 min 0 max 5000",
		"option name UCI_EngineAbout type string default core",
	}
	got := set.UCILines()
	if len(got) != len(want) {
		t.Fatalf("UCILines = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
