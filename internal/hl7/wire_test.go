package hl7

import "testing"

func TestJoinFields_TrimsTrailingEmpties(t *testing.T) {
	fields := []Value{
		Present("PID"), Present("0001"), Absent(), Present("123"),
		Absent(), Absent(),
	}
	if got := JoinFields(fields); got != "PID|0001||123" {
		t.Errorf("got %q", got)
	}
}

func TestJoinFields_KeepsInapplicableToken(t *testing.T) {
	fields := []Value{Present("RXE"), Inapplicable(), Present("x")}
	if got := JoinFields(fields); got != `RXE|""|x` {
		t.Errorf("got %q", got)
	}
}

func TestFromRaw_TriState(t *testing.T) {
	if !FromRaw("").IsAbsent() {
		t.Error("empty string should be absent")
	}
	if !FromRaw(InapplicableToken).IsInapplicable() {
		t.Error("quote token should be inapplicable")
	}
	if !FromRaw("x").IsPresent() {
		t.Error("non-empty string should be present")
	}
	if FromRaw(InapplicableToken).String() != `""` {
		t.Error("inapplicable should render the verbatim token")
	}
}

func TestComponent_CollapsesWhenEmpty(t *testing.T) {
	if got := Component("", "", ""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
	if got := Component("a", "", "c"); got != "a^^c" {
		t.Errorf("got %q", got)
	}
}

func TestRepeat_SkipsEmpties(t *testing.T) {
	if got := Repeat("a", "", "b"); got != "a~b" {
		t.Errorf("got %q", got)
	}
}

func TestZeroFill(t *testing.T) {
	if got := ZeroFill("123", 5); got != "00123" {
		t.Errorf("got %q", got)
	}
	if got := ZeroFill("123456", 5); got != "123456" {
		t.Errorf("got %q", got)
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`a|b^c~d&e\f`); got != `a\F\b\S\c\R\d\T\e\E\f` {
		t.Errorf("got %q", got)
	}
}
