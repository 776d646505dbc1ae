package tray

import "testing"

func TestTray_Toggle(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("expected enabled after two toggles")
	}
}

func TestTray_SetEnabled(t *testing.T) {
	tr := New(true)
	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(false)

	if tr.IsEnabled() {
		t.Error("expected disabled")
	}
	if called {
		t.Error("SetEnabled must not fire the toggle callback")
	}
}

func TestTray_SetStatus(t *testing.T) {
	tr := New(false)

	tr.SetStatus(10, 120, 3)

	if want := "Frames: 10  Sent: 120  Failed: 3"; tr.Status() != want {
		t.Errorf("Status() = %q, want %q", tr.Status(), want)
	}
}

func TestTray_Settings(t *testing.T) {
	tr := New(true)
	opened := false
	tr.OnSettings(func() { opened = true })

	tr.handleSettings()

	if !opened {
		t.Error("expected settings callback")
	}
}

func TestToggleTitle(t *testing.T) {
	if toggleTitle(true) == toggleTitle(false) {
		t.Error("enabled and paused titles must differ")
	}
}
