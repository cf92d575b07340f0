//nolint:goconst // test cases intentionally repeat strings for readability
package keymap

import (
	"testing"
)

func TestByContext(t *testing.T) {
	tests := []struct {
		name            string
		context         string
		expectMinLength int
	}{
		{"global context", ContextGlobal, 5},
		{"navigation context", ContextNavigate, 6},
		{"browser context", ContextBrowser, 3},
		{"playlist context", ContextPlaylist, 5},
		{"search context", ContextSearch, 2},
		{"unknown context returns empty", "unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ByContext(tt.context)

			if tt.expectMinLength == 0 && len(result) != 0 {
				t.Errorf("ByContext(%q) returned %d items, expected empty", tt.context, len(result))
			}
			if len(result) < tt.expectMinLength {
				t.Errorf("ByContext(%q) returned %d items, expected at least %d", tt.context, len(result), tt.expectMinLength)
			}
			for _, binding := range result {
				if binding.Context != tt.context {
					t.Errorf("binding context = %q, want %q", binding.Context, tt.context)
				}
			}
		})
	}
}

func TestAllBindingsHaveKeysAndHelp(t *testing.T) {
	for _, b := range All {
		if len(b.Keys) == 0 {
			t.Errorf("binding %q has no keys", b.Action)
		}
		if b.Help == "" {
			t.Errorf("binding %q has no help text", b.Action)
		}
	}
}

func TestHelpKeys(t *testing.T) {
	keys := HelpKeys(ContextPlaylist)
	want := len(ByContext(ContextPlaylist)) + len(ByContext(ContextGlobal))
	if len(keys) != want {
		t.Fatalf("HelpKeys(playlist) returned %d bindings, want %d", len(keys), want)
	}

	first := keys[0].Help()
	if first.Key != "enter" || first.Desc != "play" {
		t.Errorf("first help = %q %q, want enter play", first.Key, first.Desc)
	}
	if !keys[0].Enabled() {
		t.Error("help binding should be enabled")
	}
}

func TestLookup(t *testing.T) {
	if a, ok := Lookup("next_track"); !ok || a != ActionNextTrack {
		t.Errorf("Lookup(next_track) = %q, %v", a, ok)
	}
	if a, ok := Lookup("command"); !ok || a != ActionCommand {
		t.Errorf("Lookup(command) = %q, %v", a, ok)
	}
	if _, ok := Lookup("self_destruct"); ok {
		t.Error("Lookup found an unbound action")
	}
}
