package intent

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func validSpec() Spec {
	return Spec{
		Agent:     "dlg",
		Kind:      "say",
		Params:    map[string]any{"text": "hello"},
		Resources: []Resource{Speech},
		Score:     1.0,
		HoldMs:    50,
		Tier:      Reflex,
	}
}

func TestNew_Valid(t *testing.T) {
	in, err := New(validSpec())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if in.Agent() != "dlg" || in.Kind() != "say" {
		t.Errorf("got agent=%q kind=%q", in.Agent(), in.Kind())
	}
	if in.Tier() != Reflex {
		t.Errorf("Tier() = %v, want reflex", in.Tier())
	}
	if !in.Requires(Speech) || in.Requires(Head) {
		t.Errorf("Requires mismatch for %v", in)
	}
	if v, ok := in.Param("text"); !ok || v != "hello" {
		t.Errorf("Param(text) = %v, %v", v, ok)
	}
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		want   error
	}{
		{"empty agent", func(s *Spec) { s.Agent = "  " }, ErrEmptyAgent},
		{"no resources", func(s *Spec) { s.Resources = nil }, ErrNoResources},
		{"duplicate resource", func(s *Spec) { s.Resources = []Resource{Head, Speech, Head} }, ErrDuplicateResource},
		{"unknown resource", func(s *Spec) { s.Resources = []Resource{"tail"} }, ErrUnknownResource},
		{"unknown tier", func(s *Spec) { s.Tier = Tier(9) }, ErrUnknownTier},
		{"negative tier", func(s *Spec) { s.Tier = Tier(-1) }, ErrUnknownTier},
		{"nan score", func(s *Spec) { s.Score = math.NaN() }, ErrInvalidScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSpec()
			tt.mutate(&s)
			_, err := New(s)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_CopiesInputs(t *testing.T) {
	s := validSpec()
	s.Resources = []Resource{Speech, Head}
	in := MustNew(s)

	s.Resources[0] = Sensors
	s.Params["text"] = "changed"

	if in.Resources()[0] != Speech {
		t.Error("intent resources changed after mutating the spec")
	}
	if v, _ := in.Param("text"); v != "hello" {
		t.Error("intent params changed after mutating the spec")
	}

	res := in.Resources()
	res[0] = UI
	if in.Resources()[0] != Speech {
		t.Error("Resources() must return a copy")
	}
	params := in.Params()
	params["text"] = "x"
	if v, _ := in.Param("text"); v != "hello" {
		t.Error("Params() must return a copy")
	}
}

func TestEffectiveHoldMs(t *testing.T) {
	tests := []struct {
		hold int64
		want int64
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{500, 500},
	}
	for _, tt := range tests {
		s := validSpec()
		s.HoldMs = tt.hold
		if got := MustNew(s).EffectiveHoldMs(); got != tt.want {
			t.Errorf("EffectiveHoldMs(hold=%d) = %d, want %d", tt.hold, got, tt.want)
		}
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew should panic on an invalid spec")
		}
	}()
	MustNew(Spec{Agent: "a", Tier: Reflex})
}

func TestIntent_JSONRoundTripValidates(t *testing.T) {
	in := MustNew(validSpec())
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if raw["tier"] != "reflex" {
		t.Errorf("tier encoded as %v, want \"reflex\"", raw["tier"])
	}
	if raw["hold_ms"] != float64(50) {
		t.Errorf("hold_ms encoded as %v", raw["hold_ms"])
	}

	var bad Intent
	err = json.Unmarshal([]byte(`{"agent":"a","kind":"k","resources":[],"tier":"reflex"}`), &bad)
	if !errors.Is(err, ErrNoResources) {
		t.Errorf("decoding an intent without resources: err = %v, want ErrNoResources", err)
	}
}
