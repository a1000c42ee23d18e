package registry

import (
	"errors"
	"testing"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/constraint"
)

func textModel(id string, provider core.Provider) Model {
	return Model{
		ID:          id,
		Provider:    provider,
		DisplayName: id,
		Operations:  map[core.Modality][]core.Operation{core.ModalityText: {core.OperationGenerate}},
		Streaming:   true,
		Constraints: map[string]constraint.Constraint{
			core.ParamTemperature: constraint.Range{Min: 0, Max: 2},
		},
	}
}

// TestRegistry_RegisterAndGet verifies the round-trip property: after
// registration, Get returns the registered record and List includes it
// exactly once.
func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New()
	m := textModel("demo-1", "demo")

	if err := r.Register(m); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := r.Get("demo-1", "demo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != m.ID || got.Provider != m.Provider || got.DisplayName != m.DisplayName {
		t.Errorf("Get returned %+v, want %+v", got, m)
	}

	count := 0
	for _, listed := range r.List(Filter{}) {
		if listed.ID == "demo-1" && listed.Provider == "demo" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("List contains the model %d times, want exactly once", count)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := New()

	_, err := r.Get("ghost", "nowhere")
	var nf *core.ModelNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get error = %v, want *core.ModelNotFoundError", err)
	}
	if nf.ModelID != "ghost" || nf.Provider != "nowhere" {
		t.Errorf("error keys = (%q, %q), want both search keys named", nf.ModelID, nf.Provider)
	}
}

// TestRegistry_Duplicates covers both duplicate policies: a same-batch
// duplicate always errors, a cross-call duplicate errors without explicit
// overwrite intent and replaces with it.
func TestRegistry_Duplicates(t *testing.T) {
	t.Run("same batch", func(t *testing.T) {
		r := New()
		err := r.Register(textModel("m", "p"), textModel("m", "p"))
		var dup *core.DuplicateModelError
		if !errors.As(err, &dup) {
			t.Fatalf("Register error = %v, want *core.DuplicateModelError", err)
		}
		if dup.ModelID != "m" || dup.Provider != "p" {
			t.Errorf("error names (%q, %q), want the conflicting pair", dup.ModelID, dup.Provider)
		}
		if got := r.List(Filter{}); len(got) != 0 {
			t.Errorf("failed batch inserted %d models, want none", len(got))
		}
	})

	t.Run("across calls without overwrite", func(t *testing.T) {
		r := New()
		if err := r.Register(textModel("m", "p")); err != nil {
			t.Fatal(err)
		}
		var dup *core.DuplicateModelError
		if err := r.Register(textModel("m", "p")); !errors.As(err, &dup) {
			t.Fatalf("re-Register error = %v, want *core.DuplicateModelError", err)
		}
	})

	t.Run("explicit overwrite", func(t *testing.T) {
		r := New()
		if err := r.Register(textModel("m", "p")); err != nil {
			t.Fatal(err)
		}
		updated := textModel("m", "p")
		updated.DisplayName = "M (updated)"
		if err := r.Replace(updated); err != nil {
			t.Fatalf("Replace: %v", err)
		}
		got, err := r.Get("m", "p")
		if err != nil {
			t.Fatal(err)
		}
		if got.DisplayName != "M (updated)" {
			t.Errorf("Replace did not overwrite: DisplayName = %q", got.DisplayName)
		}
		if listed := r.List(Filter{}); len(listed) != 1 {
			t.Errorf("List after Replace has %d entries, want exactly one", len(listed))
		}
	})
}

func TestRegistry_ListFilterAndOrder(t *testing.T) {
	r := New()
	a := textModel("a", "p1")
	b := textModel("b", "p2")
	c := Model{
		ID:         "c",
		Provider:   "p1",
		Operations: map[core.Modality][]core.Operation{core.ModalityAudio: {core.OperationSpeak}},
	}
	if err := r.Register(a, b, c); err != nil {
		t.Fatal(err)
	}

	all := r.List(Filter{})
	if len(all) != 3 || all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Errorf("List order = %v, want registration order a, b, c", ids(all))
	}

	byProvider := r.List(Filter{Provider: "p1"})
	if len(byProvider) != 2 {
		t.Errorf("provider filter returned %v", ids(byProvider))
	}

	byModality := r.List(Filter{Modality: core.ModalityAudio})
	if len(byModality) != 1 || byModality[0].ID != "c" {
		t.Errorf("modality filter returned %v", ids(byModality))
	}

	byOperation := r.List(Filter{Modality: core.ModalityText, Operation: core.OperationEdit})
	if len(byOperation) != 0 {
		t.Errorf("operation filter returned %v, want none", ids(byOperation))
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := New()
	if err := r.Register(textModel("m", "p")); err != nil {
		t.Fatal(err)
	}
	r.Clear()
	if got := r.List(Filter{}); len(got) != 0 {
		t.Errorf("List after Clear = %v, want empty", ids(got))
	}
	// A cleared registry accepts the same key again.
	if err := r.Register(textModel("m", "p")); err != nil {
		t.Errorf("Register after Clear: %v", err)
	}
}

func TestModel_Supports(t *testing.T) {
	m := textModel("m", "p")
	if !m.Supports(core.ModalityText, core.OperationGenerate) {
		t.Error("declared pair not supported")
	}
	if m.Supports(core.ModalityText, core.OperationEdit) {
		t.Error("undeclared operation reported as supported")
	}
	if m.Supports(core.ModalityImages, core.OperationGenerate) {
		t.Error("undeclared modality reported as supported")
	}
}

func ids(models []Model) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.ID
	}
	return out
}
