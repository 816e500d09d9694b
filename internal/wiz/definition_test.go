package wiz

import "testing"

func TestDefinitionMergeOverlaysAndConcatenates(t *testing.T) {
	reqA, _ := ParseRequirement("base")
	reqB, _ := ParseRequirement("extra")

	def := Definition{
		Identifier:   "foo",
		Command:      map[string]string{"foo": "run-foo"},
		Environ:      map[string]string{"PATH": "/base"},
		Requirements: []Requirement{reqA},
		Variants: []Variant{
			{
				Identifier:   "gpu",
				Command:      map[string]string{"foo": "run-foo-gpu"},
				Environ:      map[string]string{"CUDA": "1"},
				Requirements: []Requirement{reqB},
			},
		},
	}

	variant, ok := def.FindVariant("gpu")
	if !ok {
		t.Fatal("expected to find gpu variant")
	}

	merged := def.Merge(variant)

	if merged.Command["foo"] != "run-foo-gpu" {
		t.Fatalf("expected variant command to win, got %q", merged.Command["foo"])
	}
	if merged.Environ["PATH"] != "/base" || merged.Environ["CUDA"] != "1" {
		t.Fatalf("expected environ to overlay, got %+v", merged.Environ)
	}
	if len(merged.Requirements) != 2 || merged.Requirements[0].Name != "base" || merged.Requirements[1].Name != "extra" {
		t.Fatalf("expected requirements to concatenate base-then-variant, got %+v", merged.Requirements)
	}
	if merged.HasVariants() {
		t.Fatal("expected merged view to drop nested variants")
	}
	if merged.VariantTag() != "gpu" {
		t.Fatalf("expected variant tag %q, got %q", "gpu", merged.VariantTag())
	}

	if def.HasVariants() != true {
		t.Fatal("expected original definition to retain its variants")
	}
}

func TestDefinitionWithExtrasAreImmutable(t *testing.T) {
	base := Definition{Identifier: "foo"}
	stamped := base.WithRegistryRoot("/registry").WithDefinitionLocation("/registry/foo.json")

	if base.RegistryRoot() != "" {
		t.Fatal("expected base definition to be unaffected")
	}
	if stamped.RegistryRoot() != "/registry" {
		t.Fatalf("got %q", stamped.RegistryRoot())
	}
	if stamped.DefinitionLocation() != "/registry/foo.json" {
		t.Fatalf("got %q", stamped.DefinitionLocation())
	}
}

func TestNodeIdentifier(t *testing.T) {
	v, _ := ParseVersion("1.0.0")
	def := Definition{Identifier: "foo", Version: v}
	if got := NodeIdentifier(def); got != "foo==1.0.0" {
		t.Fatalf("got %q", got)
	}

	variant := Variant{Identifier: "gpu"}
	merged := def.Merge(variant)
	if got := NodeIdentifier(merged); got != "foo[gpu]==1.0.0" {
		t.Fatalf("got %q", got)
	}
}

func TestDefinitionJSONRoundTrip(t *testing.T) {
	req, _ := ParseRequirement("bar >=1.0.0")
	v, _ := ParseVersion("1.2.3")

	def := Definition{
		Identifier:   "foo",
		Version:      v,
		Description:  "a package",
		AutoUse:      true,
		Command:      map[string]string{"foo": "run-foo"},
		Environ:      map[string]string{"PATH": "/opt/foo/bin"},
		Requirements: []Requirement{req},
		Variants: []Variant{
			{Identifier: "gpu", Requirements: []Requirement{req}},
		},
	}

	data, err := def.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out Definition
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if out.Identifier != def.Identifier || out.Version.String() != def.Version.String() {
		t.Fatalf("round-trip mismatch: %+v vs %+v", out, def)
	}
	if len(out.Variants) != 1 || out.Variants[0].Identifier != "gpu" {
		t.Fatalf("expected variant to round-trip, got %+v", out.Variants)
	}
	if !out.AutoUse {
		t.Fatal("expected auto-use to round-trip")
	}
}

func TestDefinitionUnmarshalMissingIdentifier(t *testing.T) {
	var out Definition
	err := out.UnmarshalJSON([]byte(`{"description": "no id"}`))
	if err == nil {
		t.Fatal("expected error for missing identifier")
	}
	if !IsKind(err, KindIncorrectDefinition) {
		t.Fatalf("expected KindIncorrectDefinition, got %v", err)
	}
}
