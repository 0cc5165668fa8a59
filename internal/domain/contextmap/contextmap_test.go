package contextmap

import (
	"encoding/json"
	"slices"
	"testing"
)

func mustParse(t *testing.T, raw string) Map {
	t.Helper()
	var m Map
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestUnmarshal_KeepsOrder(t *testing.T) {
	m := mustParse(t, `{"zeta":"1","alpha":{"y":2,"x":true},"list":["a","b","a"],"gone":null}`)

	if got := m.Keys(); !slices.Equal(got, []string{"zeta", "alpha", "list"}) {
		t.Errorf("unexpected key order %v", got)
	}
	if got := m.String("alpha", "y"); got != "2" {
		t.Errorf("expected number as text, got %q", got)
	}
	if got := m.String("alpha", "x"); got != "true" {
		t.Errorf("expected bool as text, got %q", got)
	}
	v, ok := m.Get("list")
	if !ok || v.Kind() != KindList {
		t.Fatalf("expected list, got %+v", v)
	}
	if got := v.Strings(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected deduplicated list, got %v", got)
	}
}

func TestMarshal_RoundTripOrder(t *testing.T) {
	raw := `{"b":"1","a":{"d":"x","c":["p","q"]}}`
	m := mustParse(t, raw)
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("expected %s, got %s", raw, out)
	}
}

func TestUnmarshal_RejectsNonObject(t *testing.T) {
	var m Map
	if err := json.Unmarshal([]byte(`["a"]`), &m); err == nil {
		t.Fatal("expected error for array input")
	}
}

func TestGet_Missing(t *testing.T) {
	m := New().With(Scalar("KR"), "market", "country")
	if _, ok := m.Get("market", "country", "deeper"); ok {
		t.Error("scalar has no children")
	}
	if _, ok := m.Get(); ok {
		t.Error("empty path must miss")
	}
	if got := m.String("market", "country"); got != "KR" {
		t.Errorf("expected KR, got %q", got)
	}
}

func TestWith_DoesNotMutate(t *testing.T) {
	base := New().With(Scalar("a"), "k")
	next := base.With(Scalar("b"), "k")
	if base.String("k") != "a" {
		t.Error("With must not mutate the receiver")
	}
	if next.String("k") != "b" {
		t.Error("With must store the new value")
	}
}

func TestSoft(t *testing.T) {
	m := New().
		With(Scalar("hero"), "section").
		WithSoft(Scalar("KR"), "country").
		WithSoft(Scalar("ko"), "market", "language")

	if m.IsSoft("section") {
		t.Error("section must be hard")
	}
	if !m.IsSoft("country") {
		t.Error("country must be soft")
	}
	if !m.IsSoft("market", "language") {
		t.Error("nested value must be soft")
	}

	hard := m.HardScalars()
	if len(hard) != 1 || hard["section"] != "hero" {
		t.Errorf("expected only section as hard scalar, got %v", hard)
	}
}

func TestMerge(t *testing.T) {
	t.Run("earlier scalar wins", func(t *testing.T) {
		a := New().With(Scalar("KR"), "country")
		b := New().With(Scalar("US"), "country")
		if got := Merge(a, b).String("country"); got != "KR" {
			t.Errorf("expected KR, got %q", got)
		}
	})

	t.Run("blank never overwrites", func(t *testing.T) {
		a := New().With(Scalar("  "), "country")
		b := New().With(Scalar("US"), "country")
		if got := Merge(a, b).String("country"); got != "US" {
			t.Errorf("expected US, got %q", got)
		}
	})

	t.Run("lists union in first-seen order", func(t *testing.T) {
		a := New().With(List("x", "y"), "tags")
		b := New().With(List("y", "z"), "tags")
		v, _ := Merge(a, b).Get("tags")
		if got := v.Strings(); !slices.Equal(got, []string{"x", "y", "z"}) {
			t.Errorf("unexpected union %v", got)
		}
	})

	t.Run("nested maps merge recursively", func(t *testing.T) {
		a := mustParse(t, `{"page":{"id":"ipad-pro"}}`)
		b := mustParse(t, `{"page":{"id":"other","title":"iPad"},"extra":"1"}`)
		m := Merge(a, b)
		if m.String("page", "id") != "ipad-pro" {
			t.Errorf("expected earlier nested scalar, got %q", m.String("page", "id"))
		}
		if m.String("page", "title") != "iPad" {
			t.Errorf("expected nested fill-in, got %q", m.String("page", "title"))
		}
		if got := m.Keys(); !slices.Equal(got, []string{"page", "extra"}) {
			t.Errorf("unexpected key order %v", got)
		}
	})

	t.Run("softness follows the winning value", func(t *testing.T) {
		a := New().With(Scalar("KR"), "country")
		b := New().WithSoft(Scalar("US"), "country").WithSoft(Scalar("ko"), "language")
		m := Merge(a, b)
		if m.IsSoft("country") {
			t.Error("hard earlier value must stay hard")
		}
		if !m.IsSoft("language") {
			t.Error("soft fill-in must stay soft")
		}
	})

	t.Run("hard nested merge keeps soft children soft", func(t *testing.T) {
		a := New().WithSoft(Scalar("ko"), "market", "language")
		b := New().With(Scalar("KR"), "market", "country")
		m := Merge(a, b)
		if !m.IsSoft("market", "language") {
			t.Error("soft nested child must stay soft")
		}
		if m.IsSoft("market", "country") {
			t.Error("hard nested child must be hard")
		}
	})

	t.Run("no sources", func(t *testing.T) {
		if !Merge().IsEmpty() {
			t.Error("expected empty map")
		}
	})
}

func TestFromAny(t *testing.T) {
	m := FromAny(map[string]any{
		"b":    "2",
		"a":    1.5,
		"tags": []any{"x", nil, "y"},
		"skip": nil,
	})
	if got := m.Keys(); !slices.Equal(got, []string{"a", "b", "tags"}) {
		t.Errorf("expected sorted keys, got %v", got)
	}
	if m.String("a") != "1.5" {
		t.Errorf("unexpected number text %q", m.String("a"))
	}
	back := m.ToAny()
	if back["b"] != "2" {
		t.Errorf("unexpected round trip %v", back)
	}
}

func TestSoften(t *testing.T) {
	m := Soften(mustParse(t, `{"tenant":"apple","page":{"id":"ipad"}}`))
	if !m.IsSoft("tenant") || !m.IsSoft("page", "id") {
		t.Error("every value must be soft")
	}
	if len(m.HardScalars()) != 0 {
		t.Error("softened map has no hard scalar")
	}
}
