package settings

import "testing"

func TestValueCache_RemembersUnsetKeys(t *testing.T) {
	c := newValueCache()
	c.Set("a", "1", true)
	c.Set("b", "", false)

	if v, ok := c.Get("a"); !ok || !v.Present || v.Value != "1" {
		t.Fatalf("a = %+v (ok=%v)", v, ok)
	}
	if v, ok := c.Get("b"); !ok || v.Present {
		t.Fatalf("expected b cached as unset, got %+v (ok=%v)", v, ok)
	}
	if _, ok := c.Get("c"); ok {
		t.Fatalf("c was never resolved")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear, got %d", c.Len())
	}
}
