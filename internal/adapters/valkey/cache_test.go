package valkey

import "testing"

func TestCacheKeyPrefix(t *testing.T) {
	c := &Cache{prefix: "vc:"}
	if got := c.key("tours:id:t1"); got != "vc:tours:id:t1" {
		t.Fatalf("expected prefixed key, got %q", got)
	}

	bare := &Cache{}
	if got := bare.key("partners:v1:20"); got != "partners:v1:20" {
		t.Fatalf("expected unprefixed key, got %q", got)
	}
}
