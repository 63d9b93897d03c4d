package cache

import (
	"strings"
	"testing"
	"time"
)

type countingExtractor struct {
	calls int
}

func (e *countingExtractor) ExtractImports(content string) []string {
	e.calls++
	return []string{"TYPE " + strings.TrimSpace(content)}
}

func TestImportCache_GetPut(t *testing.T) {
	c := NewImportCache(10, time.Minute)

	if _, hit := c.Get("a.TcPOU", "x"); hit {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("a.TcPOU", "x", []string{"EXTENDS FB_Base"})
	got, hit := c.Get("a.TcPOU", "x")
	if !hit {
		t.Fatal("expected hit")
	}
	if len(got) != 1 || got[0] != "EXTENDS FB_Base" {
		t.Errorf("unexpected imports: %v", got)
	}

	if _, hit := c.Get("a.TcPOU", "changed"); hit {
		t.Error("expected miss after content change")
	}
	if c.Size() != 0 {
		t.Errorf("stale entry should be dropped, size = %d", c.Size())
	}
}

func TestImportCache_Eviction(t *testing.T) {
	c := NewImportCache(2, time.Minute)
	c.Put("a", "1", nil)
	c.Put("b", "2", nil)
	c.Get("a", "1")
	c.Put("c", "3", nil)

	if _, hit := c.Get("b", "2"); hit {
		t.Error("least recently used entry should be evicted")
	}
	if _, hit := c.Get("a", "1"); !hit {
		t.Error("recently used entry should survive")
	}
}

func TestImportCache_Expiry(t *testing.T) {
	c := NewImportCache(2, time.Nanosecond)
	c.Put("a", "1", []string{"TYPE X"})
	time.Sleep(time.Millisecond)
	if _, hit := c.Get("a", "1"); hit {
		t.Error("expected expired entry to miss")
	}
}

func TestCachedImports(t *testing.T) {
	ex := &countingExtractor{}
	c := NewImportCache(10, time.Minute)
	cached := NewCachedImports(ex, c)

	first := cached.Imports("a.TcPOU", "ST_A")
	second := cached.Imports("a.TcPOU", "ST_A")
	if ex.calls != 1 {
		t.Errorf("expected one extraction, got %d", ex.calls)
	}
	if first[0] != second[0] {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}

	c.Clear()
	cached.Imports("a.TcPOU", "ST_A")
	if ex.calls != 2 {
		t.Errorf("expected re-extraction after Clear, got %d calls", ex.calls)
	}
}
