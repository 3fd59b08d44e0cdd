package cache

import (
	"testing"
	"time"
)

func TestChartKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		key1 := ChartKey("lcz", []byte(`{"actual":[1,2]}`))
		key2 := ChartKey("lcz", []byte(`{"actual":[1,2]}`))
		if key1 != key2 {
			t.Fatalf("expected stable key, got %q vs %q", key1, key2)
		}
	})

	t.Run("payloadSensitive", func(t *testing.T) {
		key1 := ChartKey("lcz", []byte(`{"actual":[1,2]}`))
		key2 := ChartKey("lcz", []byte(`{"actual":[1,3]}`))
		if key1 == key2 {
			t.Fatalf("expected payload to change key, got %q twice", key1)
		}
	})

	t.Run("schemeSensitive", func(t *testing.T) {
		payload := []byte(`{"actual":[1,2]}`)
		if ChartKey("lcz", payload) == ChartKey("other", payload) {
			t.Fatal("expected scheme to change key")
		}
	})
}

func TestManagerRoundTrip(t *testing.T) {
	m, err := NewManager(Config{
		ChartCacheSizeMB: 8,
		ChartTTL:         time.Minute,
		QueryCacheSize:   16,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	key := ChartKey("lcz", []byte("payload"))
	if _, ok := m.GetChart(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := m.SetChart(key, []byte("png bytes")); err != nil {
		t.Fatalf("SetChart failed: %v", err)
	}
	data, ok := m.GetChart(key)
	if !ok || string(data) != "png bytes" {
		t.Fatalf("expected hit with stored bytes, got %q (ok=%v)", data, ok)
	}

	m.SetQuery(LegendKey("lcz"), []byte(`[]`))
	if data, ok := m.GetQuery(LegendKey("lcz")); !ok || string(data) != `[]` {
		t.Fatalf("expected query hit, got %q (ok=%v)", data, ok)
	}
}
