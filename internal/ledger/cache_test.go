package ledger

import (
	"sync"
	"testing"
)

const cacheCSV = header + "1;01/01/2024;Ingressos;Bilheteria;VIP Deutsch;1.000,00;Pago;entrada\n"

func TestCacheHit(t *testing.T) {
	c := NewCache()

	first, hit, err := c.Parse([]byte(cacheCSV), defaultOptions())
	if err != nil || hit {
		t.Fatalf("first parse: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.Parse([]byte(cacheCSV), defaultOptions())
	if err != nil || !hit {
		t.Fatalf("second parse: hit=%v err=%v", hit, err)
	}
	if first != second {
		t.Error("cache returned a different ledger for identical content")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestCacheKeyIncludesOptions(t *testing.T) {
	c := NewCache()
	opts := defaultOptions()
	if _, _, err := c.Parse([]byte(cacheCSV), opts); err != nil {
		t.Fatal(err)
	}

	opts.Settings.Delimiter = ";"
	if _, hit, err := c.Parse([]byte(cacheCSV), opts); err != nil || hit {
		t.Fatalf("changed options should miss: hit=%v err=%v", hit, err)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestCacheSkipsFailures(t *testing.T) {
	c := NewCache()
	if _, _, err := c.Parse([]byte("a;b\n1;2\n"), defaultOptions()); err == nil {
		t.Fatal("expected schema error")
	}
	if c.Len() != 0 {
		t.Errorf("failed parse was cached")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	results := make([]*Ledger, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, _, err := c.Parse([]byte(cacheCSV), defaultOptions())
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = l
		}(i)
	}
	wg.Wait()

	for _, l := range results[1:] {
		if l != results[0] {
			t.Fatal("concurrent parses returned different ledgers")
		}
	}
}

func TestContentHash(t *testing.T) {
	// SHA-256 of the empty string.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := contentHash(nil); got != empty {
		t.Errorf("contentHash(nil) = %s", got)
	}
}
