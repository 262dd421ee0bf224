package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/repairlens/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{
			name:  "store and retrieve value",
			key:   "parts_pricing:2021 honda civic brake pads",
			value: []byte(`{"median":89.99}`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store and retrieve another namespace",
			key:   "vehicle_decode:1HGBH41JXMN109186",
			value: []byte(`{"year":1991,"make":"Honda"}`),
			ttl:   1 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %s, want %s", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	key := "expires-soon"
	if err := cache.Set(ctx, key, []byte("value"), 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err := cache.Get(ctx, key)
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiry error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_LazyEvictionOnWrite(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	// Fill one shard with entries that expire immediately; the keys share a
	// prefix but hash to various shards, so count via Size.
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("stale-%d", i)
		if err := cache.Set(ctx, key, []byte("v"), 1*time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	time.Sleep(10 * time.Millisecond)

	// Writing into every shard reclaims the expired entries without the
	// background sweep having run.
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("fresh-%d", i)
		if err := cache.Set(ctx, key, []byte("v"), 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 50 {
		t.Errorf("Size() = %d, want 50 (stale entries evicted on write)", size)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		cache.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v"), 1*time.Minute)
	}
	if cache.Size() != 20 {
		t.Fatalf("Size() = %d, want 20", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j)
				cache.Set(ctx, key, []byte("value"), 1*time.Minute)
				cache.Get(ctx, key)
				if j%10 == 0 {
					cache.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryCache_GetAfterPutRoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	value := []byte(`{"minutesPoint":45,"confidence":48}`)
	if err := cache.Set(ctx, "labor_estimates:brake pads", value, 1*time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "labor_estimates:brake pads")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Get() = %s, want stored value unchanged", got)
	}
}
