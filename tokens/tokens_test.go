package tokens

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andreyvit/formkit/logging"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func testCtx(t *testing.T) context.Context {
	return logging.With(context.Background(), logging.TestLogger(t))
}

func testStore(t *testing.T, s Store) {
	ctx := testCtx(t)
	data, err := s.Get(ctx, "missing")
	if err != nil || data != nil {
		t.Fatalf("** Get(missing) = %q, %v", data, err)
	}
	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("** Set: %v", err)
	}
	data, err = s.Get(ctx, "k")
	if err != nil || string(data) != "v" {
		t.Fatalf("** Get(k) = %q, %v", data, err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("** Delete: %v", err)
	}
	data, _ = s.Get(ctx, "k")
	if data != nil {
		t.Fatalf("** Get after Delete = %q", data)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	testStore(t, s)

	clock := &fakeClock{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.Now = clock.Now
	ctx := testCtx(t)
	s.Set(ctx, "short", []byte("x"), time.Second)
	clock.t = clock.t.Add(2 * time.Second)
	if data, _ := s.Get(ctx, "short"); data != nil {
		t.Errorf("** expired item returned: %q", data)
	}
	if s.Len() != 0 {
		t.Errorf("** expired item not purged")
	}
}

func TestBoltStore(t *testing.T) {
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("** OpenBoltStore: %v", err)
	}
	defer s.Close()
	testStore(t, s)

	clock := &fakeClock{time.Now()}
	s.Now = clock.Now
	ctx := testCtx(t)
	s.Set(ctx, "short", []byte("x"), time.Second)
	clock.t = clock.t.Add(time.Hour)
	if data, _ := s.Get(ctx, "short"); data != nil {
		t.Errorf("** expired item returned: %q", data)
	}
}

func TestRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   3,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.FlushDB(ctx)

	s, err := NewRedisStore(RedisConfig{Client: client})
	if err != nil {
		t.Fatalf("** NewRedisStore: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestKeeperCSRFIsStableUntilExpiry(t *testing.T) {
	clock := &fakeClock{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.Now = clock.Now
	k := NewKeeper(store, "sess1")
	k.Now = clock.Now
	ctx := testCtx(t)

	first, err := k.CSRF(ctx, time.Minute)
	if err != nil {
		t.Fatalf("** CSRF: %v", err)
	}
	second, _ := k.CSRF(ctx, time.Minute)
	if first.Value != second.Value {
		t.Errorf("** token changed within lifetime: %q != %q", first.Value, second.Value)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	third, _ := k.CSRF(ctx, time.Minute)
	if third.Value == first.Value {
		t.Errorf("** token not reissued after expiry")
	}
}

func TestKeeperSessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := testCtx(t)
	a, _ := NewKeeper(store, "a").CSRF(ctx, time.Minute)
	b, _ := NewKeeper(store, "b").CSRF(ctx, time.Minute)
	if a.Value == b.Value {
		t.Errorf("** sessions share a token")
	}
}

func TestKeeperCaptcha(t *testing.T) {
	k := NewKeeper(NewMemoryStore(), "s")
	ctx := testCtx(t)

	rec, err := k.Captcha(ctx, time.Minute, "3 + 4", "", false)
	if err != nil {
		t.Fatalf("** Captcha: %v", err)
	}
	if rec.Answer != "7" {
		t.Errorf("** answer = %q, wanted 7", rec.Answer)
	}
	again, _ := k.Captcha(ctx, time.Minute, "", "", false)
	if again.Value != "3 + 4" {
		t.Errorf("** live captcha replaced: %q", again.Value)
	}
	fresh, _ := k.Captcha(ctx, time.Minute, "What color is the sky?", "blue", true)
	if fresh.Answer != "blue" {
		t.Errorf("** refresh ignored custom answer: %q", fresh.Answer)
	}
	if _, err := k.Captcha(ctx, time.Minute, "What color?", "", true); err == nil {
		t.Errorf("** custom question without answer accepted")
	}
}

func TestEquations(t *testing.T) {
	tests := []struct {
		text   string
		answer int
	}{
		{"3 + 4", 7},
		{"10 - 3", 7},
		{"6 × 7", 42},
		{"8 / 2", 4},
		{"12÷4 =", 3},
	}
	for _, tt := range tests {
		eq, err := ParseEquation(tt.text)
		if err != nil {
			t.Errorf("** ParseEquation(%q): %v", tt.text, err)
			continue
		}
		if a := eq.Answer(); a != tt.answer {
			t.Errorf("** %q = %d, wanted %d", tt.text, a, tt.answer)
		} else {
			t.Logf("✓ %q = %d", tt.text, a)
		}
	}
	for _, bad := range []string{"", "1 +", "rm -rf /", "1 / 0", "2 ** 3"} {
		if _, err := ParseEquation(bad); err == nil {
			t.Errorf("** ParseEquation(%q) accepted", bad)
		}
	}
	for i := 0; i < 100; i++ {
		eq := RandomEquation()
		if eq.Answer() < 0 {
			t.Errorf("** negative answer for %v", eq)
		}
		back, err := ParseEquation(eq.String())
		if err != nil || back != eq {
			t.Errorf("** %v round-trip = %v, %v", eq, back, err)
		}
	}
}
