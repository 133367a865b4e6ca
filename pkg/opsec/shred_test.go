package opsec

import "testing"

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestShred(t *testing.T) {
	t.Run("zeroes every byte", func(t *testing.T) {
		b := []byte("key material 0123456789abcdef")
		Shred(b)
		if !allZero(b) {
			t.Fatal("buffer not fully zeroed")
		}
	})

	t.Run("nil and empty are safe", func(t *testing.T) {
		Shred(nil)
		Shred([]byte{})
	})
}

func TestSecretBuffer(t *testing.T) {
	t.Run("bytes alias the backing buffer", func(t *testing.T) {
		raw := []byte("secret")
		sb := NewSecretBuffer(raw)
		if sb.Len() != len(raw) {
			t.Fatalf("Len = %d, want %d", sb.Len(), len(raw))
		}
		if &sb.Bytes()[0] != &raw[0] {
			t.Fatal("Bytes returned a copy")
		}
	})

	t.Run("close shreds and drops", func(t *testing.T) {
		raw := []byte("secret")
		sb := NewSecretBuffer(raw)
		if err := sb.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if !allZero(raw) {
			t.Fatal("backing buffer not shredded")
		}
		if sb.Bytes() != nil || sb.Len() != 0 {
			t.Fatal("buffer still reachable after Close")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		sb := NewSecretBuffer([]byte("secret"))
		if err := sb.Close(); err != nil {
			t.Fatalf("first Close: %v", err)
		}
		if err := sb.Close(); err != nil {
			t.Fatalf("second Close: %v", err)
		}
	})
}

func TestWithShredded(t *testing.T) {
	t.Run("shreds after fn returns", func(t *testing.T) {
		buf := []byte("scoped secret")
		var seen string
		WithShredded(buf, func(b []byte) {
			seen = string(b)
		})
		if seen != "scoped secret" {
			t.Fatalf("fn saw %q", seen)
		}
		if !allZero(buf) {
			t.Fatal("buffer not shredded after fn")
		}
	})

	t.Run("shreds even when fn panics", func(t *testing.T) {
		buf := []byte("panicking secret")
		func() {
			defer func() {
				if recover() == nil {
					t.Fatal("panic did not propagate")
				}
			}()
			WithShredded(buf, func([]byte) {
				panic("boom")
			})
		}()
		if !allZero(buf) {
			t.Fatal("buffer not shredded on panic path")
		}
	})
}
