package benchmark

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/yndnr/lingvo-go/internal/storage"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

// BenchmarkSealer measures credential sealing at several payload sizes.
func BenchmarkSealer(b *testing.B) {
	key := make([]byte, 32)
	rand.Read(key)
	sealer, err := storage.NewSealer(key)
	if err != nil {
		b.Fatalf("NewSealer() error = %v", err)
	}
	aad := []byte("credential")

	for _, size := range []int{40, 256, 1024, 4096} {
		plaintext := make([]byte, size)
		rand.Read(plaintext)

		b.Run("seal_"+sizeLabel(size), func(b *testing.B) {
			b.SetBytes(int64(size))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := sealer.Seal(plaintext, aad); err != nil {
					b.Fatal(err)
				}
			}
		})

		sealed, _ := sealer.Seal(plaintext, aad)
		b.Run("open_"+sizeLabel(size), func(b *testing.B) {
			b.SetBytes(int64(size))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := sealer.Open(sealed, aad); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCredentialStore compares the in-memory and badger stores.
func BenchmarkCredentialStore(b *testing.B) {
	stores := map[string]func(b *testing.B) storage.CredentialStore{
		"memory": func(b *testing.B) storage.CredentialStore {
			return storage.NewMemoryStore(storage.DefaultTTL, clockwork.NewRealClock())
		},
		"badger": func(b *testing.B) storage.CredentialStore {
			cfg := storage.DefaultConfig(b.TempDir())
			cfg.Badger.SyncWrites = false
			s, err := storage.OpenBadger(cfg, storage.WithLogger(logger.Discard()))
			if err != nil {
				b.Fatalf("OpenBadger() error = %v", err)
			}
			return s
		},
	}

	for name, open := range stores {
		b.Run(name+"/save", func(b *testing.B) {
			ctx := context.Background()
			s := open(b)
			defer s.Close()

			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Save(ctx, "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run(name+"/load", func(b *testing.B) {
			ctx := context.Background()
			s := open(b)
			defer s.Close()
			if _, err := s.Save(ctx, "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"); err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Load(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
