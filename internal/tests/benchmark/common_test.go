package benchmark

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/lingvo-go/internal/core/domain"
)

// ListSizes defines the result sizes for list benchmarks.
var ListSizes = []int{10, 100, 1000, 10000}

var benchUser = domain.Identity{ID: 7, Username: "bench", Email: "bench@example.com", IsAdmin: true}

// translationsJSON renders n translations the way the API sends them.
func translationsJSON(n int) []byte {
	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"id":              i + 1,
			"user":            benchUser,
			"source_lang":     "EN",
			"target_lang":     "UK",
			"source_text":     strings.Repeat("text ", 20),
			"translated_text": strings.Repeat("текст ", 20),
			"created_at":      created.Add(time.Duration(i) * time.Minute),
			"payment": map[string]any{
				"id": i + 1, "user": benchUser.ID, "amount": "10.00", "status": "success",
				"created_at": created,
			},
		}
	}
	data, _ := json.Marshal(items)
	return data
}

// newAPI serves a login endpoint and a list of n translations.
func newAPI(b *testing.B, n int) *httptest.Server {
	b.Helper()
	list := translationsJSON(n)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-bench", "user_id": benchUser.ID, "username": benchUser.Username,
			"email": benchUser.Email, "is_admin": true,
		})
	})
	mux.HandleFunc("/api/translations/my_translations/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(list)
	})
	ts := httptest.NewServer(mux)
	b.Cleanup(ts.Close)
	return ts
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithListSizes runs a benchmark function with various list sizes.
func runWithListSizes(b *testing.B, sizes []int, benchFn func(b *testing.B, size int)) {
	for _, size := range sizes {
		b.Run(fmt.Sprintf("items_%d", size), func(b *testing.B) {
			benchFn(b, size)
		})
	}
}

func sizeLabel(size int) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%dMB", size/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%dKB", size/1024)
	default:
		return fmt.Sprintf("%dB", size)
	}
}
