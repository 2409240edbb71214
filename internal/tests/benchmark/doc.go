// Package benchmark provides performance benchmarks for lingvo-go.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run with specific list sizes:
//
//	go test -bench=BenchmarkRefetch -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
