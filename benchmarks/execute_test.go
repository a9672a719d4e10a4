package benchmarks

import (
	"context"
	"testing"
)

// BenchmarkCompile_Chain_10 compiles a 10-node chain.
func BenchmarkCompile_Chain_10(b *testing.B) {
	benchmarkCompile(b, 10)
}

// BenchmarkCompile_Chain_100 compiles a 100-node chain.
func BenchmarkCompile_Chain_100(b *testing.B) {
	benchmarkCompile(b, 100)
}

func benchmarkCompile(b *testing.B, n int) {
	c := buildChain(n)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Compile(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRun_Chain_10 runs a compiled 10-node chain.
func BenchmarkRun_Chain_10(b *testing.B) {
	benchmarkRun(b, 10)
}

// BenchmarkRun_Chain_100 runs a compiled 100-node chain.
func BenchmarkRun_Chain_100(b *testing.B) {
	benchmarkRun(b, 100)
}

func benchmarkRun(b *testing.B, n int) {
	c := buildChain(n)
	ctx := context.Background()
	if err := c.Compile(ctx); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Run(ctx)
	}
}
