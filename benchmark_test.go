package gantry

import (
	"fmt"
	"testing"
)

func BenchmarkDefine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		_ = c.Define("logger", NewConsoleLogger)
	}
}

func BenchmarkResolve_Cached(b *testing.B) {
	c := New()
	_ = c.Define("logger", NewConsoleLogger)

	// Warm up cache
	_, _ = c.Resolve("logger")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Resolve("logger")
	}
}

func BenchmarkResolve_FreshBuild(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		_ = c.Define("logger", NewConsoleLogger)
		_, _ = c.Resolve("logger")
	}
}

func BenchmarkResolve_DependencyChain(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		_ = c.Define("logger", NewConsoleLogger)
		_ = c.Define("db", NewDatabase, Args(Value("dsn"), Ref("logger")))
		_ = c.Define("app", func(db *Database) *App {
			return &App{Log: db.Log}
		}, Args(Ref("db")))
		_, _ = c.Resolve("app")
	}
}

func BenchmarkResolve_Autowired(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := New()
		_ = c.Define("logger", NewConsoleLogger)
		_ = c.Define("app", NewApp)
		_, _ = c.Resolve("app")
	}
}

func BenchmarkInvoke(b *testing.B) {
	c := New()
	_ = c.Define("logger", NewConsoleLogger)
	_, _ = c.Resolve("logger")

	fn := func(log Logger) {}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Invoke(fn)
	}
}

func BenchmarkParseArg(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ParseArg("@logger")
		_ = ParseArg("@?tracer")
		_ = ParseArg("@!pool")
		_ = ParseArg("literal")
	}
}

func BenchmarkGraph_TopologicalSort(b *testing.B) {
	g := NewDependencyGraph()
	for i := 0; i < 50; i++ {
		var edges []Edge
		if i > 0 {
			edges = append(edges, Edge{Target: fmt.Sprintf("svc-%d", i-1)})
		}
		g.AddNode(fmt.Sprintf("svc-%d", i), edges)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.TopologicalSort()
	}
}
