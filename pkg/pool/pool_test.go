package pool

import (
	"sync"
	"testing"

	"github.com/corpusql/annisquery/pkg/graph"
)

// =============================================================================
// Configuration Tests
// =============================================================================

func TestConfigure(t *testing.T) {
	// Save original config
	origConfig := globalConfig
	defer func() {
		Configure(origConfig)
	}()

	t.Run("enable pooling", func(t *testing.T) {
		Configure(PoolConfig{Enabled: true, MaxSize: 500})

		if !IsEnabled() {
			t.Error("IsEnabled() = false, want true")
		}
		if globalConfig.MaxSize != 500 {
			t.Errorf("MaxSize = %d, want 500", globalConfig.MaxSize)
		}
	})

	t.Run("disable pooling", func(t *testing.T) {
		Configure(PoolConfig{Enabled: false, MaxSize: 1000})

		if IsEnabled() {
			t.Error("IsEnabled() = true, want false")
		}
	})
}

// =============================================================================
// Tuple Pool Tests
// =============================================================================

func TestTuplePool(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	t.Run("get returns empty tuple", func(t *testing.T) {
		tup := GetTuple()
		if len(tup) != 0 {
			t.Errorf("len = %d, want 0", len(tup))
		}
		if cap(tup) == 0 {
			t.Error("cap should be > 0 (pre-allocated)")
		}
		PutTuple(tup)
	})

	t.Run("put and reuse", func(t *testing.T) {
		tup := GetTuple()
		tup = append(tup, graph.Match{Node: 1})
		PutTuple(tup)

		tup2 := GetTuple()
		if len(tup2) != 0 {
			t.Errorf("reused tuple len = %d, want 0", len(tup2))
		}
		PutTuple(tup2)
	})

	t.Run("oversized tuples not pooled", func(t *testing.T) {
		Configure(PoolConfig{Enabled: true, MaxSize: 10})

		tup := make(graph.Tuple, 0, 100)
		PutTuple(tup) // Should not panic, just not pool it

		Configure(PoolConfig{Enabled: true, MaxSize: 1000})
	})

	t.Run("disabled pooling creates new tuples", func(t *testing.T) {
		Configure(PoolConfig{Enabled: false, MaxSize: 1000})
		defer Configure(PoolConfig{Enabled: true, MaxSize: 1000})

		tup := GetTuple()
		if tup == nil {
			t.Error("GetTuple returned nil when pooling disabled")
		}
		PutTuple(tup) // Should not panic
	})
}

// =============================================================================
// Node ID Slice Pool Tests
// =============================================================================

func TestNodeIDSlicePool(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	t.Run("get returns empty slice", func(t *testing.T) {
		nodes := GetNodeIDSlice()
		if len(nodes) != 0 {
			t.Errorf("len = %d, want 0", len(nodes))
		}
		PutNodeIDSlice(nodes)
	})

	t.Run("put and reuse", func(t *testing.T) {
		nodes := GetNodeIDSlice()
		nodes = append(nodes, graph.NodeID(7))
		PutNodeIDSlice(nodes)

		nodes2 := GetNodeIDSlice()
		if len(nodes2) != 0 {
			t.Errorf("reused slice len = %d, want 0", len(nodes2))
		}
		PutNodeIDSlice(nodes2)
	})
}

// =============================================================================
// String Builder Pool Tests
// =============================================================================

func TestStringBuilderPool(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	t.Run("basic operations", func(t *testing.T) {
		b := GetStringBuilder()
		if b.Len() != 0 {
			t.Errorf("Len() = %d, want 0", b.Len())
		}

		b.WriteString("hello")
		b.WriteByte(' ')
		b.WriteString("world")

		if b.String() != "hello world" {
			t.Errorf("String() = %q, want %q", b.String(), "hello world")
		}
		if b.Len() != 11 {
			t.Errorf("Len() = %d, want 11", b.Len())
		}

		PutStringBuilder(b)
	})

	t.Run("reset on reuse", func(t *testing.T) {
		b := GetStringBuilder()
		b.WriteString("test")
		PutStringBuilder(b)

		b2 := GetStringBuilder()
		if b2.Len() != 0 {
			t.Errorf("reused builder Len() = %d, want 0", b2.Len())
		}
		PutStringBuilder(b2)
	})

	t.Run("nil put does not panic", func(t *testing.T) {
		PutStringBuilder(nil) // Should not panic
	})

	t.Run("oversized buffer not pooled", func(t *testing.T) {
		b := GetStringBuilder()
		// Write > 64KB to exceed pool limit
		for i := 0; i < 70000; i++ {
			b.WriteByte('x')
		}
		PutStringBuilder(b) // Should not panic, just not pool it
	})
}

// =============================================================================
// Byte Buffer Pool Tests
// =============================================================================

func TestByteBufferPool(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	t.Run("get returns empty buffer", func(t *testing.T) {
		buf := GetByteBuffer()
		if len(buf) != 0 {
			t.Errorf("len = %d, want 0", len(buf))
		}
		if cap(buf) == 0 {
			t.Error("cap should be > 0")
		}
		PutByteBuffer(buf)
	})

	t.Run("reuse", func(t *testing.T) {
		buf := GetByteBuffer()
		buf = append(buf, []byte("test data")...)
		PutByteBuffer(buf)

		buf2 := GetByteBuffer()
		if len(buf2) != 0 {
			t.Errorf("reused buffer len = %d, want 0", len(buf2))
		}
		PutByteBuffer(buf2)
	})
}

// =============================================================================
// Concurrent Access Tests
// =============================================================================

func TestConcurrentPoolAccess(t *testing.T) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	const goroutines = 100
	const iterations = 100

	t.Run("tuple pool concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(goroutines)

		for i := 0; i < goroutines; i++ {
			go func(id int) {
				defer wg.Done()
				for j := 0; j < iterations; j++ {
					tup := GetTuple()
					tup = append(tup, graph.Match{Node: graph.NodeID(id)})
					PutTuple(tup)
				}
			}(i)
		}

		wg.Wait()
	})

	t.Run("string builder pool concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(goroutines)

		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < iterations; j++ {
					b := GetStringBuilder()
					b.WriteString("test")
					_ = b.String()
					PutStringBuilder(b)
				}
			}()
		}

		wg.Wait()
	})
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkTuplePool(b *testing.B) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	b.Run("pooled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tup := GetTuple()
			tup = append(tup, graph.Match{Node: 1})
			PutTuple(tup)
		}
	})

	b.Run("unpooled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tup := make(graph.Tuple, 0, 8)
			tup = append(tup, graph.Match{Node: 1})
			_ = tup
		}
	})
}

func BenchmarkStringBuilderPool(b *testing.B) {
	Configure(PoolConfig{Enabled: true, MaxSize: 1000})

	b.Run("pooled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			sb := GetStringBuilder()
			sb.WriteString("hello world")
			_ = sb.String()
			PutStringBuilder(sb)
		}
	})

	b.Run("unpooled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := make([]byte, 0, 256)
			buf = append(buf, "hello world"...)
			_ = string(buf)
		}
	})
}
