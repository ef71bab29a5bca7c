// Package pool provides object pooling for annisquery to reduce allocations
// on the join hot path.
//
// Object pooling reuses allocated objects instead of creating new ones,
// reducing GC pressure and improving throughput for high-frequency operations.
//
// Pooled objects:
// - Tuples ([]graph.Match), the join iterators' per-step result vector,
//   returned by the driver once a caller releases them
// - Node id slices (no caller in the module)
// - String builders, used by plan debug-string rendering
// - Byte buffers (no caller in the module)
//
// Usage:
//
//	// Get a tuple from pool
//	t := pool.GetTuple()
//	defer pool.PutTuple(t)
//
//	// Use the tuple...
//	t = append(t, newMatch)
package pool

import (
	"sync"

	"github.com/corpusql/annisquery/pkg/graph"
)

// PoolConfig configures object pooling behavior.
type PoolConfig struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxSize is the largest capacity a Tuple or node id slice may have
	// and still be returned to its pool
	MaxSize int
}

var globalConfig = PoolConfig{
	Enabled: true,
	MaxSize: 1000,
}

// Configure sets global pool configuration.
// Should be called early during initialization.
func Configure(config PoolConfig) {
	globalConfig = config

	// Reinitialize pools to ensure New functions are set correctly
	initPools()
}

// initPools reinitializes all pools with their New functions.
func initPools() {
	tuplePool = sync.Pool{
		New: func() any {
			return make(graph.Tuple, 0, 8)
		},
	}
	nodeIDSlicePool = sync.Pool{
		New: func() any {
			return make([]graph.NodeID, 0, 64)
		},
	}
	stringBuilderPool = sync.Pool{
		New: func() any {
			return &PooledStringBuilder{buf: make([]byte, 0, 256)}
		},
	}
	byteBufferPool = sync.Pool{
		New: func() any {
			return make([]byte, 0, 1024)
		},
	}
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	return globalConfig.Enabled
}

// =============================================================================
// Tuple Pool (for join-step results)
// =============================================================================

var tuplePool = sync.Pool{
	New: func() any {
		return make(graph.Tuple, 0, 8)
	},
}

// GetTuple returns a Tuple from the pool.
// The returned slice has length 0 but may have capacity.
// Call PutTuple when done.
func GetTuple() graph.Tuple {
	if !globalConfig.Enabled {
		return make(graph.Tuple, 0, 8)
	}
	return tuplePool.Get().(graph.Tuple)[:0]
}

// PutTuple returns a Tuple to the pool.
func PutTuple(t graph.Tuple) {
	if !globalConfig.Enabled {
		return
	}
	if cap(t) > globalConfig.MaxSize {
		return
	}
	tuplePool.Put(t[:0])
}

// =============================================================================
// Node ID Slice Pool
// =============================================================================

var nodeIDSlicePool = sync.Pool{
	New: func() any {
		return make([]graph.NodeID, 0, 64)
	},
}

// GetNodeIDSlice returns a []graph.NodeID from the pool.
func GetNodeIDSlice() []graph.NodeID {
	if !globalConfig.Enabled {
		return make([]graph.NodeID, 0, 64)
	}
	return nodeIDSlicePool.Get().([]graph.NodeID)[:0]
}

// PutNodeIDSlice returns a []graph.NodeID to the pool.
func PutNodeIDSlice(s []graph.NodeID) {
	if !globalConfig.Enabled {
		return
	}
	if cap(s) > globalConfig.MaxSize {
		return
	}
	nodeIDSlicePool.Put(s[:0])
}

// =============================================================================
// String Builder Pool
// =============================================================================

var stringBuilderPool = sync.Pool{
	New: func() any {
		b := &PooledStringBuilder{
			buf: make([]byte, 0, 256),
		}
		return b
	},
}

// PooledStringBuilder is a poolable string builder.
type PooledStringBuilder struct {
	buf []byte
}

// WriteString appends a string to the builder.
func (b *PooledStringBuilder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a byte to the builder.
func (b *PooledStringBuilder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// String returns the built string.
func (b *PooledStringBuilder) String() string {
	return string(b.buf)
}

// Len returns current length.
func (b *PooledStringBuilder) Len() int {
	return len(b.buf)
}

// Reset clears the builder for reuse.
func (b *PooledStringBuilder) Reset() {
	b.buf = b.buf[:0]
}

// GetStringBuilder returns a string builder from the pool.
func GetStringBuilder() *PooledStringBuilder {
	if !globalConfig.Enabled {
		return &PooledStringBuilder{buf: make([]byte, 0, 256)}
	}
	b := stringBuilderPool.Get().(*PooledStringBuilder)
	b.Reset()
	return b
}

// PutStringBuilder returns a string builder to the pool.
func PutStringBuilder(b *PooledStringBuilder) {
	if !globalConfig.Enabled || b == nil {
		return
	}
	if cap(b.buf) > 64*1024 { // Don't pool huge buffers
		return
	}
	b.Reset()
	stringBuilderPool.Put(b)
}

// =============================================================================
// Byte Buffer Pool
// =============================================================================

var byteBufferPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 1024)
	},
}

// GetByteBuffer returns a byte buffer from the pool.
func GetByteBuffer() []byte {
	if !globalConfig.Enabled {
		return make([]byte, 0, 1024)
	}
	return byteBufferPool.Get().([]byte)[:0]
}

// PutByteBuffer returns a byte buffer to the pool.
func PutByteBuffer(buf []byte) {
	if !globalConfig.Enabled {
		return
	}
	if cap(buf) > 1024*1024 { // Don't pool huge buffers (>1MB)
		return
	}
	byteBufferPool.Put(buf[:0])
}
