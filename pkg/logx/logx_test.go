package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("test", LevelWarn, &buf)

	l.Info("should not appear")
	l.Debug("should not appear either")
	l.Warn("should appear", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "key=value")
}

func TestNoOpDiscardsEverything(t *testing.T) {
	l := NoOp()
	l.Info("anything")
	l.Error("anything else")
}

func TestOrNoOpFallsBackOnNil(t *testing.T) {
	var l Logger
	resolved := OrNoOp(l)
	assert.Equal(t, NoOp(), resolved)

	var buf bytes.Buffer
	std := NewWithWriter("p", LevelInfo, &buf)
	assert.Equal(t, Logger(std), OrNoOp(std))
}

func TestFieldsWithOddCount(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("p", LevelDebug, &buf)
	l.Debug("msg", "orphanKey")
	assert.True(t, strings.Contains(buf.String(), "orphanKey"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("Warn"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
