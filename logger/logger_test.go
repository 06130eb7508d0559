package logger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/logger"
)

func TestLogger(t *testing.T) {
	logger.Clear()
	var sb strings.Builder

	logger.Write(&sb)
	require.Equal(t, "", sb.String())

	logger.Log("test", "this is a test")
	sb.Reset()
	logger.Write(&sb)
	require.Equal(t, "test: this is a test\n", sb.String())

	logger.Log("test2", "this is another test")
	sb.Reset()
	logger.Write(&sb)
	require.Equal(t, "test: this is a test\ntest2: this is another test\n", sb.String())

	sb.Reset()
	logger.Tail(&sb, 100)
	require.Equal(t, "test: this is a test\ntest2: this is another test\n", sb.String())

	sb.Reset()
	logger.Tail(&sb, 2)
	require.Equal(t, "test: this is a test\ntest2: this is another test\n", sb.String())

	sb.Reset()
	logger.Tail(&sb, 1)
	require.Equal(t, "test2: this is another test\n", sb.String())

	sb.Reset()
	logger.Tail(&sb, 0)
	require.Equal(t, "", sb.String())
}
