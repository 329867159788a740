package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("BENCHPLOT_TEST_STRING", "value")
	t.Setenv("BENCHPLOT_TEST_INT", "42")
	t.Setenv("BENCHPLOT_TEST_BAD_INT", "x")
	t.Setenv("BENCHPLOT_TEST_BOOL", "true")

	require.Equal(t, "value", StringEnv("BENCHPLOT_TEST_STRING", "def"))
	require.Equal(t, "def", StringEnv("BENCHPLOT_TEST_UNSET", "def"))
	require.Equal(t, 42, IntEnv("BENCHPLOT_TEST_INT", 1))
	require.Equal(t, 1, IntEnv("BENCHPLOT_TEST_BAD_INT", 1))
	require.True(t, BoolEnv("BENCHPLOT_TEST_BOOL", false))
	require.False(t, BoolEnv("BENCHPLOT_TEST_UNSET", false))
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("BENCHPLOT_TEST_SET", "process")
	t.Cleanup(func() { os.Unsetenv("BENCHPLOT_TEST_FROM_FILE") })
	path := writeFile(t, t.TempDir(), ".env", "BENCHPLOT_TEST_FROM_FILE=file", "BENCHPLOT_TEST_SET=file")

	require.Nil(t, LoadDotEnv(path, path+".missing"))
	require.Equal(t, "file", os.Getenv("BENCHPLOT_TEST_FROM_FILE"))
	require.Equal(t, "process", os.Getenv("BENCHPLOT_TEST_SET"))
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { AtomicLevel.SetLevel(zap.InfoLevel) })
	SetLogLevel("debug")
	require.Equal(t, zap.DebugLevel, AtomicLevel.Level())
	SetLogLevel("loud")
	require.Equal(t, zap.InfoLevel, AtomicLevel.Level())
}
