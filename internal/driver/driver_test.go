package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nand2tetris.dev/jackc/internal/driver"
)

func writeJack(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunCompilesDiscoveredFiles(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "A.jack", `class A { function int f() { return 3; } }`)
	writeJack(t, dir, "B.jack", `class B { function int g() { return 4; } }`)

	d := driver.New(driver.Options{KeepGoing: true}, nil)
	failed, err := d.Run([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, failed)

	out, err := os.ReadFile(filepath.Join(dir, "A.vm"))
	require.NoError(t, err)
	assert.Equal(t, "function A.f 0\npush constant 3\nreturn\n", string(out))
}

func TestRunKeepGoingCompilesRemainingFilesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "Bad.jack", `class Bad { function int f( { return 3; } }`)
	writeJack(t, dir, "Good.jack", `class Good { function int g() { return 4; } }`)

	d := driver.New(driver.Options{KeepGoing: true}, nil)
	failed, err := d.Run([]string{dir})
	assert.Error(t, err)
	assert.Equal(t, 1, failed)

	_, statErr := os.Stat(filepath.Join(dir, "Good.vm"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dir, "Bad.vm"))
	assert.True(t, os.IsNotExist(statErr), "a failed compilation must not leave a .vm file behind")
}

func TestRunStopsAfterFirstFailureWithoutKeepGoing(t *testing.T) {
	dir := t.TempDir()
	writeJack(t, dir, "A_Bad.jack", `class A_Bad { function int f( { return 3; } }`)
	writeJack(t, dir, "Z_Good.jack", `class Z_Good { function int g() { return 4; } }`)

	d := driver.New(driver.Options{KeepGoing: false}, nil)
	failed, err := d.Run([]string{dir})
	assert.Error(t, err)
	assert.Equal(t, 1, failed)

	_, statErr := os.Stat(filepath.Join(dir, "Z_Good.vm"))
	assert.True(t, os.IsNotExist(statErr), "compilation should have stopped before reaching the second file")
}

func TestRunSingleFileInput(t *testing.T) {
	dir := t.TempDir()
	path := writeJack(t, dir, "Solo.jack", `class Solo { function int f() { return 1; } }`)

	d := driver.New(driver.Options{}, nil)
	failed, err := d.Run([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
}
