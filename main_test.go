package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	dir string
	key string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	return &workspace{dir: dir, key: filepath.Join(dir, "key.key")}
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append(args, "--key", w.key, "--log-level", "error", "--log-output", "json")
	code := run(args, &stdout, &stderr)
	return code, stdout.String() + stderr.String()
}

func (w *workspace) write(t *testing.T, name string, data []uint8) string {
	t.Helper()
	path := w.path(name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func plaintext(n int) []uint8 {
	data := make([]uint8, n)
	for i := range data {
		data[i] = uint8(i)
	}
	return data
}

func TestRun_Keygen(t *testing.T) {
	w := newWorkspace(t)

	code, out := w.run(t, "keygen", "--lfsr")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "db6db451e79099")

	key, err := os.ReadFile(w.key)
	require.NoError(t, err)
	assert.Len(t, key, 7)

	code, out = w.run(t, "keygen", "--output", w.path("fresh.key"))
	require.Equal(t, 0, code, out)
	fresh, err := os.ReadFile(w.path("fresh.key"))
	require.NoError(t, err)
	assert.Len(t, fresh, 7)
}

func TestRun_EncryptDecrypt(t *testing.T) {
	modes := []string{"ecb", "cbc", "cfb", "ofb", "ctr"}

	for _, mode := range modes {
		t.Run(mode, func(t *testing.T) {
			w := newWorkspace(t)
			input := w.write(t, "input.txt", plaintext(100))
			enc := w.path("output.enc")
			dec := w.path("output.txt")

			code, out := w.run(t, "keygen")
			require.Equal(t, 0, code, out)

			code, out = w.run(t, "-e", "-m", mode, "--iv", "0123456789abcdef",
				"--input", input, "--output", enc)
			require.Equal(t, 0, code, out)
			assert.Contains(t, out, "Encryption completed")
			assert.Contains(t, out, "Size: 100 bytes")

			info, err := os.Stat(enc)
			require.NoError(t, err)
			assert.Equal(t, int64(104), info.Size())

			code, out = w.run(t, "-d", "-m", mode, "--iv", "0123456789abcdef",
				"--input", enc, "--output", dec, "--original", input)
			require.Equal(t, 0, code, out)
			assert.Contains(t, out, "Decryption completed")
			assert.Contains(t, out, "Decrypted data matches")

			got, err := os.ReadFile(dec)
			require.NoError(t, err)
			assert.Equal(t, plaintext(100), got)
		})
	}
}

func TestRun_WrongIVDoesNotMatch(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.txt", plaintext(40))
	enc := w.path("output.enc")

	code, out := w.run(t, "keygen", "--lfsr")
	require.Equal(t, 0, code, out)
	code, out = w.run(t, "-e", "-m", "cbc", "--input", input, "--output", enc)
	require.Equal(t, 0, code, out)

	code, out = w.run(t, "-d", "-m", "cbc", "--iv", "ffffffffffffffff",
		"--input", enc, "--output", w.path("output.txt"), "--original", input)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "does NOT match")
}

func TestRun_UsageErrors(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.txt", plaintext(16))
	code, out := w.run(t, "keygen")
	require.Equal(t, 0, code, out)

	tests := []struct {
		name string
		args []string
	}{
		{"neither direction", []string{"--input", input}},
		{"both directions", []string{"-e", "-d", "--input", input}},
		{"unknown mode", []string{"-e", "-m", "xts", "--input", input}},
		{"short iv", []string{"-e", "-m", "cbc", "--iv", "0011", "--input", input}},
		{"missing input", []string{"-e", "--input", w.path("missing.txt")}},
		{"bad limits", []string{"-e", "--input", input, "--warn-limit", "100", "--max-limit", "50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := w.run(t, tt.args...)
			assert.Equal(t, 1, code)
		})
	}
}

func TestRun_MissingKey(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.txt", plaintext(16))

	code, out := w.run(t, "-e", "--input", input, "--output", w.path("output.enc"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "key.key")
}

func TestRun_KeyExhausted(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.txt", plaintext(21000))
	enc := w.path("output.enc")
	code, out := w.run(t, "keygen")
	require.Equal(t, 0, code, out)

	code, out = w.run(t, "-e", "--input", input, "--output", enc)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "key usage limit exceeded")
	assert.NoFileExists(t, enc)

	code, out = w.run(t, "-e", "--input", input, "--output", enc, "--max-limit", "32768")
	assert.Equal(t, 0, code, out)
	assert.FileExists(t, enc)
}

func TestRun_MetricsFile(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.txt", plaintext(64))
	metricsFile := w.path("magma.prom")
	code, out := w.run(t, "keygen")
	require.Equal(t, 0, code, out)

	code, out = w.run(t, "-e", "--input", input, "--output", w.path("output.enc"),
		"--metrics-file", metricsFile)
	require.Equal(t, 0, code, out)

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `cipher_processed_bytes_total{op="encrypt"} 64`)
	assert.Contains(t, string(content), `cipher_blocks_total{op="encrypt"} 8`)
	assert.Contains(t, string(content), "key_usage_bytes")
}

func TestRun_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{
			"swap blocks",
			[]string{"--op", "swap-blocks", "--index", "1", "--other", "3"},
			"at byte 8 (block 1)",
		},
		{
			"delete block",
			[]string{"--op", "delete-block", "--index", "2"},
			"at byte 16 (block 2)",
		},
		{
			"insert block",
			[]string{"--op", "insert-block", "--index", "4", "--other", "0"},
			"at byte 32 (block 4)",
		},
		{
			"delete byte",
			[]string{"--op", "delete-byte", "--index", "5"},
			"at byte 0 (block 0)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkspace(t)
			input := w.write(t, "input.txt", plaintext(64))
			enc := w.path("output.enc")
			damaged := w.path("corrupted.enc")

			code, out := w.run(t, "keygen", "--lfsr")
			require.Equal(t, 0, code, out)
			code, out = w.run(t, "-e", "--input", input, "--output", enc)
			require.Equal(t, 0, code, out)

			args := append([]string{
				"corrupt",
				"--input", enc,
				"--output", damaged,
				"--decrypted", w.path("corrupted.txt"),
				"--original", input,
			}, tt.args...)
			code, out = w.run(t, args...)
			require.Equal(t, 0, code, out)
			assert.Contains(t, out, "Applied "+tt.args[1])
			assert.Contains(t, out, tt.wantOut)
			assert.FileExists(t, damaged)
		})
	}
}

func TestRun_CorruptOutOfRange(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.txt", plaintext(8))
	enc := w.path("output.enc")
	code, out := w.run(t, "keygen")
	require.Equal(t, 0, code, out)
	code, out = w.run(t, "-e", "--input", input, "--output", enc)
	require.Equal(t, 0, code, out)

	code, out = w.run(t, "corrupt", "--input", enc, "--output", w.path("corrupted.enc"),
		"--op", "swap-blocks", "--index", "0", "--other", "7")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "out of range")
}
