package procname

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShort(t *testing.T) {
	cases := []struct {
		name  string
		image string
		want  string
	}{
		{"windows path", `C:\Program Files\Google\Chrome\Application\chrome.exe`, "chrome"},
		{"forward slashes", "C:/Windows/explorer.exe", "explorer"},
		{"bare image", "notepad.exe", "notepad"},
		{"upper case suffix", `C:\Tools\TOTALCMD.EXE`, "TOTALCMD"},
		{"no suffix", "/usr/bin/firefox", "firefox"},
		{"keeps other extensions", "setup.tmp", "setup.tmp"},
		{"empty", "", ""},
		{"whitespace", "  \n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Short(tc.image))
		})
	}
}

func TestResolverCachesSuccessfulLookups(t *testing.T) {
	calls := 0
	resolver, err := New(Options{
		Lookup: func(pid int32) (string, error) {
			calls++
			return `C:\Windows\System32\notepad.exe`, nil
		},
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, "notepad", resolver.Name(42))
	assert.Equal(t, "notepad", resolver.Name(42))
	assert.Equal(t, 1, calls)
}

func TestResolverRetriesFailedLookups(t *testing.T) {
	calls := 0
	resolver, err := New(Options{
		Lookup: func(pid int32) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("access denied")
			}
			return "chrome.exe", nil
		},
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, "", resolver.Name(7))
	assert.Equal(t, "chrome", resolver.Name(7))
	assert.Equal(t, 2, calls)
}

func TestResolverIgnoresInvalidPids(t *testing.T) {
	resolver, err := New(Options{
		Lookup: func(pid int32) (string, error) {
			t.Fatalf("lookup should not run for pid %d", pid)
			return "", nil
		},
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, "", resolver.Name(0))
	assert.Equal(t, "", resolver.Name(-1))
}

func TestResolverEvictsOldEntries(t *testing.T) {
	calls := map[int32]int{}
	resolver, err := New(Options{
		Lookup: func(pid int32) (string, error) {
			calls[pid]++
			return "svc.exe", nil
		},
		CacheSize: 2,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)

	resolver.Name(1)
	resolver.Name(2)
	resolver.Name(3) // evicts pid 1
	resolver.Name(1)

	assert.Equal(t, 2, calls[1])
	assert.Equal(t, 1, calls[2])
	assert.Equal(t, 1, calls[3])
}
