package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHledger writes an executable script standing in for hledger.
func fakeHledger(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "hledger")
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 'hledger 1.40'; exit 0; fi\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		timeout time.Duration
	}{
		{"default path", "hledger", 5 * time.Second},
		{"custom path", "/usr/local/bin/hledger", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.path, tt.timeout)
			require.NotNil(t, client)
			assert.Equal(t, tt.path, client.path)
			assert.Equal(t, tt.timeout, client.timeout)
		})
	}
}

func TestClient_Available(t *testing.T) {
	client := NewClient(fakeHledger(t, "exit 0"), time.Second)
	assert.True(t, client.Available())
	assert.Equal(t, "hledger 1.40", client.Version())

	missing := NewClient("/nonexistent/path/to/hledger", time.Second)
	assert.False(t, missing.Available())
	assert.Empty(t, missing.Version())
}

func TestClient_RunPassesFileAndArgs(t *testing.T) {
	client := NewClient(fakeHledger(t, `echo "$@"`), 5*time.Second)

	out, err := client.Run(context.Background(), "/ledger/main.journal", "bal", "Budget")
	require.NoError(t, err)
	assert.Equal(t, "-f /ledger/main.journal bal Budget\n", out)

	out, err = client.Run(context.Background(), "", "accounts")
	require.NoError(t, err)
	assert.Equal(t, "accounts\n", out)
}

func TestClient_Check(t *testing.T) {
	ok := NewClient(fakeHledger(t, `[ "$3" = "check" ] || exit 3`), 5*time.Second)
	assert.NoError(t, ok.Check(context.Background(), "/ledger/main.journal"))

	failing := NewClient(fakeHledger(t, `echo "could not balance this transaction" >&2; exit 1`), 5*time.Second)
	err := failing.Check(context.Background(), "/ledger/main.journal")
	var checkErr *CheckError
	require.ErrorAs(t, err, &checkErr)
	assert.Equal(t, "/ledger/main.journal", checkErr.File)
	assert.Equal(t, "could not balance this transaction", checkErr.Output)
	assert.Equal(t, "hledger check /ledger/main.journal: could not balance this transaction", err.Error())
}

func TestClient_Timeout(t *testing.T) {
	client := NewClient(fakeHledger(t, "sleep 5"), 50*time.Millisecond)

	_, err := client.Run(context.Background(), "", "check")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Cancelled(t *testing.T) {
	client := NewClient(fakeHledger(t, "sleep 5"), 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Run(ctx, "", "check")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Unavailable(t *testing.T) {
	client := NewClient("/nonexistent/path/to/hledger", time.Second)

	_, err := client.Run(context.Background(), "", "check")
	assert.ErrorIs(t, err, ErrUnavailable)
	err = client.Check(context.Background(), "x.journal")
	assert.ErrorIs(t, err, ErrUnavailable)
	var checkErr *CheckError
	assert.False(t, errors.As(err, &checkErr))
}
