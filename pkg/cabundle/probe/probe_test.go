package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocateIn(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.crt")
	require.Nil(t, os.WriteFile(empty, nil, 0644))
	bundle := filepath.Join(dir, "ca-bundle.crt")
	require.Nil(t, os.WriteFile(bundle, []byte("-----BEGIN CERTIFICATE-----\n"), 0644))
	other := filepath.Join(dir, "other.pem")
	require.Nil(t, os.WriteFile(other, []byte("content"), 0644))

	// first existing non-empty path wins
	got := LocateIn([]string{filepath.Join(dir, "missing.crt"), empty, bundle, other})
	require.Equal(t, bundle, got)

	require.Equal(t, "", LocateIn([]string{filepath.Join(dir, "missing.crt"), empty}))
}
