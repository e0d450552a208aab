package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetVersionOverridesReportedVersion(t *testing.T) {
	t.Cleanup(func() { version = "dev" })

	SetVersion("1.4.2")
	require.Equal(t, "1.4.2", Version())
}

func TestSetVersionIgnoresEmptyValue(t *testing.T) {
	t.Cleanup(func() { version = "dev" })

	SetVersion("1.4.2")
	SetVersion("")
	require.Equal(t, "1.4.2", Version())
}
