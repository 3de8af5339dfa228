package server

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

var errTestProcfs = errors.New("procfs unavailable")

// process is a static ps.Process.
type process struct {
	pid  int
	name string
}

func (p process) Pid() int { return p.pid }

func (p process) PPid() int { return 1 }

func (p process) Executable() string { return p.name }

func listing(processes ...process) processLister {
	return func() ([]ps.Process, error) {
		result := make([]ps.Process, len(processes))
		for i, p := range processes {
			result[i] = p
		}

		return result, nil
	}
}

// TestEnsureSingleInstance ignores itself and other programs.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	err := ensureSingleInstance(listing(
		process{pid: 10, name: "thermal-node"},
		process{pid: 11, name: "thermal-probe"},
		process{pid: 12, name: "sshd"},
	), 10, "/usr/local/bin/thermal-node")
	require.NoError(t, err)

	err = ensureSingleInstance(listing(
		process{pid: 10, name: "thermal-node"},
		process{pid: 42, name: "THERMAL-NODE.exe"},
	), 10, `thermal-node.exe`)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.ErrorContains(t, err, "pid 42")

	err = ensureSingleInstance(func() ([]ps.Process, error) { return nil, errTestProcfs }, 10, "thermal-node")
	require.ErrorIs(t, err, errTestProcfs)
}

// TestExecutableName strips directories and the Windows extension.
func TestExecutableName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "thermal-node", executableName("/opt/sentinel/thermal-node"))
	require.Equal(t, "thermal-node", executableName("thermal-node.exe"))
	require.NotEmpty(t, currentExecutable())
}
