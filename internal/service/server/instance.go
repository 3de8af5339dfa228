package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another node process owns the sensor.
var ErrAlreadyRunning = errors.New("another thermal-node process is running")

// processLister returns the processes of the host; ps.Processes in production.
type processLister func() ([]ps.Process, error)

// ensureSingleInstance fails when a process other than self runs the same executable.
func ensureSingleInstance(list processLister, self int, executable string) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	name := executableName(executable)

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if !strings.EqualFold(executableName(process.Executable()), name) {
			continue
		}

		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
	}

	return nil
}

// currentExecutable returns the base name of the running binary.
func currentExecutable() string {
	path, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}

	return filepath.Base(path)
}

// executableName strips the directory and a Windows extension.
func executableName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".exe")
}
