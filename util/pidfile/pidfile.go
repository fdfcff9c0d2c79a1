package pidfile

import (
	"os"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/natefinch/atomic"
)

// WritePidFile atomically replaces path with the current process id.
func WritePidFile(path string) error {
	pid := strconv.Itoa(os.Getpid())
	if err := atomic.WriteFile(path, strings.NewReader(pid+"\n")); err != nil {
		return merry.Wrap(err, merry.WithValue("pidfile", path))
	}
	return nil
}

// ReadPid returns the process id stored in path.
func ReadPid(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, merry.Wrap(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, merry.Wrap(err, merry.WithValue("pidfile", path))
	}
	return pid, nil
}
