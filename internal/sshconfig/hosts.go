// Package sshconfig lists the host aliases declared in an OpenSSH client
// configuration file.
package sshconfig

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultPath returns ~/.ssh/config for the given home directory.
func DefaultPath(home string) string {
	return filepath.Join(home, ".ssh", "config")
}

// ReadHosts reads the aliases from the file at path. A missing file yields an
// empty list.
func ReadHosts(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	hosts, err := ParseHosts(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hosts, nil
}

// ParseHosts returns the sorted, de-duplicated aliases of every "Host" line.
// Patterns containing '*' or '?' are skipped since they cannot be dialed.
func ParseHosts(r io.Reader) ([]string, error) {
	var hosts []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if !strings.EqualFold(fields[0], "Host") {
			continue
		}
		for _, h := range fields[1:] {
			if strings.ContainsAny(h, "*?") {
				continue
			}
			hosts = append(hosts, h)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	slices.Sort(hosts)
	return slices.Compact(hosts), nil
}
