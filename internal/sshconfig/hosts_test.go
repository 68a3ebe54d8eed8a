package sshconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# personal machines
Host devbox staging
    HostName 10.0.0.5
    User deploy

host   prod  *.internal  web-?
  HostName prod.example.com

# Host commented-out
Match host foo
HOST devbox
Hostname not-a-host-line
`

func TestParseHosts(t *testing.T) {
	hosts, err := ParseHosts(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, []string{"devbox", "prod", "staging"}, hosts)
}

func TestReadHostsMissingFile(t *testing.T) {
	hosts, err := ReadHosts(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestReadHostsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := DefaultPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(sample), 0600))

	hosts, err := ReadHosts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"devbox", "prod", "staging"}, hosts)
}
