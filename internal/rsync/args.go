// Package rsync builds rsync invocations and interprets their output.
package rsync

import (
	"strings"
)

const (
	DefaultRsyncBin       = "rsync"
	DefaultSSHBin         = "ssh"
	DefaultControlPersist = "60s"
	DefaultControlPath    = "~/.ssh/cm-%r@%h:%p"

	// DryRunFormat emits change code, path and size per item.
	DryRunFormat = "%i|%n|%l"
	// RealRunFormat emits only the transferred path.
	RealRunFormat = "%n"
)

// DefaultExcludes are never transferred in either direction.
var DefaultExcludes = []string{".git/", "node_modules/", "target/", ".DS_Store"}

// Options carries the user-configurable parts of an invocation.
type Options struct {
	SSHBin         string
	ControlPersist string
	ControlPath    string
	ExtraExcludes  []string
	NoPerms        bool
}

// SSHProgram is the ssh binary used for the transport and the remote probes.
func (o Options) SSHProgram() string {
	if o.SSHBin == "" {
		return DefaultSSHBin
	}
	return o.SSHBin
}

// SSHOptions returns the connection-reuse options shared by rsync's transport
// and the standalone ssh probes, so all of them ride on one master connection.
func SSHOptions(o Options) []string {
	persist := o.ControlPersist
	if persist == "" {
		persist = DefaultControlPersist
	}
	path := o.ControlPath
	if path == "" {
		path = DefaultControlPath
	}
	return []string{
		"-o", "ControlMaster=auto",
		"-o", "ControlPersist=" + persist,
		"-o", "ControlPath=" + path,
	}
}

// SSHCommand returns the full argument list for running command on host.
func SSHCommand(o Options, host, command string) []string {
	args := SSHOptions(o)
	return append(args, host, command)
}

// BuildArgs assembles rsync arguments; source and destination are appended by
// the caller.
func BuildArgs(o Options, dryRun bool) []string {
	list := []string{"-avz"}
	if !dryRun {
		list = append(list, "-P", "--partial", "--inplace", "--info=progress2")
	}
	list = append(list, "-e", o.SSHProgram()+" "+strings.Join(SSHOptions(o), " "))
	list = append(list, "--stats")
	if !dryRun {
		list = append(list, "--out-format="+RealRunFormat)
	}
	for _, ex := range DefaultExcludes {
		list = append(list, "--exclude="+ex)
	}
	for _, ex := range o.ExtraExcludes {
		if strings.TrimSpace(ex) == "" {
			continue
		}
		list = append(list, "--exclude="+ex)
	}
	if o.NoPerms {
		list = append(list, "--no-perms")
	}
	if dryRun {
		list = append(list, "--dry-run", "--itemize-changes", "--out-format="+DryRunFormat)
	}
	return list
}

// Endpoints returns the (source, destination) pair. Directories get a
// trailing slash on both sides so rsync copies their contents rather than
// nesting the directory inside the target.
func Endpoints(host, localPath, remotePath string, isFile, pulling bool) (string, string) {
	local, remote := localPath, remotePath
	if !isFile {
		local += "/"
		remote += "/"
	}
	remote = host + ":" + remote
	if pulling {
		return remote, local
	}
	return local, remote
}
