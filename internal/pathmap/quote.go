package pathmap

import "strings"

// ShellQuote wraps s in single quotes for a POSIX shell. Embedded single
// quotes close the quote, emit an escaped quote and reopen.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

// RemoteShellPath quotes a remote path for use inside a command run by the
// remote shell. Home-relative paths keep $HOME expandable, so they are double
// quoted with the remainder escaped; everything else is single quoted.
func RemoteShellPath(p string) string {
	if p == RemoteHome {
		return `"$HOME"`
	}
	if rest, ok := strings.CutPrefix(p, RemoteHome+"/"); ok {
		return `"$HOME/` + doubleQuoteEscaper.Replace(rest) + `"`
	}
	return ShellQuote(p)
}
