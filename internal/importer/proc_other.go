//go:build !unix

package importer

import "os/exec"

// killProcessGroup keeps exec's default cancellation, which kills only the
// direct child.
func killProcessGroup(cmd *exec.Cmd) {}
