//go:build !unix

package sandbox

import "os/exec"

// killProcessGroupOnCancel keeps the exec default of killing only the child
func killProcessGroupOnCancel(*exec.Cmd) {}

// killProcessGroup has no group to kill outside unix
func killProcessGroup(*exec.Cmd) error { return nil }
