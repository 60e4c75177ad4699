// SPDX-License-Identifier: MPL-2.0

package execx

import (
	"context"
	"testing"
)

func requireSh(t *testing.T) {
	t.Helper()
	if !LookPath("sh") {
		t.Skip("sh not available")
	}
}

func TestOSRunner_CapturesOutput(t *testing.T) {
	t.Parallel()
	requireSh(t)

	out, err := OSRunner{}.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "printf out; printf err >&2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Stdout != "out" || out.Stderr != "err" || out.ExitCode != 0 {
		t.Errorf("output = %+v", out)
	}
}

func TestOSRunner_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()
	requireSh(t)

	out, err := OSRunner{}.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("non-zero exit reported as error: %v", err)
	}
	if out.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", out.ExitCode)
	}
}

func TestOSRunner_Stdin(t *testing.T) {
	t.Parallel()
	requireSh(t)

	out, err := OSRunner{}.Run(context.Background(), Request{
		Name:  "sh",
		Args:  []string{"-c", "cat"},
		Stdin: "piped input",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Stdout != "piped input" {
		t.Errorf("Stdout = %q", out.Stdout)
	}
}

func TestOSRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := OSRunner{}.Run(context.Background(), Request{Name: "definitely-not-a-real-tool-xyz"})
	if err == nil {
		t.Fatal("missing binary did not error")
	}
}

func TestLookPath(t *testing.T) {
	t.Parallel()

	if LookPath("definitely-not-a-real-tool-xyz") {
		t.Error("LookPath found a nonsense binary")
	}
}
