// SPDX-License-Identifier: MPL-2.0

package ghcli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emupack-cli/internal/execx"
)

// fakeRunner records requests and serves canned outputs keyed by joined argv.
type fakeRunner struct {
	outputs  map[string]execx.Output
	fallback execx.Output
	requests []execx.Request
}

func (f *fakeRunner) Run(_ context.Context, req execx.Request) (execx.Output, error) {
	f.requests = append(f.requests, req)
	key := req.Name + " " + strings.Join(req.Args, " ")
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return f.fallback, nil
}

func (f *fakeRunner) lastArgs(t *testing.T) []string {
	t.Helper()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1].Args
}

func TestGH_ReleaseCreateWithNotes(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	gh := New("/repo", WithRunner(runner))

	err := gh.ReleaseCreate(context.Background(), "v1.2.0", "1.2.0", "release notes",
		[]string{"pack-1.2.0.json", "pack-ds-1.2.0.json"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"release", "create", "v1.2.0",
		"--notes", "release notes",
		"--title", "1.2.0",
		"pack-1.2.0.json", "pack-ds-1.2.0.json",
	}, runner.lastArgs(t))
}

func TestGH_ReleaseCreateGeneratesNotesWhenEmpty(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	gh := New("/repo", WithRunner(runner))

	err := gh.ReleaseCreate(context.Background(), "v1.2.0", "1.2.0", "", nil)
	require.NoError(t, err)

	args := runner.lastArgs(t)
	assert.Contains(t, args, "--generate-notes")
	assert.NotContains(t, args, "--notes")
}

func TestGH_LabelEnsure(t *testing.T) {
	t.Parallel()

	t.Run("creates", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{}
		gh := New("/repo", WithRunner(runner))

		err := gh.LabelEnsure(context.Background(), "automated-test-failure", "d93f0b",
			"Automatically created when a scheduled app test fails")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"label", "create", "automated-test-failure",
			"--color", "d93f0b",
			"--description", "Automatically created when a scheduled app test fails",
		}, runner.lastArgs(t))
	})

	t.Run("tolerates existing label", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{fallback: execx.Output{
			ExitCode: 1,
			Stderr:   "label with name \"automated-test-failure\" already exists",
		}}
		gh := New("/repo", WithRunner(runner))

		err := gh.LabelEnsure(context.Background(), "automated-test-failure", "d93f0b", "")
		require.NoError(t, err)
	})

	t.Run("propagates other failures", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{fallback: execx.Output{ExitCode: 1, Stderr: "HTTP 403"}}
		gh := New("/repo", WithRunner(runner))

		err := gh.LabelEnsure(context.Background(), "automated-test-failure", "d93f0b", "")
		require.Error(t, err)
	})
}

func TestGH_IssueList(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fallback: execx.Output{
		Stdout: `[{"number":12,"title":"[Automated Test Failure] Dolphin","state":"OPEN"}]`,
	}}
	gh := New("/repo", WithRunner(runner))

	issues, err := gh.IssueList(context.Background(), IssueFilter{
		Label:  "automated-test-failure",
		State:  "open",
		Search: "Dolphin in:title",
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 12, issues[0].Number)
	assert.Equal(t, "[Automated Test Failure] Dolphin", issues[0].Title)

	args := runner.lastArgs(t)
	assert.Equal(t, []string{
		"issue", "list", "--json", "number,title,state",
		"--label", "automated-test-failure",
		"--state", "open",
		"--search", "Dolphin in:title",
	}, args)
}

func TestGH_IssueList_BadJSON(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fallback: execx.Output{Stdout: "not json"}}
	gh := New("/repo", WithRunner(runner))

	_, err := gh.IssueList(context.Background(), IssueFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse issue list")
}

func TestGH_IssueCreate(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fallback: execx.Output{
		Stdout: "https://github.com/RJNY/Obtainium-Emulation-Pack/issues/34\n",
	}}
	gh := New("/repo", WithRunner(runner))

	url, err := gh.IssueCreate(context.Background(), "[Automated Test Failure] Dolphin",
		"body", []string{"automated-test-failure"})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/RJNY/Obtainium-Emulation-Pack/issues/34", url)

	args := runner.lastArgs(t)
	assert.Equal(t, []string{
		"issue", "create",
		"--title", "[Automated Test Failure] Dolphin",
		"--body", "body",
		"--label", "automated-test-failure",
	}, args)
}

func TestGH_IssueClose(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	gh := New("/repo", WithRunner(runner))

	require.NoError(t, gh.IssueClose(context.Background(), 34, "passing again"))
	assert.Equal(t, []string{"issue", "close", "34", "--comment", "passing again"}, runner.lastArgs(t))

	require.NoError(t, gh.IssueClose(context.Background(), 35, ""))
	assert.Equal(t, []string{"issue", "close", "35"}, runner.lastArgs(t))
}

func TestGH_TokenInjection(t *testing.T) {
	// Mutates the environment, so no t.Parallel().
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "ghp_example")

	runner := &fakeRunner{}
	gh := New("/repo", WithRunner(runner))
	require.NoError(t, gh.AuthStatus(context.Background()))

	req := runner.requests[0]
	require.NotNil(t, req.Env)
	assert.Contains(t, req.Env, "GH_TOKEN=ghp_example")
}

func TestGH_NoTokenLeavesEnvAlone(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	runner := &fakeRunner{}
	gh := New("/repo", WithRunner(runner))
	require.NoError(t, gh.AuthStatus(context.Background()))

	assert.Nil(t, runner.requests[0].Env)
}
