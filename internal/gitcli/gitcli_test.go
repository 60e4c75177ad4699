// SPDX-License-Identifier: MPL-2.0

package gitcli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emupack-cli/internal/execx"
)

// fakeRunner maps a joined argv string to a canned output and records every
// request it serves.
type fakeRunner struct {
	outputs  map[string]execx.Output
	err      error
	requests []execx.Request
}

func (f *fakeRunner) Run(_ context.Context, req execx.Request) (execx.Output, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return execx.Output{}, f.err
	}
	key := req.Name + " " + strings.Join(req.Args, " ")
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return execx.Output{}, nil
}

func TestGit_Tags(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]execx.Output{
		"git tag --sort=-v:refname": {Stdout: "v1.2.0\nv1.1.0\nv1.0.0\n"},
	}}
	git := New("/repo", WithRunner(runner))

	tags, err := git.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.2.0", "v1.1.0", "v1.0.0"}, tags)
	require.Len(t, runner.requests, 1)
	assert.Equal(t, "/repo", runner.requests[0].Dir)
}

func TestGit_TagExists(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]execx.Output{
		"git tag -l v1.2.0": {Stdout: "v1.2.0\n"},
		"git tag -l v9.9.9": {Stdout: ""},
	}}
	git := New("/repo", WithRunner(runner))

	exists, err := git.TagExists(context.Background(), "v1.2.0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = git.TagExists(context.Background(), "v9.9.9")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGit_NonZeroExitCarriesStderr(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]execx.Output{
		"git push": {ExitCode: 128, Stderr: "fatal: no remote configured\n"},
	}}
	git := New("/repo", WithRunner(runner))

	err := git.Push(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit 128")
	assert.Contains(t, err.Error(), "no remote configured")
}

func TestGit_ShowFileAtRef(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]execx.Output{
		"git show v1.0.0:src/applications.json": {Stdout: `{"apps":[]}`},
		"git show v0.0.1:src/applications.json": {ExitCode: 128, Stderr: "fatal: path does not exist"},
	}}
	git := New("/repo", WithRunner(runner))

	content, ok := git.ShowFileAtRef(context.Background(), "v1.0.0", "src/applications.json")
	assert.True(t, ok)
	assert.Equal(t, `{"apps":[]}`, content)

	// A ref without the file is an expected first-release case, not an error.
	_, ok = git.ShowFileAtRef(context.Background(), "v0.0.1", "src/applications.json")
	assert.False(t, ok)
}

func TestGit_Log(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]execx.Output{
		"git log v1.0.0..HEAD --pretty=format:%s": {Stdout: "add app\nfix url\n"},
		"git log --pretty=format:%s":              {Stdout: "initial commit\n"},
	}}
	git := New("/repo", WithRunner(runner))

	lines, err := git.Log(context.Background(), "v1.0.0", "%s")
	require.NoError(t, err)
	assert.Equal(t, []string{"add app", "fix url"}, lines)

	// No prior tag walks the whole history.
	lines, err = git.Log(context.Background(), "", "%s")
	require.NoError(t, err)
	assert.Equal(t, []string{"initial commit"}, lines)
}

func TestGit_StatusClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{"clean tree", "", true},
		{"whitespace only", "  \n", true},
		{"pending change", " M src/applications.json\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := &fakeRunner{outputs: map[string]execx.Output{
				"git status --porcelain": {Stdout: tt.stdout},
			}}
			clean, err := New("/repo", WithRunner(runner)).StatusClean(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, clean)
		})
	}
}

func TestGit_ReleaseCommandShapes(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	git := New("/repo", WithRunner(runner))
	ctx := context.Background()

	require.NoError(t, git.FetchTags(ctx))
	require.NoError(t, git.AddAll(ctx))
	require.NoError(t, git.Commit(ctx, "release: 1.2.0"))
	require.NoError(t, git.CreateTag(ctx, "v1.2.0"))
	require.NoError(t, git.PushTag(ctx, "v1.2.0"))

	var argvs []string
	for _, req := range runner.requests {
		argvs = append(argvs, strings.Join(req.Args, " "))
	}
	assert.Equal(t, []string{
		"fetch --tags",
		"add -A",
		"commit -m release: 1.2.0",
		"tag v1.2.0",
		"push origin v1.2.0",
	}, argvs)
}

func TestGit_RunnerError(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: fmt.Errorf("exec failed")}
	git := New("/repo", WithRunner(runner))

	_, err := git.Tags(context.Background())
	require.Error(t, err)
}
