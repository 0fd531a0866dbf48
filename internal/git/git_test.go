// Package git_test tests history walking, tag lookup and version bumps.
// Related: internal/git/git.go
// Tags: git, log, tags, semver

package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/clog/internal/testutil"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	*testutil.GitRepo
}

func newTestRepo(t *testing.T) *testRepo {
	return &testRepo{testutil.NewGitRepo(t)}
}

func (r *testRepo) open(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(OpenOptions{Dir: r.Dir})
	require.NoError(t, err)
	return repo
}

func messages(t *testing.T, repo *Repository, from, to string) []string {
	t.Helper()
	recs, err := repo.Log(context.Background(), from, to)
	require.NoError(t, err)
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Message)
	}
	return out
}

func TestLog(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	a := tr.Commit("feat: a")
	b := tr.Commit("fix: b")
	tr.Commit("perf: c")
	repo := tr.open(t)

	tests := map[string]struct {
		from string
		to   string
		want []string
	}{
		"whole history": {
			want: []string{"perf: c", "fix: b", "feat: a"},
		},
		"from is exclusive": {
			from: a.String(),
			want: []string{"perf: c", "fix: b"},
		},
		"explicit to": {
			to:   b.String(),
			want: []string{"fix: b", "feat: a"},
		},
		"from equals to": {
			from: b.String(),
			to:   b.String(),
			want: []string{},
		},
		"relative revision": {
			to:   "HEAD~1",
			want: []string{"fix: b", "feat: a"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(t, repo, tt.from, tt.to))
		})
	}
}

func TestLog_RecordsFullHash(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	h := tr.Commit("feat: a\n\nbody line\n")
	recs, err := tr.open(t).Log(context.Background(), "", "HEAD")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, h.String(), recs[0].Hash)
	assert.Equal(t, "feat: a\n\nbody line\n", recs[0].Message)
}

func TestLog_FollowsFirstParent(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	a := tr.Commit("feat: a")
	b := tr.Commit("fix: b")
	side := tr.Commit("feat: side branch work", a)
	tr.Commit("Merge branch 'side'", b, side)

	assert.Equal(t,
		[]string{"Merge branch 'side'", "fix: b", "feat: a"},
		messages(t, tr.open(t), "", ""))
}

func TestLog_Errors(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.Commit("feat: a")
	repo := tr.open(t)

	_, err := repo.Log(context.Background(), "", "no-such-branch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-branch")

	_, err = repo.Log(context.Background(), "no-such-tag", "")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.Log(ctx, "", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveRevision(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	root := tr.Commit("chore: root")
	var tip plumbing.Hash
	for range 20 {
		tip = tr.Commit("feat: more")
	}
	prefix := tip.String()[:4]
	tr.Tag(prefix, root, false)
	tr.Tag("1", root, true)
	require.NoError(t, tr.Repo.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("cafe"), root)))
	repo := tr.open(t)

	tests := map[string]struct {
		rev  string
		want plumbing.Hash
	}{
		"tag shadowing a hash prefix":  {rev: prefix, want: root},
		"annotated numeric tag":        {rev: "1", want: root},
		"hex-like branch":              {rev: "cafe", want: root},
		"full hash":                    {rev: tip.String(), want: tip},
		"ancestry from HEAD":           {rev: "HEAD~20", want: root},
		"fully qualified tag ref name": {rev: "refs/tags/" + prefix, want: root},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := repo.ResolveRevision(tt.rev)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), got)
		})
	}

	_, err := repo.ResolveRevision("no-such-ref")
	assert.Error(t, err)
}

func TestLatestTag(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	a := tr.Commit("feat: a")
	b := tr.Commit("fix: b")
	c := tr.Commit("perf: c")
	tr.Tag("v1.0.0", a, false)
	tr.Tag("1.2.0", b, true)
	tr.Tag("v1.2.0-rc.1", c, false)
	tr.Tag("nightly", c, false)

	tag, err := tr.open(t).LatestTag()
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", tag.Name)
	assert.Equal(t, b.String(), tag.Commit, "annotated tag is peeled to its commit")
	assert.Equal(t, "v1.2.0", tag.Version())
}

func TestLatestTag_NoTags(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.Commit("feat: a")

	_, err := tr.open(t).LatestTag()
	assert.ErrorIs(t, err, ErrNoTags)
}

func TestLatestTag_OnlyMalformed(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	a := tr.Commit("feat: a")
	tr.Tag("release-one", a, false)

	tag, err := tr.open(t).LatestTag()
	require.ErrorIs(t, err, ErrMalformedTags)
	assert.Equal(t, "release-one", tag.Name)
}

func TestNextVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		tag     string
		bump    Bump
		want    string
		wantErr bool
	}{
		"no bump":            {tag: "v1.2.3", bump: BumpNone, want: "v1.2.3"},
		"patch":              {tag: "v1.2.3", bump: BumpPatch, want: "v1.2.4"},
		"minor resets patch": {tag: "v1.2.3", bump: BumpMinor, want: "v1.3.0"},
		"major resets rest":  {tag: "v1.2.3", bump: BumpMajor, want: "v2.0.0"},
		"no prefix kept":     {tag: "0.9.1", bump: BumpMinor, want: "0.10.0"},
		"short form":         {tag: "v2", bump: BumpPatch, want: "v2.0.1"},
		"prerelease dropped": {tag: "v1.0.0-rc.1+build5", bump: BumpPatch, want: "v1.0.1"},
		"malformed":          {tag: "release", bump: BumpPatch, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := NextVersion(Tag{Name: tt.tag}, tt.bump)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedTags)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDirs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		gitDir, workTree         string
		wantGitDir, wantWorkTree string
	}{
		"neither":           {},
		"git dir with .git": {gitDir: "/src/p/.git", wantGitDir: "/src/p/.git", wantWorkTree: "/src/p"},
		"bare git dir":      {gitDir: "/srv/p.git", wantGitDir: "/srv/p.git", wantWorkTree: "/srv/p.git"},
		"work tree only":    {workTree: "/src/p", wantGitDir: "/src/p/.git", wantWorkTree: "/src/p"},
		"both":              {gitDir: "/meta", workTree: "/src", wantGitDir: "/meta", wantWorkTree: "/src"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			gitDir, workTree := resolveDirs(tt.gitDir, tt.workTree)
			assert.Equal(t, tt.wantGitDir, gitDir)
			assert.Equal(t, tt.wantWorkTree, workTree)
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	h := tr.Commit("feat: a")
	sub := filepath.Join(tr.Dir, "nested", "deeper")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	tests := map[string]OpenOptions{
		"detects from subdirectory": {Dir: sub},
		"git dir override":          {GitDir: filepath.Join(tr.Dir, ".git")},
		"work tree override":        {WorkTree: tr.Dir},
	}

	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo, err := Open(opts)
			require.NoError(t, err)
			assert.Equal(t, tr.Dir, repo.Root())

			head, err := repo.HeadHash()
			require.NoError(t, err)
			assert.Equal(t, h.String(), head)
		})
	}
}

func TestOpen_NotARepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Open(OpenOptions{Dir: dir})
	assert.Error(t, err)

	_, err = Open(OpenOptions{GitDir: filepath.Join(dir, "missing", ".git")})
	assert.Error(t, err)
}
