// Package git reads commit history and tags for clog. It uses the go-git
// library so no git binary is needed: the log is a first-parent walk from a
// target revision, and the latest release is the highest semver tag.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ariel-frischer/clog/internal/changelog"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"golang.org/x/mod/semver"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// ErrNoTags is returned by LatestTag when the repository has no tags at all.
var ErrNoTags = errors.New("repository has no tags")

// ErrMalformedTags is returned by LatestTag when tags exist but none of them
// is a semantic version.
var ErrMalformedTags = errors.New("no tag is a semantic version")

// OpenOptions locates the repository.
type OpenOptions struct {
	// Dir is searched upwards for a .git directory when neither GitDir nor
	// WorkTree is set. Empty means the current working directory.
	Dir string
	// GitDir is the repository metadata directory.
	GitDir string
	// WorkTree is the checked-out tree belonging to GitDir.
	WorkTree string
}

// Repository wraps an opened go-git repository.
type Repository struct {
	repo *git.Repository
	root string
}

// Open opens the repository described by opts. A GitDir ending in .git
// implies its parent as the work tree; a WorkTree alone implies WorkTree/.git.
func Open(opts OpenOptions) (*Repository, error) {
	gitDir, workTree := resolveDirs(opts.GitDir, opts.WorkTree)
	if gitDir == "" {
		return openRepo(opts.Dir)
	}

	logDebug("[git] opening git-dir %s with work tree %s", gitDir, workTree)
	if _, err := os.Stat(gitDir); err != nil {
		return nil, fmt.Errorf("opening git-dir %s: %w", gitDir, err)
	}

	storage := filesystem.NewStorage(osfs.New(gitDir), cache.NewObjectLRUDefault())
	repo, err := git.Open(storage, osfs.New(workTree))
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", gitDir, err)
	}
	return &Repository{repo: repo, root: workTree}, nil
}

// resolveDirs fills in the half of the git-dir/work-tree pair that was not
// given. Both empty means "detect from the working directory".
func resolveDirs(gitDir, workTree string) (string, string) {
	switch {
	case gitDir == "" && workTree == "":
		return "", ""
	case gitDir == "":
		return filepath.Join(workTree, git.GitDirName), workTree
	case workTree == "":
		if filepath.Base(filepath.Clean(gitDir)) == git.GitDirName {
			return gitDir, filepath.Dir(filepath.Clean(gitDir))
		}
		return gitDir, gitDir
	default:
		return gitDir, workTree
	}
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
func openRepo(path string) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	logDebug("[git] repository opened successfully at %s", root)
	return &Repository{repo: repo, root: root}, nil
}

// Root returns the work tree root.
func (r *Repository) Root() string {
	return r.root
}

// resolve turns a revision (branch, tag, hash prefix, HEAD~2) into a hash.
func (r *Repository) resolve(rev string) (plumbing.Hash, error) {
	if h, ok := r.resolveRef(rev); ok {
		return h, nil
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving revision %q: %w", rev, err)
	}
	return *h, nil
}

// resolveRef looks rev up as a ref, tag or branch name. Names win over
// abbreviated hashes, so a tag "1" or branch "cafe" is not read as a hash.
func (r *Repository) resolveRef(rev string) (plumbing.Hash, bool) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.ReferenceName(rev),
		plumbing.NewTagReferenceName(rev),
		plumbing.NewBranchReferenceName(rev),
	} {
		ref, err := r.repo.Reference(name, true)
		if err != nil {
			continue
		}
		commit, err := r.peel(ref.Hash())
		if err != nil {
			return plumbing.ZeroHash, false
		}
		return plumbing.NewHash(commit), true
	}
	return plumbing.ZeroHash, false
}

// ResolveRevision returns the full commit hash a revision names.
func (r *Repository) ResolveRevision(rev string) (string, error) {
	h, err := r.resolve(rev)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// Log returns the commits reachable from to by following first parents,
// newest first, stopping before from. An empty from walks to the root
// commit; an empty to means HEAD.
func (r *Repository) Log(ctx context.Context, from, to string) ([]changelog.Record, error) {
	if to == "" {
		to = "HEAD"
	}
	tip, err := r.resolve(to)
	if err != nil {
		return nil, err
	}

	stop := plumbing.ZeroHash
	if from != "" {
		if stop, err = r.resolve(from); err != nil {
			return nil, err
		}
	}

	var records []changelog.Record
	hash := tip
	for hash != stop {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := r.repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("reading commit %s: %w", hash, err)
		}
		records = append(records, changelog.Record{Hash: c.Hash.String(), Message: c.Message})
		if c.NumParents() == 0 {
			break
		}
		hash = c.ParentHashes[0]
	}

	logDebug("[git] Log %s..%s: %d commits", from, to, len(records))
	return records, nil
}

// HeadHash returns the full hash of HEAD.
func (r *Repository) HeadHash() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	return head.Hash().String(), nil
}

// Tag is a release tag and the commit it points at.
type Tag struct {
	// Name is the tag name as written, e.g. "v1.2.0" or "1.2.0".
	Name string
	// Commit is the tagged commit hash. Annotated tags are peeled.
	Commit string
}

// Version returns the tag name in the canonical "vMAJOR.MINOR.PATCH" form.
func (t Tag) Version() string {
	return semver.Canonical(semverName(t.Name))
}

// LatestTag returns the tag with the highest semantic version. Tags with
// and without a leading "v" are both recognized; other tags are ignored.
// It returns ErrNoTags when there are no tags and an error wrapping
// ErrMalformedTags when none of them parses.
func (r *Repository) LatestTag() (Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return Tag{}, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var (
		best    *plumbing.Reference
		bestVer string
		skipped []string
	)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		v := semverName(name)
		if !semver.IsValid(v) {
			skipped = append(skipped, name)
			return nil
		}
		if best == nil || semver.Compare(v, bestVer) > 0 {
			best, bestVer = ref, v
		}
		return nil
	})
	if err != nil {
		return Tag{}, fmt.Errorf("listing tags: %w", err)
	}

	if best == nil {
		if len(skipped) == 0 {
			return Tag{}, ErrNoTags
		}
		return Tag{Name: skipped[0]}, fmt.Errorf("%w: %s", ErrMalformedTags, strings.Join(skipped, ", "))
	}

	commit, err := r.peel(best.Hash())
	if err != nil {
		return Tag{}, err
	}

	logDebug("[git] LatestTag: %s at %s (%d non-semver tags skipped)", best.Name().Short(), commit, len(skipped))
	return Tag{Name: best.Name().Short(), Commit: commit}, nil
}

// peel follows an annotated tag object to its commit.
func (r *Repository) peel(h plumbing.Hash) (string, error) {
	tag, err := r.repo.TagObject(h)
	switch {
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// Lightweight tag
		return h.String(), nil
	case err != nil:
		return "", fmt.Errorf("reading tag %s: %w", h, err)
	}

	c, err := tag.Commit()
	if errors.Is(err, object.ErrUnsupportedObject) {
		return "", fmt.Errorf("tag %s does not point at a commit", tag.Name)
	}
	if err != nil {
		return "", fmt.Errorf("peeling tag %s: %w", tag.Name, err)
	}
	return c.Hash.String(), nil
}

// semverName adds the "v" prefix x/mod/semver requires.
func semverName(name string) string {
	if strings.HasPrefix(name, "v") {
		return name
	}
	return "v" + name
}

// Bump selects which version component NextVersion increments.
type Bump int

const (
	BumpNone Bump = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

// NextVersion increments the selected component of the tag's version and
// resets the lower ones. Prerelease and build suffixes are dropped. The
// "v" prefix is kept only if the tag had one.
func NextVersion(tag Tag, bump Bump) (string, error) {
	canonical := tag.Version()
	if canonical == "" {
		return "", fmt.Errorf("%w: %s", ErrMalformedTags, tag.Name)
	}

	core := strings.TrimSuffix(canonical, semver.Build(canonical))
	core = strings.TrimSuffix(core, semver.Prerelease(canonical))
	parts := strings.Split(strings.TrimPrefix(core, "v"), ".")

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrMalformedTags, tag.Name)
		}
		nums[i] = n
	}

	switch bump {
	case BumpMajor:
		nums = []int{nums[0] + 1, 0, 0}
	case BumpMinor:
		nums = []int{nums[0], nums[1] + 1, 0}
	case BumpPatch:
		nums[2]++
	}

	prefix := ""
	if strings.HasPrefix(tag.Name, "v") {
		prefix = "v"
	}
	return fmt.Sprintf("%s%d.%d.%d", prefix, nums[0], nums[1], nums[2]), nil
}
