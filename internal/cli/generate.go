package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ariel-frischer/clog/internal/changelog"
	"github.com/ariel-frischer/clog/internal/config"
	clerrors "github.com/ariel-frischer/clog/internal/errors"
	"github.com/ariel-frischer/clog/internal/git"
	"github.com/ariel-frischer/clog/internal/progress"
	"github.com/ariel-frischer/clog/internal/writer"
	"github.com/spf13/cobra"
)

// dateLayout is the release date format in headers.
const dateLayout = "2006-01-02"

// release is the outcome of reading history: the aggregated document and
// the link templates it renders with.
type release struct {
	cfg   *config.Configuration
	doc   *changelog.Document
	links changelog.LinkTemplates
}

func (a *App) runGenerate(cmd *cobra.Command, opts *runOptions) error {
	rel, err := a.buildRelease(cmd, opts)
	if err != nil {
		return err
	}

	rendered, err := changelog.Render(rel.doc, rel.cfg.Format, rel.links)
	if err != nil {
		return clerrors.Wrap(err, clerrors.UnknownErr, "rendering changelog")
	}

	roles := writer.Roles{
		Changelog: a.abs(rel.cfg.Changelog),
		Outfile:   a.abs(rel.cfg.Outfile),
		Infile:    a.abs(rel.cfg.Infile),
	}
	return writer.Write(rendered, roles, a.Stdout)
}

// buildRelease loads the configuration, reads the commit range and
// aggregates it under the release header.
func (a *App) buildRelease(cmd *cobra.Command, opts *runOptions) (*release, error) {
	a.policy = clerrors.DefaultPolicy
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		a.policy = clerrors.StrictPolicy
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigPath: opts.configPath,
		Flags:      cmd.Flags(),
		Getwd:      a.Getwd,
	})
	if err != nil {
		return nil, err
	}
	a.policy = cfg.Policy()

	repo, err := git.Open(git.OpenOptions{
		Dir:      cfg.Dir,
		GitDir:   a.abs(cfg.GitDir),
		WorkTree: a.abs(cfg.GitWorkTree),
	})
	if err != nil {
		return nil, clerrors.Wrap(err, clerrors.IoErr, "opening git repository",
			"Run clog inside a git work tree, or pass --git-dir/--work-tree")
	}

	needTag := cfg.FromLatestTag || (opts.setVersion == "" && bumpOf(opts) != git.BumpNone)
	var tag git.Tag
	if needTag {
		if tag, err = latestTag(repo); err != nil {
			return nil, err
		}
	}

	from := cfg.From
	if cfg.FromLatestTag {
		from = tag.Commit
	}
	// Aggregate matches the boundary as a hash, so ref names must not reach it.
	if from != "" {
		if from, err = repo.ResolveRevision(from); err != nil {
			return nil, clerrors.Wrap(err, clerrors.IoErr, "resolving --from",
				"Check that --from names an existing revision")
		}
	}

	recs, err := a.readHistory(cmd.Context(), repo, from, cfg.To)
	if err != nil {
		return nil, clerrors.Wrap(err, clerrors.IoErr, "reading commit history",
			"Check that --from and --to name existing revisions")
	}

	version, err := versionLabel(repo, tag, opts)
	if err != nil {
		return nil, err
	}

	entries := changelog.ParseAll(recs)
	doc := changelog.Aggregate(entries, cfg.Aliases(), from)
	doc.Header = changelog.Header{
		Version:  version,
		Subtitle: cfg.Subtitle,
		Date:     a.Now().UTC().Format(dateLayout),
		Patch:    opts.patch,
	}

	return &release{
		cfg:   cfg,
		doc:   doc,
		links: changelog.ResolveLinks(cfg.Repository, cfg.Style),
	}, nil
}

// readHistory walks the commit range with a spinner on stderr.
func (a *App) readHistory(ctx context.Context, repo *git.Repository, from, to string) ([]changelog.Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ind := progress.NewIndicator(a.Stderr, a.Terminal())
	ind.Start("Reading commit history")

	recs, err := repo.Log(ctx, from, to)
	if err != nil {
		ind.Stop(false, "")
		return nil, err
	}
	ind.Stop(true, fmt.Sprintf("Read %d commits", len(recs)))
	return recs, nil
}

// latestTag returns the newest release tag. A repository without tags
// yields an empty tag, so the range starts at the root commit and bumps
// start from 0.0.0.
func latestTag(repo *git.Repository) (git.Tag, error) {
	tag, err := repo.LatestTag()
	switch {
	case errors.Is(err, git.ErrNoTags):
		return git.Tag{}, nil
	case errors.Is(err, git.ErrMalformedTags):
		return git.Tag{}, clerrors.MalformedTag(tag.Name, err)
	case err != nil:
		return git.Tag{}, clerrors.Wrap(err, clerrors.IoErr, "reading tags")
	}
	return tag, nil
}

// versionLabel picks the release header label: --setversion, then the
// bumped latest tag, then the short HEAD hash.
func versionLabel(repo *git.Repository, tag git.Tag, opts *runOptions) (string, error) {
	if opts.setVersion != "" {
		return opts.setVersion, nil
	}

	if bump := bumpOf(opts); bump != git.BumpNone {
		if tag.Name == "" {
			tag.Name = "v0.0.0"
		}
		v, err := git.NextVersion(tag, bump)
		if err != nil {
			return "", clerrors.MalformedTag(tag.Name, err)
		}
		return v, nil
	}

	head, err := repo.HeadHash()
	if err != nil {
		return "", clerrors.Wrap(err, clerrors.IoErr, "reading HEAD")
	}
	return changelog.ShortHash(head), nil
}

func bumpOf(opts *runOptions) git.Bump {
	switch {
	case opts.major:
		return git.BumpMajor
	case opts.minor:
		return git.BumpMinor
	case opts.patch:
		return git.BumpPatch
	default:
		return git.BumpNone
	}
}

// abs resolves path against the App working directory. Empty stays empty.
func (a *App) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	cwd, err := a.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
