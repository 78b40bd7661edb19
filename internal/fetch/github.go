// Package fetch downloads the documentation repository as a tarball
// and unpacks it into a scratch directory for indexing.
package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"docsbot/internal/domain"
)

const maxRedirects = 5

// GithubFetcher retrieves the latest revision of one repository.
type GithubFetcher struct {
	gh    *gh.Client
	http  *http.Client
	owner string
	repo  string
}

var _ domain.Fetcher = (*GithubFetcher)(nil)

// NewGithubFetcher builds a fetcher authenticated with a personal
// access token.
func NewGithubFetcher(ctx context.Context, token, owner, repo string) *GithubFetcher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &GithubFetcher{
		gh:    gh.NewClient(tc),
		http:  tc,
		owner: owner,
		repo:  repo,
	}
}

// Fetch downloads the tarball of the latest commit and unpacks it.
// root is the extracted repository directory; cleanup removes the
// whole scratch tree.
func (f *GithubFetcher) Fetch(ctx context.Context) (string, func(), error) {
	commits, _, err := f.gh.Repositories.ListCommits(ctx, f.owner, f.repo, &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return "", nil, fmt.Errorf("list commits for %s/%s: %w", f.owner, f.repo, err)
	}
	if len(commits) == 0 {
		return "", nil, fmt.Errorf("no retrievable revision in %s/%s", f.owner, f.repo)
	}
	sha := commits[0].GetSHA()

	url, _, err := f.gh.Repositories.GetArchiveLink(ctx, f.owner, f.repo, gh.Tarball,
		&gh.RepositoryContentGetOptions{Ref: sha}, maxRedirects)
	if err != nil {
		return "", nil, fmt.Errorf("resolve archive link: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("download tarball: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download tarball: %s", resp.Status)
	}

	scratch, err := os.MkdirTemp("", "docsbot-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(scratch) }

	if err := Untar(resp.Body, scratch); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("unpack tarball: %w", err)
	}

	root, err := extractedRoot(scratch)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return root, cleanup, nil
}

// Untar unpacks a gzip-compressed tar stream into dst, rejecting
// entries that would escape it.
func Untar(r io.Reader, dst string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

func safeJoin(dst, name string) (string, error) {
	target := filepath.Join(dst, filepath.Clean(name))
	if target != dst && !strings.HasPrefix(target, dst+string(os.PathSeparator)) {
		return "", fmt.Errorf("tar entry %q escapes destination", name)
	}
	return target, nil
}

// extractedRoot locates the single top-level directory GitHub tarballs
// contain (owner-repo-sha).
func extractedRoot(scratch string) (string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			return filepath.Join(scratch, e.Name()), nil
		}
	}
	return "", fmt.Errorf("tarball contained no directory")
}
