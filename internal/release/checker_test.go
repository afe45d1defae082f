package release

import (
	"context"
	"errors"
	"testing"

	"github.com/stanbies/cerebro-launcher/internal/logging"
)

type fakeRepo struct {
	local     string
	remote    string
	localErr  error
	remoteErr error
	fetchErr  error
	tagsErr   error
	tags      []string
	fetches   int
	tagCalls  int
}

func (f *fakeRepo) FetchBranch(ctx context.Context, branch string) error {
	f.fetches++
	return f.fetchErr
}

func (f *fakeRepo) FetchTags(ctx context.Context) error {
	return f.fetchErr
}

func (f *fakeRepo) Head(ctx context.Context) (string, error) {
	return f.local, f.localErr
}

func (f *fakeRepo) RemoteHead(ctx context.Context, branch string) (string, error) {
	return f.remote, f.remoteErr
}

func (f *fakeRepo) Tags(ctx context.Context) ([]string, error) {
	f.tagCalls++
	return f.tags, f.tagsErr
}

func TestSelectLatestTag(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{name: "empty uses sentinel", tags: nil, want: "1.0.0"},
		{name: "single", tags: []string{"v0.9.0"}, want: "v0.9.0"},
		{name: "numeric not lexical", tags: []string{"v1.9.0", "v1.10.0", "v1.2.0"}, want: "v1.10.0"},
		{name: "mixed prefixes", tags: []string{"1.2.3", "v1.2.4", "v1.2.2"}, want: "v1.2.4"},
		{name: "prerelease ranks below release", tags: []string{"v2.0.0-rc1", "v1.9.9", "v2.0.0"}, want: "v2.0.0"},
		{name: "unparseable ranks last", tags: []string{"nightly", "v0.1.0"}, want: "v0.1.0"},
		{name: "only unparseable keeps order", tags: []string{"beta", "alpha"}, want: "beta"},
		{name: "equal versions keep order", tags: []string{"1.2.3", "v1.2.3"}, want: "1.2.3"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SelectLatestTag(tc.tags); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSelectLatestTag_OrderIndependent(t *testing.T) {
	a := SelectLatestTag([]string{"v1.0.0", "v1.3.0", "v1.2.0"})
	b := SelectLatestTag([]string{"v1.2.0", "v1.0.0", "v1.3.0"})
	if a != b || a != "v1.3.0" {
		t.Errorf("selection depends on input order: %q vs %q", a, b)
	}
}

func TestRevisionPair_HasNewCommits(t *testing.T) {
	pairs := []struct {
		pair RevisionPair
		want bool
	}{
		{RevisionPair{Local: "abc", Remote: "abc"}, false},
		{RevisionPair{Local: "abc", Remote: "def"}, true},
		{RevisionPair{Local: "", Remote: "def"}, false},
		{RevisionPair{Local: "abc", Remote: ""}, false},
	}
	for _, p := range pairs {
		if got := p.pair.HasNewCommits(); got != p.want {
			t.Errorf("%+v: got %v, want %v", p.pair, got, p.want)
		}
	}
}

func TestChecker_NewCommitsIndependentOfTags(t *testing.T) {
	repo := &fakeRepo{local: "aaa", remote: "bbb", tags: nil}
	status := NewChecker(repo, "main", true, logging.Nop()).Check(context.Background())

	if !status.HasNewCommits {
		t.Error("expected new commits when revisions differ, even without tags")
	}
	if status.LatestTag != SentinelTag {
		t.Errorf("expected sentinel tag, got %s", status.LatestTag)
	}
	if !status.Fetched {
		t.Error("expected fetched=true")
	}
}

func TestChecker_UpToDate(t *testing.T) {
	repo := &fakeRepo{local: "aaa", remote: "aaa", tags: []string{"v1.2.3", "v1.2.2"}}
	status := NewChecker(repo, "main", true, logging.Nop()).Check(context.Background())

	if status.HasNewCommits {
		t.Error("expected no new commits")
	}
	if status.LatestTag != "v1.2.3" {
		t.Errorf("got tag %s", status.LatestTag)
	}
}

func TestChecker_NetworkFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{
		local:     "aaa",
		remoteErr: errors.New("unknown revision origin/main"),
		fetchErr:  errors.New("could not resolve host"),
		tags:      []string{"1.2.3"},
	}
	status := NewChecker(repo, "main", true, logging.Nop()).Check(context.Background())

	if status.Fetched {
		t.Error("expected fetched=false after fetch failure")
	}
	if status.HasNewCommits {
		t.Error("unresolved remote must not report new commits")
	}
	if status.LatestTag != "1.2.3" {
		t.Errorf("local tags should still be used, got %s", status.LatestTag)
	}
}

func TestChecker_FetchDisabled(t *testing.T) {
	repo := &fakeRepo{local: "aaa", remote: "bbb", tags: []string{"1.0.1"}}
	status := NewChecker(repo, "main", false, logging.Nop()).Check(context.Background())

	if repo.fetches != 0 {
		t.Errorf("expected no fetch, got %d", repo.fetches)
	}
	if status.HasNewCommits || status.LatestTag != "1.0.1" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestChecker_TagListingFailureUsesSentinel(t *testing.T) {
	repo := &fakeRepo{local: "a", remote: "a", tagsErr: errors.New("not a git repository")}
	status := NewChecker(repo, "main", true, logging.Nop()).Check(context.Background())
	if status.LatestTag != SentinelTag {
		t.Errorf("expected sentinel, got %s", status.LatestTag)
	}
}
