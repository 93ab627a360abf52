package crawler

import (
	"context"
	"fmt"
	"time"

	githubapi "github.com/thep200/git2neo/internal/github_api"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/internal/store"
	"github.com/thep200/git2neo/pkg/log"
)

// GraphClient executes one GraphQL document and returns the raw response.
type GraphClient interface {
	Execute(ctx context.Context, query string, headers map[string]string) ([]byte, error)
}

type Kind string

const (
	KindStargazers   Kind = "stargazers"
	KindRepositories Kind = "repositories"
	KindFollowers    Kind = "followers"
)

// Unit is one bounded crawl over a single entity's paged relationship.
type Unit interface {
	Kind() Kind
	Subject() string
	Run(ctx context.Context) Result
}

// Deps are the collaborators shared by every unit.
type Deps struct {
	Logger  log.Logger
	Client  GraphClient
	Store   store.Store
	Headers map[string]string
}

// Result is what a unit reports back. Counters and Discovered cover every page
// that was committed, including when Failure is set.
type Result struct {
	Kind         Kind
	Subject      string
	Pages        int
	Items        int
	NodesCreated int
	EdgesCreated int
	Discovered   []model.Repo
	Skipped      bool
	Failure      *UnitFailure
	Duration     time.Duration
}

func (r Result) Failed() bool {
	return r.Failure != nil
}

func (r Result) Status() string {
	switch {
	case r.Failure != nil:
		return model.UnitStatusFailed
	case r.Skipped:
		return model.UnitStatusSkipped
	default:
		return model.UnitStatusOK
	}
}

func (r *Result) fail(err error) {
	r.Failure = &UnitFailure{Kind: r.Kind, Subject: r.Subject, Pages: r.Pages, Err: err}
}

// UnitFailure aborts a unit. Pages is the number of pages committed before it.
type UnitFailure struct {
	Kind    Kind
	Subject string
	Pages   int
	Err     error
}

func (f *UnitFailure) Error() string {
	return fmt.Sprintf("%s %s failed after %d page(s): %v", f.Kind, f.Subject, f.Pages, f.Err)
}

func (f *UnitFailure) Unwrap() error {
	return f.Err
}

// fetchPage fetches and stores the page after cursor.
type fetchPage func(ctx context.Context, cursor string) (githubapi.PageInfo, int, error)

// paginate calls fetch until the cursor says stop. One page is always
// fetched. Cancellation is honoured only between pages.
func paginate(ctx context.Context, limit int, res *Result, fetch fetchPage) error {
	cur := InitialCursor()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, n, err := fetch(ctx, cur.Token)
		if err != nil {
			return err
		}
		res.Pages++
		res.Items += n
		if !cur.Advance(info, n, limit) {
			return nil
		}
	}
}
