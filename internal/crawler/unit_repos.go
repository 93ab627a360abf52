package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	githubapi "github.com/thep200/git2neo/internal/github_api"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/internal/store"
)

// UserReposUnit stores the repositories of a tracked user as CREATED edges and
// reports every repo it saw so the caller can expand their stargazers.
type UserReposUnit struct {
	Deps
	Login string
	Limit int
}

func NewUserReposUnit(deps Deps, login string, limit int) *UserReposUnit {
	return &UserReposUnit{Deps: deps, Login: login, Limit: limit}
}

func (u *UserReposUnit) Kind() Kind {
	return KindRepositories
}

func (u *UserReposUnit) Subject() string {
	return u.Login
}

func (u *UserReposUnit) Run(ctx context.Context) (res Result) {
	start := time.Now()
	res = Result{Kind: u.Kind(), Subject: u.Subject()}
	defer func() { res.Duration = time.Since(start) }()

	personRef, err := u.Store.FindNode(ctx, model.LabelPerson, u.Login)
	if errors.Is(err, store.ErrNodeNotFound) {
		u.Logger.Info(ctx, "%s not in the current network. Skipped.", u.Login)
		res.Skipped = true
		return res
	}
	if err != nil {
		res.fail(fmt.Errorf("find person %s: %w", u.Login, err))
		return res
	}

	u.Logger.Info(ctx, "Running repository query for user %s", u.Login)
	err = paginate(ctx, u.Limit, &res, func(ctx context.Context, cursor string) (githubapi.PageInfo, int, error) {
		doc, err := u.Client.Execute(ctx, githubapi.RepositoriesQuery(u.Login, cursor), u.Headers)
		if err != nil {
			return githubapi.PageInfo{}, 0, err
		}
		conn, err := githubapi.DecodeRepositories(doc)
		if err != nil {
			return githubapi.PageInfo{}, 0, err
		}

		wctx := context.WithoutCancel(ctx)
		for _, edge := range conn.Edges {
			repo := model.NewRepo(u.Login, edge.Node.Name, model.LayerCreator)
			repoRef, created, err := u.Store.UpsertNode(wctx, model.LabelRepo, repo.Key(), repo.Attributes())
			if err != nil {
				return githubapi.PageInfo{}, 0, fmt.Errorf("upsert repo %s: %w", repo.Key(), err)
			}
			if created {
				res.NodesCreated++
			}
			if err := u.Store.CreateEdge(wctx, model.EdgeCreated, personRef, repoRef, nil); err != nil {
				return githubapi.PageInfo{}, 0, fmt.Errorf("create CREATED %s -> %s: %w", u.Login, repo.Key(), err)
			}
			res.EdgesCreated++
			res.Discovered = append(res.Discovered, repo)
		}
		return *conn.PageInfo, len(conn.Edges), nil
	})
	if err != nil {
		res.fail(err)
	}
	return res
}
