package crawler

import (
	"context"
	"fmt"
	"time"

	githubapi "github.com/thep200/git2neo/internal/github_api"
	"github.com/thep200/git2neo/internal/model"
)

// StargazerUnit stores the stargazers of one repo as STARRED edges.
type StargazerUnit struct {
	Deps
	Owner string
	Name  string
	Layer model.Layer
	Limit int
}

func NewStargazerUnit(deps Deps, owner, name string, layer model.Layer, limit int) *StargazerUnit {
	return &StargazerUnit{Deps: deps, Owner: owner, Name: name, Layer: layer, Limit: limit}
}

func (u *StargazerUnit) Kind() Kind {
	return KindStargazers
}

func (u *StargazerUnit) Subject() string {
	return u.Owner + "/" + u.Name
}

func (u *StargazerUnit) Run(ctx context.Context) (res Result) {
	start := time.Now()
	res = Result{Kind: u.Kind(), Subject: u.Subject()}
	defer func() { res.Duration = time.Since(start) }()

	repo := model.NewRepo(u.Owner, u.Name, u.Layer)
	repoRef, created, err := u.Store.UpsertNode(context.WithoutCancel(ctx), model.LabelRepo, repo.Key(), repo.Attributes())
	if err != nil {
		res.fail(fmt.Errorf("upsert repo %s: %w", repo.Key(), err))
		return res
	}
	if created {
		res.NodesCreated++
	}

	u.Logger.Info(ctx, "Running stargazer query for repository %s", u.Subject())
	err = paginate(ctx, u.Limit, &res, func(ctx context.Context, cursor string) (githubapi.PageInfo, int, error) {
		doc, err := u.Client.Execute(ctx, githubapi.StargazersQuery(u.Owner, u.Name, cursor), u.Headers)
		if err != nil {
			return githubapi.PageInfo{}, 0, err
		}
		conn, err := githubapi.DecodeStargazers(doc)
		if err != nil {
			return githubapi.PageInfo{}, 0, err
		}

		// Một page đã lấy về thì ghi hết, không bị cắt ngang khi cancel
		wctx := context.WithoutCancel(ctx)
		for _, edge := range conn.Edges {
			person := model.NewPerson(edge.Node.Login, edge.Node.Location, edge.Node.StarredCount())
			personRef, created, err := u.Store.UpsertNode(wctx, model.LabelPerson, person.Key(), person.Attributes())
			if err != nil {
				return githubapi.PageInfo{}, 0, fmt.Errorf("upsert person %s: %w", person.Username, err)
			}
			if created {
				res.NodesCreated++
			}

			var attrs map[string]any
			if edge.StarredAt != "" {
				attrs = map[string]any{"starred_at": edge.StarredAt}
			}
			if err := u.Store.CreateEdge(wctx, model.EdgeStarred, personRef, repoRef, attrs); err != nil {
				return githubapi.PageInfo{}, 0, fmt.Errorf("create STARRED %s -> %s: %w", person.Username, repo.Key(), err)
			}
			res.EdgesCreated++
		}

		u.Logger.Debug(ctx, "%s: %d users processed", u.Subject(), res.Items+len(conn.Edges))
		return *conn.PageInfo, len(conn.Edges), nil
	})
	if err != nil {
		res.fail(err)
	}
	return res
}
