package crawler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	githubapi "github.com/thep200/git2neo/internal/github_api"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/internal/store"
)

// UserFollowersUnit links a tracked user to followers already in the network.
// It reads every page; followers outside Known are dropped.
type UserFollowersUnit struct {
	Deps
	Login string
	Known map[string]struct{}
}

func NewUserFollowersUnit(deps Deps, login string, known map[string]struct{}) *UserFollowersUnit {
	return &UserFollowersUnit{Deps: deps, Login: login, Known: known}
}

func (u *UserFollowersUnit) Kind() Kind {
	return KindFollowers
}

func (u *UserFollowersUnit) Subject() string {
	return u.Login
}

func (u *UserFollowersUnit) Run(ctx context.Context) (res Result) {
	start := time.Now()
	res = Result{Kind: u.Kind(), Subject: u.Subject()}
	defer func() { res.Duration = time.Since(start) }()

	userRef, err := u.Store.FindNode(ctx, model.LabelPerson, u.Login)
	if errors.Is(err, store.ErrNodeNotFound) {
		u.Logger.Info(ctx, "%s not in the current network. Skipped.", u.Login)
		res.Skipped = true
		return res
	}
	if err != nil {
		res.fail(fmt.Errorf("find person %s: %w", u.Login, err))
		return res
	}

	err = paginate(ctx, math.MaxInt, &res, func(ctx context.Context, cursor string) (githubapi.PageInfo, int, error) {
		doc, err := u.Client.Execute(ctx, githubapi.FollowersQuery(u.Login, cursor), u.Headers)
		if err != nil {
			return githubapi.PageInfo{}, 0, err
		}
		conn, err := githubapi.DecodeFollowers(doc)
		if err != nil {
			return githubapi.PageInfo{}, 0, err
		}

		wctx := context.WithoutCancel(ctx)
		for _, edge := range conn.Edges {
			login := edge.Node.Login
			if _, ok := u.Known[login]; !ok {
				continue
			}
			followerRef, err := u.Store.FindNode(wctx, model.LabelPerson, login)
			if errors.Is(err, store.ErrNodeNotFound) {
				continue
			}
			if err != nil {
				return githubapi.PageInfo{}, 0, fmt.Errorf("find follower %s: %w", login, err)
			}
			if err := u.Store.CreateEdge(wctx, model.EdgeFollowed, followerRef, userRef, nil); err != nil {
				return githubapi.PageInfo{}, 0, fmt.Errorf("create FOLLOWED %s -> %s: %w", login, u.Login, err)
			}
			res.EdgesCreated++
		}
		return *conn.PageInfo, len(conn.Edges), nil
	})
	if err != nil {
		res.fail(err)
	}
	u.Logger.Info(ctx, "User %s done: %d followers added throughout %d processed", u.Login, res.EdgesCreated, res.Items)
	return res
}
