package crawler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thep200/git2neo/cfg"
	githubapi "github.com/thep200/git2neo/internal/github_api"
	"github.com/thep200/git2neo/internal/ledger"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/internal/store"
	"github.com/thep200/git2neo/pkg/log"
)

// Publisher receives one UnitEvent per finished unit. *kafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

const publishTimeout = 5 * time.Second

// Phase names, also used as ledger file names.
const (
	PhaseSeedStargazers   = "stargazers_layer0"
	PhaseLayerOneRepos    = "repos_layer1"
	PhaseLayerOneStars    = "stargazers_layer1"
	PhaseFollowers        = "followers"
	PhaseSingleStargazers = "stargazers_single"
)

// Summary aggregates the units of one phase.
type Summary struct {
	Phase      string `json:"phase"`
	Units      int    `json:"units"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Pages      int    `json:"pages"`
	Items      int    `json:"items"`
	Discovered int    `json:"discovered"`
	LedgerPath string `json:"ledger_path"`
}

func (s *Summary) add(res Result) {
	s.Units++
	switch {
	case res.Failed():
		s.Failed++
	case res.Skipped:
		s.Skipped++
	default:
		s.Succeeded++
	}
	s.Pages += res.Pages
	s.Items += res.Items
	s.Discovered += len(res.Discovered)
}

// Stats are running totals since the orchestrator was built.
type Stats struct {
	RunID        string `json:"run_id"`
	Phase        string `json:"phase"`
	Units        int64  `json:"units"`
	Failed       int64  `json:"failed"`
	Skipped      int64  `json:"skipped"`
	Pages        int64  `json:"pages"`
	Items        int64  `json:"items"`
	NodesCreated int64  `json:"nodes_created"`
	EdgesCreated int64  `json:"edges_created"`
}

// Orchestrator runs expansion units layer by layer. Units inside a phase may
// run in parallel up to Crawl.Workers; phases never overlap.
type Orchestrator struct {
	Logger    log.Logger
	Config    *cfg.Config
	Store     store.Store
	Client    GraphClient
	Publisher Publisher

	runID   string
	workers int
	phase   atomic.Value

	units, failed, skipped, pages, items, nodesCreated, edgesCreated atomic.Int64
}

// NewOrchestrator wires the collaborators. publisher may be nil.
func NewOrchestrator(logger log.Logger, config *cfg.Config, st store.Store, client GraphClient, publisher Publisher) (*Orchestrator, error) {
	if st == nil || client == nil {
		return nil, errors.New("orchestrator needs a store and a graph client")
	}
	o := &Orchestrator{
		Logger:    logger,
		Config:    config,
		Store:     st,
		Client:    client,
		Publisher: publisher,
		runID:     uuid.NewString(),
		workers:   max(1, config.Crawl.Workers),
	}
	o.phase.Store("")
	return o, nil
}

func (o *Orchestrator) RunID() string {
	return o.runID
}

func (o *Orchestrator) Stats() Stats {
	return Stats{
		RunID:        o.runID,
		Phase:        o.phase.Load().(string),
		Units:        o.units.Load(),
		Failed:       o.failed.Load(),
		Skipped:      o.skipped.Load(),
		Pages:        o.pages.Load(),
		Items:        o.items.Load(),
		NodesCreated: o.nodesCreated.Load(),
		EdgesCreated: o.edgesCreated.Load(),
	}
}

func (o *Orchestrator) deps() Deps {
	return Deps{
		Logger:  o.Logger,
		Client:  o.Client,
		Store:   o.Store,
		Headers: githubapi.AuthHeaders(o.Config.GithubApi.AccessToken),
	}
}

// Crawl runs a full crawl: optional reset, then the seed layer, then layer 1.
func (o *Orchestrator) Crawl(ctx context.Context) ([]Summary, error) {
	startTime := time.Now()
	o.Logger.Info(ctx, "[%s] Starting crawl at %s", o.runID, startTime.Format(time.RFC3339))

	if o.Config.Crawl.FreshRun {
		o.Logger.Warn(ctx, "[%s] Fresh run: clearing the store", o.runID)
		if err := o.Store.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset store: %w", err)
		}
	}

	seed, err := o.CrawlSeedLayer(ctx)
	summaries := []Summary{seed}
	if err != nil {
		return summaries, err
	}

	layerOne, err := o.ExpandLayerOne(ctx)
	summaries = append(summaries, layerOne...)
	if err != nil {
		return summaries, err
	}

	o.Logger.Info(ctx, "[%s] Crawl finished in %s", o.runID, time.Since(startTime).Round(time.Second))
	return summaries, nil
}

// CrawlSeedLayer runs a StargazerUnit per seed row, tagging repos layer 0.
// An unreadable seed file aborts the phase.
func (o *Orchestrator) CrawlSeedLayer(ctx context.Context) (Summary, error) {
	seeds, err := LoadSeeds(o.Config.Crawl.SeedFile, o.Config.Crawl.NumSeedRepos)
	if err != nil {
		return Summary{Phase: PhaseSeedStargazers}, err
	}
	o.Logger.Info(ctx, "[%s] Seed layer: %d repositories from %s", o.runID, len(seeds), o.Config.Crawl.SeedFile)

	deps := o.deps()
	units := make([]Unit, 0, len(seeds))
	for _, s := range seeds {
		units = append(units, NewStargazerUnit(deps, s.Owner, s.Repo, model.LayerSeed, o.Config.Crawl.LimitStargazersPerRepo))
	}
	_, summary, err := o.runPhase(ctx, PhaseSeedStargazers, ledger.OwnerRepoError, units)
	return summary, err
}

// ExpandLayerOne takes the top users by STARRED edges, crawls their repos and
// then the stargazers of every repo found, in that order.
func (o *Orchestrator) ExpandLayerOne(ctx context.Context) ([]Summary, error) {
	limitUsers := o.Config.Crawl.LimitUsers
	if limitUsers <= 0 {
		o.Logger.Info(ctx, "[%s] Layer 1 disabled (limit users = %d)", o.runID, limitUsers)
		return nil, nil
	}

	top, err := o.Store.TopKByEdgeCount(ctx, model.LabelPerson, model.EdgeStarred, limitUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users: %w", err)
	}
	o.Logger.Info(ctx, "[%s] Preparing repository queries for %d accounts", o.runID, len(top))

	deps := o.deps()
	repoUnits := make([]Unit, 0, len(top))
	for _, u := range top {
		repoUnits = append(repoUnits, NewUserReposUnit(deps, u.Key, o.Config.Crawl.LimitReposPerUser))
	}
	results, reposSummary, err := o.runPhase(ctx, PhaseLayerOneRepos, ledger.UserError, repoUnits)
	summaries := []Summary{reposSummary}
	if err != nil {
		return summaries, err
	}

	var discovered []model.Repo
	for _, res := range results {
		discovered = append(discovered, res.Discovered...)
	}
	o.Logger.Info(ctx, "[%s] Running stargazer queries for %d layer 1 repositories", o.runID, len(discovered))

	starUnits := make([]Unit, 0, len(discovered))
	for _, r := range discovered {
		starUnits = append(starUnits, NewStargazerUnit(deps, r.Owner, r.Name, model.LayerCreator, o.Config.Crawl.LimitStargazersPerRepo))
	}
	_, starsSummary, err := o.runPhase(ctx, PhaseLayerOneStars, ledger.OwnerRepoError, starUnits)
	return append(summaries, starsSummary), err
}

// RefreshNetwork records FOLLOWED edges between people already in the store.
func (o *Orchestrator) RefreshNetwork(ctx context.Context) (Summary, error) {
	known, err := o.Store.AllIdentities(ctx, model.LabelPerson)
	if err != nil {
		return Summary{Phase: PhaseFollowers}, fmt.Errorf("failed to list people: %w", err)
	}
	users := make([]string, 0, len(known))
	for u := range known {
		users = append(users, u)
	}
	sort.Strings(users)
	o.Logger.Info(ctx, "[%s] Network refresh over %d users", o.runID, len(users))

	deps := o.deps()
	units := make([]Unit, 0, len(users))
	for _, u := range users {
		units = append(units, NewUserFollowersUnit(deps, u, known))
	}
	_, summary, err := o.runPhase(ctx, PhaseFollowers, ledger.UserError, units)
	return summary, err
}

// CrawlRepo runs a single StargazerUnit outside the layered policy.
func (o *Orchestrator) CrawlRepo(ctx context.Context, owner, name string, layer model.Layer) (Result, error) {
	unit := NewStargazerUnit(o.deps(), owner, name, layer, o.Config.Crawl.LimitStargazersPerRepo)
	results, _, err := o.runPhase(ctx, PhaseSingleStargazers, ledger.OwnerRepoError, []Unit{unit})
	if len(results) == 0 {
		return Result{Kind: unit.Kind(), Subject: unit.Subject()}, err
	}
	return results[0], err
}

// runPhase runs units with bounded parallelism. A failed unit never stops its
// siblings; cancellation stops new units from starting and is returned.
// Results are in unit order and only cover units that were started.
func (o *Orchestrator) runPhase(ctx context.Context, phase string, columns []string, units []Unit) ([]Result, Summary, error) {
	summary := Summary{Phase: phase}
	o.phase.Store(phase)

	led, err := ledger.Open(o.Config.Crawl.ErrorDir, phase, columns)
	if err != nil {
		return nil, summary, err
	}
	summary.LedgerPath = led.Path()

	results := make([]Result, len(units))
	ran := make([]bool, len(units))
	g := new(errgroup.Group)
	g.SetLimit(o.workers)
	for i, unit := range units {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := unit.Run(ctx)
			results[i] = res
			ran[i] = true
			o.record(ctx, phase, unit, res, led)
			return nil
		})
	}
	_ = g.Wait()

	done := make([]Result, 0, len(units))
	for i, res := range results {
		if ran[i] {
			done = append(done, res)
			summary.add(res)
		}
	}
	if len(done) < len(units) {
		o.Logger.Warn(ctx, "[%s] %s cancelled, %d of %d units not started", o.runID, phase, len(units)-len(done), len(units))
	}
	o.Logger.Info(ctx, "[%s] %s done: %d units, %d failed, %d skipped, %d items",
		o.runID, phase, summary.Units, summary.Failed, summary.Skipped, summary.Items)
	return done, summary, ctx.Err()
}

func (o *Orchestrator) record(ctx context.Context, phase string, unit Unit, res Result, led *ledger.Ledger) {
	observeResult(res)
	o.units.Add(1)
	o.pages.Add(int64(res.Pages))
	o.items.Add(int64(res.Items))
	o.nodesCreated.Add(int64(res.NodesCreated))
	o.edgesCreated.Add(int64(res.EdgesCreated))

	switch {
	case res.Failed():
		o.failed.Add(1)
		o.Logger.Error(ctx, "[%s] %v", o.runID, res.Failure)
		if err := led.Append(ledgerRow(unit, res.Failure)...); err != nil {
			o.Logger.Error(ctx, "[%s] Failed to write error ledger %s: %v", o.runID, led.Path(), err)
		}
	case res.Skipped:
		o.skipped.Add(1)
	default:
		o.Logger.Info(ctx, "[%s] %s %s done: %d pages, %d items", o.runID, res.Kind, res.Subject, res.Pages, res.Items)
	}

	o.publish(ctx, phase, res)
}

func (o *Orchestrator) publish(ctx context.Context, phase string, res Result) {
	if o.Publisher == nil {
		return
	}
	event := model.UnitEvent{
		RunID:      o.runID,
		Phase:      phase,
		Kind:       string(res.Kind),
		Subject:    res.Subject,
		Status:     res.Status(),
		Pages:      res.Pages,
		Items:      res.Items,
		Discovered: len(res.Discovered),
		FinishedAt: time.Now(),
	}
	if res.Failure != nil {
		event.Error = model.TruncateString(res.Failure.Err.Error(), 1000)
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := o.Publisher.Publish(pctx, string(res.Kind), event); err != nil {
		o.Logger.Warn(ctx, "[%s] Failed to publish unit event: %v", o.runID, err)
	}
}

func ledgerRow(unit Unit, failure *UnitFailure) []string {
	msg := failure.Err.Error()
	switch u := unit.(type) {
	case *StargazerUnit:
		return []string{u.Owner, u.Name, msg}
	default:
		return []string{u.Subject(), msg}
	}
}
