// Package api cung cấp các API public để điều khiển crawler chạy nền
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/crawler"
	"github.com/thep200/git2neo/internal/store"
	"github.com/thep200/git2neo/pkg/log"
)

const (
	ModeFull      = "full"
	ModeFollowers = "followers"
)

var ErrUnknownMode = errors.New("unknown crawl mode")

// CrawlStats chứa thống kê về lần crawl gần nhất
type CrawlStats struct {
	Mode      string            `json:"mode"`
	IsRunning bool              `json:"isRunning"`
	StartTime time.Time         `json:"startTime"`
	Duration  string            `json:"duration"`
	LastError string            `json:"lastError"`
	Live      crawler.Stats     `json:"live"`
	Summaries []crawler.Summary `json:"summaries"`
}

// CrawlerAPI chạy tối đa một lần crawl tại một thời điểm
type CrawlerAPI struct {
	Logger    log.Logger
	Config    *cfg.Config
	Store     store.Store
	Client    crawler.GraphClient
	Publisher crawler.Publisher

	mu           sync.RWMutex
	crawling     bool
	cancel       context.CancelFunc
	done         chan struct{}
	orchestrator *crawler.Orchestrator
	crawlStats   CrawlStats
}

func NewCrawlerAPI(logger log.Logger, config *cfg.Config, st store.Store, client crawler.GraphClient, publisher crawler.Publisher) *CrawlerAPI {
	return &CrawlerAPI{
		Logger:    logger,
		Config:    config,
		Store:     st,
		Client:    client,
		Publisher: publisher,
	}
}

// StartCrawling bắt đầu crawl ở chế độ mode trong một goroutine
func (a *CrawlerAPI) StartCrawling(ctx context.Context, mode string) (string, error) {
	if mode != ModeFull && mode != ModeFollowers {
		return "", ErrUnknownMode
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.crawling {
		return "Crawling is already in progress", nil
	}

	o, err := crawler.NewOrchestrator(a.Logger, a.Config, a.Store, a.Client, a.Publisher)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.crawling = true
	a.cancel = cancel
	a.done = make(chan struct{})
	a.orchestrator = o
	a.crawlStats = CrawlStats{
		Mode:      mode,
		IsRunning: true,
		StartTime: time.Now(),
	}

	go a.run(runCtx, o, mode, a.done)
	return "Started " + mode + " crawl " + o.RunID(), nil
}

func (a *CrawlerAPI) run(ctx context.Context, o *crawler.Orchestrator, mode string, done chan struct{}) {
	defer close(done)

	var (
		summaries []crawler.Summary
		err       error
	)
	switch mode {
	case ModeFull:
		summaries, err = o.Crawl(ctx)
	case ModeFollowers:
		var s crawler.Summary
		s, err = o.RefreshNetwork(ctx)
		summaries = []crawler.Summary{s}
	}
	if err != nil {
		a.Logger.Error(ctx, "Crawl %s stopped: %v", o.RunID(), err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.crawling = false
	a.cancel()
	a.crawlStats.IsRunning = false
	a.crawlStats.Duration = time.Since(a.crawlStats.StartTime).Round(time.Millisecond).String()
	a.crawlStats.Summaries = summaries
	if err != nil {
		a.crawlStats.LastError = err.Error()
	}
}

// StopCrawling huỷ lần crawl đang chạy. Unit đang chạy dừng ở ranh giới page.
func (a *CrawlerAPI) StopCrawling() (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.crawling {
		return "No crawling is in progress", nil
	}
	a.cancel()
	return "Stopping crawling process (may take some time to complete)", nil
}

// Wait blocks until the current crawl, if any, has finished.
func (a *CrawlerAPI) Wait() {
	a.mu.RLock()
	done := a.done
	a.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// GetCrawlStats trả về thống kê về quá trình crawling
func (a *CrawlerAPI) GetCrawlStats() CrawlStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := a.crawlStats
	stats.Summaries = append([]crawler.Summary(nil), a.crawlStats.Summaries...)
	if a.orchestrator != nil {
		stats.Live = a.orchestrator.Stats()
	}
	if stats.IsRunning {
		stats.Duration = time.Since(stats.StartTime).Round(time.Millisecond).String()
	}
	return stats
}
