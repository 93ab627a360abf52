package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/crawler"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/pkg/kafka"
	"github.com/thep200/git2neo/pkg/log"
)

func main() {
	// Parse command line arguments
	groupID := flag.String("group", "git2neo-event-tally", "Kafka consumer group")
	batchTimeout := flag.Duration("flush", 10*time.Second, "How often the tally is logged")
	flag.Parse()

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, closeLog, err := log.NewLogger(config.Log.File, config.Log.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Setup context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	consumer, err := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicEvents, *groupID)
	if err != nil {
		logger.Error(ctx, "Failed to create consumer: %v", err)
		os.Exit(1)
	}

	tally := NewTally()
	events := make(chan model.UnitEvent, 256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		processBatchedEvents(ctx, events, *batchTimeout, logger, tally)
	}()

	// Mỗi loại unit được publish với key riêng
	handler := eventHandler(ctx, events)
	for _, kind := range []crawler.Kind{crawler.KindStargazers, crawler.KindRepositories, crawler.KindFollowers} {
		consumer.RegisterHandler(string(kind), handler)
	}

	logger.Info(ctx, "Unit event consumer started")
	if err := consumer.Start(ctx); err != nil {
		logger.Error(ctx, "Consumer error: %v", err)
	}
	wg.Wait()
	logger.Info(ctx, "Received shutdown signal, final tally: %s", tally)
}

func eventHandler(ctx context.Context, events chan<- model.UnitEvent) kafka.Handler {
	return func(_ context.Context, data []byte) error {
		var event model.UnitEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("failed to unmarshal unit event: %w", err)
		}
		select {
		case events <- event:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processBatchedEvents folds events into the tally and logs it on every tick.
func processBatchedEvents(ctx context.Context, events <-chan model.UnitEvent, batchTimeout time.Duration, logger log.Logger, tally *Tally) {
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	pending := 0

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			tally.Add(event)
			pending++
			if event.Status == model.UnitStatusFailed {
				logger.Warn(ctx, "[%s] %s %s failed: %s", event.RunID, event.Kind, event.Subject, event.Error)
			}
		case <-ticker.C:
			if pending > 0 {
				logger.Info(ctx, "%d new unit events, tally: %s", pending, tally)
				pending = 0
			}
		}
	}
}

type tallyKey struct {
	RunID  string
	Phase  string
	Status string
}

// Tally counts unit events by run, phase and status.
type Tally struct {
	mu     sync.Mutex
	counts map[tallyKey]int
	items  map[string]int
}

func NewTally() *Tally {
	return &Tally{counts: map[tallyKey]int{}, items: map[string]int{}}
}

func (t *Tally) Add(e model.UnitEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[tallyKey{RunID: e.RunID, Phase: e.Phase, Status: e.Status}]++
	t.items[e.RunID] += e.Items
}

func (t *Tally) Count(runID, phase, status string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[tallyKey{RunID: runID, Phase: phase, Status: status}]
}

func (t *Tally) Items(runID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items[runID]
}

func (t *Tally) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]tallyKey, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].RunID != keys[j].RunID {
			return keys[i].RunID < keys[j].RunID
		}
		if keys[i].Phase != keys[j].Phase {
			return keys[i].Phase < keys[j].Phase
		}
		return keys[i].Status < keys[j].Status
	})
	s := ""
	for _, k := range keys {
		s += fmt.Sprintf("[%s %s %s=%d]", k.RunID, k.Phase, k.Status, t.counts[k])
	}
	return s
}
