package main

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/pkg/log"
)

func TestTally(t *testing.T) {
	tally := NewTally()
	tally.Add(model.UnitEvent{RunID: "r1", Phase: "stargazers_layer0", Status: model.UnitStatusOK, Items: 40})
	tally.Add(model.UnitEvent{RunID: "r1", Phase: "stargazers_layer0", Status: model.UnitStatusOK, Items: 2})
	tally.Add(model.UnitEvent{RunID: "r1", Phase: "stargazers_layer0", Status: model.UnitStatusFailed})

	assert.Equal(t, 2, tally.Count("r1", "stargazers_layer0", model.UnitStatusOK))
	assert.Equal(t, 1, tally.Count("r1", "stargazers_layer0", model.UnitStatusFailed))
	assert.Equal(t, 42, tally.Items("r1"))
	assert.Equal(t, "[r1 stargazers_layer0 failed=1][r1 stargazers_layer0 ok=2]", tally.String())
}

func TestEventHandlerFeedsBatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	logger, _ := log.NewCslLoggerWithWriter(io.Discard, false)
	events := make(chan model.UnitEvent, 1)
	tally := NewTally()
	done := make(chan struct{})
	go func() {
		processBatchedEvents(ctx, events, time.Millisecond, logger, tally)
		close(done)
	}()

	payload, _ := json.Marshal(model.UnitEvent{RunID: "r2", Phase: "followers", Status: model.UnitStatusSkipped})
	require.NoError(t, eventHandler(ctx, events)(ctx, payload))
	assert.Error(t, eventHandler(ctx, events)(ctx, []byte("{")))

	assert.Eventually(t, func() bool {
		return tally.Count("r2", "followers", model.UnitStatusSkipped) == 1
	}, time.Second, time.Millisecond)
	cancel()
	<-done
}
