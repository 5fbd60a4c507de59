package main

import (
	"bytes"
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

type countingRunner struct {
	calls  atomic.Int32
	notify atomic.Bool
}

func (r *countingRunner) Watchlist(_ context.Context, req pipeline.WatchlistRequest) []pipeline.WatchlistRow {
	r.calls.Add(1)
	r.notify.Store(req.Notify)

	return []pipeline.WatchlistRow{{Symbol: "BTC", Signal: types.SignalHold}}
}

type ServerCmdTestSuite struct {
	suite.Suite
}

func TestServerCmdSuite(t *testing.T) {
	suite.Run(t, new(ServerCmdTestSuite))
}

func (suite *ServerCmdTestSuite) TestRefreshLoopNotifiesUntilCancelled() {
	runner := &countingRunner{}
	cfg := config.WatchlistConfig{
		Symbols:         []string{"BTC"},
		Timeframe:       types.Timeframe1d,
		RefreshInterval: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		refreshLoop(ctx, runner, cfg, logger.NewNopLogger())
		close(done)
	}()

	suite.Eventually(func() bool { return runner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		suite.Fail("refresh loop did not stop")
	}

	suite.True(runner.notify.Load())
}

func (suite *ServerCmdTestSuite) TestRefreshLoopDisabled() {
	runner := &countingRunner{}

	refreshLoop(context.Background(), runner, config.WatchlistConfig{}, logger.NewNopLogger())

	suite.Equal(int32(0), runner.calls.Load())
}

func (suite *ServerCmdTestSuite) TestSchemaCommand() {
	var out bytes.Buffer

	cmd := newCommand()
	cmd.Writer = &out

	err := cmd.Run(context.Background(), []string{"argo-signal", "schema"})
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal(out.Bytes(), &schema))
	suite.Contains(out.String(), "market_data")
}

func (suite *ServerCmdTestSuite) TestRegistryHasRuntimeCollectors() {
	families, err := newRegistry().Gather()
	suite.Require().NoError(err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}

	suite.Contains(names, "go_goroutines")
}
