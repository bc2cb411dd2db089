package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/carcost/internal/live"
	"github.com/Simplici0/carcost/internal/report"
	"github.com/Simplici0/carcost/internal/store"
)

const recomputeTimeout = 10 * time.Second

// currentViews prices every stored vehicle, cheapest first.
func (s *server) currentViews(ctx context.Context) ([]vehicleView, error) {
	vehicles, err := s.store.ListVehicles(ctx, store.VehicleFilter{})
	if err != nil {
		return nil, err
	}
	in, err := s.loadPricingInputs(ctx)
	if err != nil {
		return nil, err
	}
	return s.rankedViews(ctx, in, vehicles, report.SortByTotalCost)
}

// broadcastBreakdowns recomputes every vehicle and pushes the result to live clients.
func (s *server) broadcastBreakdowns() {
	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	views, err := s.currentViews(ctx)
	if err != nil {
		s.logger.Error("recompute breakdowns", zap.Error(err))
		s.hub.BroadcastMessage(live.MsgTypeError, "failed to recompute breakdowns")
		return
	}
	s.logger.Debug("broadcasting breakdowns", zap.Int("vehicles", len(views)))
	s.hub.BroadcastMessage(live.MsgTypeBreakdowns, views)
}

// initData is sent to each WebSocket client when it connects.
func (s *server) initData() any {
	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	views, err := s.currentViews(ctx)
	if err != nil {
		s.logger.Error("load initial breakdowns", zap.Error(err))
		return []vehicleView{}
	}
	return views
}
