package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/ticket-qc/internal/service"
	"github.com/godilite/ticket-qc/internal/ticket"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

// Request fields.
const (
	fieldStartDate = "start_date"
	fieldEndDate   = "end_date"
	fieldNumber    = "number"
)

type CacheKeyType string

const (
	cacheKeyOverallScore         CacheKeyType = "grpc:overall_quality_score"
	cacheKeyTicketScores         CacheKeyType = "grpc:scores_by_ticket"
	cacheKeyPeriodChange         CacheKeyType = "grpc:period_over_period_score_change"
	cacheKeyAggregatedCheckpoint CacheKeyType = "grpc:aggregated_checkpoint_scores"
	cacheKeyAgentSummary         CacheKeyType = "grpc:agent_summary"
	cacheKeyKPIs                 CacheKeyType = "grpc:kpis"
	cacheKeyTicketReport         CacheKeyType = "grpc:ticket_report"
)

type GRPCHandlers struct {
	scoring ScoringService
	rt      *readThrough
	logger  *zap.Logger
}

var _ QualityReportServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil.
func NewGRPCHandlers(scoring ScoringService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if scoring == nil {
		panic("nil ScoringService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	logger = logger.Named("grpc-handler")
	return &GRPCHandlers{
		scoring: scoring,
		rt:      &readThrough{cache: cache, ttl: ttl, logger: logger},
		logger:  logger,
	}
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return strings.TrimSpace(k.StringValue), nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
}

func parseDate(req *structpb.Struct, name string) (time.Time, error) {
	raw, err := stringField(req, name)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "%s must be an RFC3339 timestamp", name)
	}
	return t, nil
}

// parseWindow reads the optional date window. Both dates or neither must be
// given; neither selects every ticket of the run.
func (s *GRPCHandlers) parseWindow(req *structpb.Struct) (start, end time.Time, err error) {
	if start, err = parseDate(req, fieldStartDate); err != nil {
		return
	}
	if end, err = parseDate(req, fieldEndDate); err != nil {
		return
	}

	if start.IsZero() != end.IsZero() {
		err = status.Error(codes.InvalidArgument, "start and end dates must be given together")
		return
	}
	if end.Before(start) {
		err = status.Error(codes.InvalidArgument, "end date must be after start date")
		return
	}
	return
}

func windowPart(t time.Time) string {
	if t.IsZero() {
		return "all"
	}
	return t.UTC().Format(time.RFC3339)
}

// normalizeKey scopes a cache entry to the current run so a rescored batch
// never serves stale reports.
func (s *GRPCHandlers) normalizeKey(prefix CacheKeyType, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", prefix, s.scoring.CurrentRunID(), windowPart(start), windowPart(end))
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrNoTickets):
		s.logger.Info("no tickets found", zap.String("op", op))
		return status.Error(codes.NotFound, "no tickets found for the given period")
	case errors.Is(err, service.ErrNotFound):
		s.logger.Info("ticket not found", zap.String("op", op))
		return status.Error(codes.NotFound, "ticket not found")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "storage error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) respond(op string, body map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(body)
	if err != nil {
		s.logger.Error("failed to encode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: encode response", op)
	}
	return out, nil
}

func hoursValue(h ticket.Hours) any {
	if !h.Valid {
		return nil
	}
	return h.Value
}

func (s *GRPCHandlers) GetOverallQualityScore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := s.parseWindow(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.normalizeKey(cacheKeyOverallScore, start, end)
	score, err := findAndCache(ctx, s.rt, cacheKey, func(fetchCtx context.Context) (float64, error) {
		return s.scoring.GetOverallScore(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, MethodOverallQualityScore, err)
	}

	return s.respond(MethodOverallQualityScore, map[string]any{
		"run_id": s.scoring.CurrentRunID(),
		"score":  score,
	})
}

func (s *GRPCHandlers) GetScoresByTicket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := s.parseWindow(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.normalizeKey(cacheKeyTicketScores, start, end)
	scores, err := findAndCache(ctx, s.rt, cacheKey, func(fetchCtx context.Context) ([]service.TicketScores, error) {
		return s.scoring.GetScoresByTicket(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, MethodScoresByTicket, err)
	}

	rows := make([]any, len(scores))
	for i, ts := range scores {
		checkpoints := make(map[string]any, len(ts.CheckpointScores))
		for id, v := range ts.CheckpointScores {
			checkpoints[id] = v
		}
		rows[i] = map[string]any{
			"number":            ts.Number,
			"checkpoint_scores": checkpoints,
			"qc_total":          ts.Total,
			"qc_percent":        ts.Percent,
		}
	}
	return s.respond(MethodScoresByTicket, map[string]any{"ticket_scores": rows})
}

func (s *GRPCHandlers) GetPeriodOverPeriodScoreChange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := s.parseWindow(req)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "start and end dates are required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.normalizeKey(cacheKeyPeriodChange, start, end)
	change, err := findAndCache(ctx, s.rt, cacheKey, func(fetchCtx context.Context) (service.PeriodChange, error) {
		return s.scoring.GetPeriodOverPeriodScoreChange(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, MethodPeriodOverPeriodScoreChange, err)
	}

	return s.respond(MethodPeriodOverPeriodScoreChange, map[string]any{
		"current_period_score":  change.CurrentPeriodScore,
		"previous_period_score": change.PreviousPeriodScore,
		"change_percentage":     change.ChangePercentage,
	})
}

func (s *GRPCHandlers) GetAggregatedCheckpointScores(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := s.parseWindow(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.normalizeKey(cacheKeyAggregatedCheckpoint, start, end)
	results, err := findAndCache(ctx, s.rt, cacheKey, func(fetchCtx context.Context) ([]service.AggregatedCheckpointScores, error) {
		return s.scoring.GetAggregatedCheckpointScores(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, MethodAggregatedCheckpointScores, err)
	}

	return s.respond(MethodAggregatedCheckpointScores, map[string]any{
		"checkpoint_scores": mapCheckpointScores(results),
	})
}

func mapCheckpointScores(scores []service.AggregatedCheckpointScores) []any {
	out := make([]any, len(scores))
	for i, cp := range scores {
		periods := make([]any, len(cp.PeriodScores))
		for j, p := range cp.PeriodScores {
			periods[j] = map[string]any{
				"period": p.Period,
				"score":  p.Score,
			}
		}
		out[i] = map[string]any{
			"checkpoint_id": cp.CheckpointID,
			"label":         cp.Label,
			"ticket_count":  cp.TicketCount,
			"overall_score": cp.OverallScore,
			"period_scores": periods,
		}
	}
	return out
}

func (s *GRPCHandlers) GetAgentSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := s.parseWindow(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.normalizeKey(cacheKeyAgentSummary, start, end)
	agents, err := findAndCache(ctx, s.rt, cacheKey, func(fetchCtx context.Context) ([]service.AgentSummary, error) {
		return s.scoring.GetAgentSummary(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, MethodAgentSummary, err)
	}

	rows := make([]any, len(agents))
	for i, a := range agents {
		means := make(map[string]any, len(a.CheckpointMeans))
		for id, v := range a.CheckpointMeans {
			means[id] = v
		}
		rows[i] = map[string]any{
			"agent":            a.Agent,
			"ticket_count":     a.TicketCount,
			"mean_percent":     a.MeanPercent,
			"checkpoint_means": means,
		}
	}
	return s.respond(MethodAgentSummary, map[string]any{"agents": rows})
}

func (s *GRPCHandlers) GetKPIs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := s.parseWindow(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := s.normalizeKey(cacheKeyKPIs, start, end)
	kpis, err := findAndCache(ctx, s.rt, cacheKey, func(fetchCtx context.Context) (service.KPIs, error) {
		return s.scoring.GetKPIs(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, MethodKPIs, err)
	}

	return s.respond(MethodKPIs, map[string]any{
		"ticket_count":      kpis.TicketCount,
		"reopen_rate":       kpis.ReopenRate,
		"pass_rate":         kpis.PassRate,
		"median_mttr_hours": hoursValue(kpis.MedianMTTR),
		"mean_percent":      kpis.MeanPercent,
	})
}

func (s *GRPCHandlers) GetTicketReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number, err := stringField(req, fieldNumber)
	if err != nil {
		return nil, err
	}
	if number == "" {
		return nil, status.Error(codes.InvalidArgument, "number is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := fmt.Sprintf("%s:%s:%s", cacheKeyTicketReport, s.scoring.CurrentRunID(), number)
	report, err := findAndCache(ctx, s.rt, cacheKey, func(fetchCtx context.Context) (service.TicketReport, error) {
		return s.scoring.GetTicketReport(fetchCtx, number)
	})
	if err != nil {
		return nil, s.handleError(ctx, MethodTicketReport, err)
	}

	scores := make([]any, len(report.Scores))
	for i, cs := range report.Scores {
		scores[i] = map[string]any{
			"id":    cs.ID,
			"label": cs.Label,
			"score": cs.Score,
		}
	}
	recs := make([]any, len(report.Recommendations))
	for i, r := range report.Recommendations {
		recs[i] = r
	}

	return s.respond(MethodTicketReport, map[string]any{
		"number":              report.Number,
		"agent_name":          report.Agent,
		"category":            report.Category,
		"subcategory":         report.Subcategory,
		"priority":            report.Priority,
		"mttr_hours":          hoursValue(report.MTTR),
		"response_time_hours": hoursValue(report.ResponseTime),
		"scores":              scores,
		"qc_total":            report.Total,
		"qc_percent":          report.Percent,
		"qc_weighted_percent": report.WeightedPercent,
		"recommendations":     recs,
	})
}
