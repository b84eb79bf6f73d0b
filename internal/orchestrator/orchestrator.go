// Package orchestrator runs one analysis: the agents in dependency-ordered
// phases, the markets engine, the weighted consensus and arbitration. It
// never fails; a degraded analysis is still a complete one.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/matchday-consensus/internal/agents"
	"github.com/yourusername/matchday-consensus/internal/arbitration"
	"github.com/yourusername/matchday-consensus/internal/consensus"
	"github.com/yourusername/matchday-consensus/internal/fallback"
	"github.com/yourusername/matchday-consensus/internal/logger"
	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/metrics"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

var errNoOpinion = errors.New("agent returned no opinion")

// Config holds the per-request settings
type Config struct {
	Timeout  time.Duration
	Language string
}

// Results are the populated outputs of an analysis
type Results struct {
	Agents      []models.AgentReport     `json:"agents"`
	Consensus   models.ConsensusResult   `json:"consensus"`
	Arbitration models.ArbitrationResult `json:"arbitration"`
	Markets     *models.MarketSurface    `json:"markets"`
}

// Result is the complete outcome of one analysis. Errors lists every
// component that degraded; the rest is always populated.
type Result struct {
	Success    bool          `json:"success"`
	AnalysisID uuid.UUID     `json:"analysis_id"`
	Results    Results       `json:"results"`
	Errors     []string      `json:"errors"`
	TimingMs   models.Timing `json:"timing_ms"`
}

// Orchestrator coordinates the agents and the pure aggregation stages
type Orchestrator struct {
	phaseOne []agents.Agent
	phaseTwo []agents.Agent
	engine   *markets.Engine
	weights  consensus.Weights
	arbiter  *arbitration.Arbiter
	cfg      Config
	logger   *logrus.Logger
	alog     *logger.AnalysisLogger
}

// New creates an orchestrator. Phase two agents see the phase one opinions.
func New(
	phaseOne []agents.Agent,
	phaseTwo []agents.Agent,
	engine *markets.Engine,
	weights consensus.Weights,
	arbiter *arbitration.Arbiter,
	cfg Config,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		phaseOne: phaseOne,
		phaseTwo: phaseTwo,
		engine:   engine,
		weights:  weights,
		arbiter:  arbiter,
		cfg:      cfg,
		logger:   log,
		alog:     logger.NewAnalysisLogger(log),
	}
}

// Analyze runs the full pipeline for one fixture
func (o *Orchestrator) Analyze(ctx context.Context, match *models.MatchContext) *Result {
	start := time.Now()
	res := &Result{AnalysisID: uuid.New(), Errors: []string{}}
	fixtureID := match.FixtureID

	// Phase 1: independent agents and the markets engine, all concurrent.
	phaseStart := time.Now()
	reports := make([]models.AgentReport, len(o.phaseOne))
	var (
		surface    *models.MarketSurface
		marketsErr error
		marketsMs  int64
		g          errgroup.Group
	)

	in := &agents.Input{Match: match, Language: o.cfg.Language}
	for i, agent := range o.phaseOne {
		i, agent := i, agent
		g.Go(func() error {
			reports[i] = o.runAgent(ctx, agent, in, 1, fixtureID)
			return nil
		})
	}
	g.Go(func() error {
		t := time.Now()
		out := fallback.Do(ctx, "markets", func(context.Context) (*models.MarketSurface, error) {
			return o.engine.Analyze(match), nil
		}, func() *models.MarketSurface { return nil })
		surface, marketsErr = out.Value, out.Err
		marketsMs = time.Since(t).Milliseconds()
		return nil
	})
	_ = g.Wait()
	res.TimingMs.Phase1 = time.Since(phaseStart).Milliseconds()
	res.TimingMs.Markets = marketsMs
	if marketsErr != nil {
		res.Errors = append(res.Errors, marketsErr.Error())
		o.alog.LogFallback(fixtureID, "markets", marketsErr.Error())
		metrics.RecordFallback("markets")
	}

	// Phase 2 starts only after phase 1 has fully joined.
	phaseStart = time.Now()
	prior := models.Opinions(reports)
	in2 := &agents.Input{Match: match, Prior: prior, Language: o.cfg.Language}
	phaseTwo := make([]models.AgentReport, len(o.phaseTwo))
	var g2 errgroup.Group
	for i, agent := range o.phaseTwo {
		i, agent := i, agent
		g2.Go(func() error {
			phaseTwo[i] = o.runAgent(ctx, agent, in2, 2, fixtureID)
			return nil
		})
	}
	_ = g2.Wait()
	reports = append(reports, phaseTwo...)
	res.TimingMs.Phase2 = time.Since(phaseStart).Milliseconds()

	for _, r := range reports {
		if r.Error != "" {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", r.Kind, r.Error))
		}
	}
	opinions := models.Opinions(reports)

	// Phase 3: consensus always runs.
	phaseStart = time.Now()
	baseline := consensus.BaselineFromSurface(surface)
	cons := fallback.Do(ctx, "consensus", func(context.Context) (models.ConsensusResult, error) {
		return consensus.Calculate(o.weights, opinions, baseline), nil
	}, func() models.ConsensusResult {
		return consensus.Calculate(o.weights, nil, baseline)
	})
	if cons.Degraded {
		res.Errors = append(res.Errors, cons.Err.Error())
		o.alog.LogFallback(fixtureID, "consensus", cons.Err.Error())
		metrics.RecordFallback("consensus")
	}
	res.TimingMs.Consensus = time.Since(phaseStart).Milliseconds()

	phaseStart = time.Now()
	arb := o.arbiter.Arbitrate(ctx, arbitration.Input{
		Match:     match,
		Opinions:  opinions,
		Consensus: &cons.Value,
		Surface:   surface,
		Language:  o.cfg.Language,
	})
	res.TimingMs.Arbitration = time.Since(phaseStart).Milliseconds()
	for _, c := range arb.Contradictions {
		metrics.RecordContradiction(string(c.Severity))
	}
	o.alog.LogArbitration(fixtureID, string(arb.Mode), string(arb.PrimaryPick.Market), string(arb.PrimaryPick.Selection),
		arb.AgreementRatio, len(arb.Contradictions))

	res.Results = Results{
		Agents:      reports,
		Consensus:   cons.Value,
		Arbitration: arb,
		Markets:     surface,
	}
	res.Success = len(cons.Value.Markets) > 0 && len(opinions) > 0
	res.TimingMs.Total = time.Since(start).Milliseconds()

	metrics.RecordAnalysis(res.Success, time.Since(start).Seconds())
	o.alog.LogAnalysisCompleted(fixtureID, res.AnalysisID.String(), res.Success, len(opinions), len(reports), res.TimingMs.Total)
	return res
}

// runAgent calls one agent under its own timeout. Errors and panics become
// a report with a nil opinion.
func (o *Orchestrator) runAgent(ctx context.Context, agent agents.Agent, in *agents.Input, phase int, fixtureID int64) models.AgentReport {
	kind := agent.Kind()
	start := time.Now()

	out := fallback.Do(ctx, string(kind), func(ctx context.Context) (*models.AgentOpinion, error) {
		if o.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
			defer cancel()
		}
		op, err := agent.Run(ctx, in)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, reasoning.ErrTimeout) {
				err = fmt.Errorf("%w: %v", reasoning.ErrTimeout, err)
			}
			return nil, err
		}
		if op == nil {
			return nil, errNoOpinion
		}
		op.Kind = kind
		return op, nil
	}, func() *models.AgentOpinion { return nil })

	report := models.AgentReport{
		Kind:       kind,
		Phase:      phase,
		Opinion:    out.Value,
		DurationMs: time.Since(start).Milliseconds(),
	}
	metrics.RecordAgentCall(string(kind), !out.Degraded, time.Since(start).Seconds())

	if out.Degraded {
		report.Error = out.Err.Error()
		o.alog.LogAgentFailed(fixtureID, string(kind), phase, report.Error)
		return report
	}
	o.alog.LogAgentCompleted(fixtureID, string(kind), phase, report.DurationMs)
	return report
}
