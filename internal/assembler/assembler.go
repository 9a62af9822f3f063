// Package assembler builds complete trajectories from generated skeletons.
package assembler

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/catalog"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/generator"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/synth"
)

// MaxAttempts is the initial generation plus one retry.
const MaxAttempts = 2

// ErrTooFewActions is returned when dropping unaddressable actions leaves
// fewer than models.MinActions.
var ErrTooFewActions = errors.New("too few actions after dropping missing targets")

// Request describes one trajectory to assemble.
type Request struct {
	WorkflowType models.WorkflowType
	UserType     models.UserType
	Goal         string
	TargetLength int
	DeviceType   string
	BrowserType  string
	Seed         uint64
}

// Outcome reports what an Assemble call spent.
type Outcome struct {
	Attempts       int
	DroppedActions int
}

type Assembler struct {
	gen         generator.StructuredGenerator
	catalog     *catalog.Catalog
	callTimeout time.Duration
	now         func() time.Time
}

// New creates an Assembler. A zero callTimeout leaves generator calls bounded
// only by ctx.
func New(gen generator.StructuredGenerator, c *catalog.Catalog, callTimeout time.Duration) *Assembler {
	return &Assembler{gen: gen, catalog: c, callTimeout: callTimeout, now: time.Now}
}

// Assemble generates one trajectory, retrying once on any failure. After the
// retry it returns a *models.GenerationFailure.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*models.Trajectory, Outcome, error) {
	var (
		out     Outcome
		lastErr error
		failure models.FailureType
	)
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		out.Attempts = attempt
		traj, dropped, ft, err := a.attempt(ctx, req, attempt)
		out.DroppedActions += dropped
		if err == nil {
			return traj, out, nil
		}
		if ctx.Err() != nil {
			return nil, out, &models.GenerationFailure{Type: models.FailCancelled, Attempts: attempt, Err: ctx.Err()}
		}
		zap.L().Debug("generation attempt failed",
			zap.String("workflow_type", string(req.WorkflowType)),
			zap.String("goal", req.Goal),
			zap.Int("attempt", attempt),
			zap.String("failure_type", string(ft)),
			zap.Error(err),
		)
		lastErr, failure = err, ft
	}
	return nil, out, &models.GenerationFailure{Type: failure, Attempts: MaxAttempts, Err: lastErr}
}

func (a *Assembler) attempt(ctx context.Context, req Request, attempt int) (*models.Trajectory, int, models.FailureType, error) {
	seed := req.Seed + uint64(attempt-1)*0x9e37_79b9_7f4a_7c15
	sreq := generator.SkeletonRequest{
		WorkflowType: req.WorkflowType,
		UserType:     req.UserType,
		Goal:         req.Goal,
		Length:       req.TargetLength,
		Domain:       a.catalog.Domain(req.WorkflowType, int(seed%1024)),
		Seed:         seed,
	}

	callCtx := ctx
	if a.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}
	sk, err := a.gen.GenerateSkeleton(callCtx, sreq)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, 0, models.FailGenerationTimeout, err
		}
		return nil, 0, classify(err), err
	}
	if err := generator.Normalize(sk, sreq); err != nil {
		return nil, 0, models.FailSchemaViolation, err
	}

	sessionID := "session_" + uuid.NewString()
	s := synth.New(synth.NewProfile(req.UserType, seed), sessionID, "tab_"+uuid.NewString())

	actions := make([]models.BrowserAction, 0, len(sk.Actions))
	cur := synth.Cursor{}
	dropped := 0
	for _, desc := range sk.Actions {
		act, err := s.Synthesize(desc, len(actions), cur)
		var mt *models.MissingTargetError
		if errors.As(err, &mt) {
			dropped++
			zap.L().Debug("dropping action", zap.Error(err))
			continue
		}
		if err != nil {
			return nil, dropped, classify(err), err
		}
		actions = append(actions, act)
		cur = cur.Advance(act)
	}
	if len(actions) < models.MinActions {
		return nil, dropped, models.FailTooFewActions, ErrTooFewActions
	}

	traj := &models.Trajectory{
		TrajectoryID: "traj_" + uuid.NewString(),
		SessionID:    sessionID,
		Actions:      actions,
		WorkflowType: req.WorkflowType,
		Domain:       deriveDomain(actions, sk.Domain),
		UserType:     req.UserType,
		DeviceType:   req.DeviceType,
		BrowserType:  req.BrowserType,
		Goal:         req.Goal,
		CreatedAt:    a.now().UTC(),
	}
	traj.StampTiming()
	traj.GoalAchieved, traj.SuccessIndicators = goalOutcome(actions, a.catalog.CompletionSignals(req.WorkflowType, req.Goal))
	return traj, dropped, "", nil
}

func classify(err error) models.FailureType {
	var sv *models.SchemaViolation
	if errors.As(err, &sv) {
		return models.FailSchemaViolation
	}
	return models.FailGeneration
}

// deriveDomain takes the host of the first navigate, then of the first action
// carrying a URL, then the skeleton's own domain.
func deriveDomain(actions []models.BrowserAction, fallback string) string {
	for _, a := range actions {
		if a.Type() == models.ActionNavigate {
			if h := Host(a.URL); h != "" {
				return h
			}
		}
	}
	for _, a := range actions {
		if h := Host(a.URL); h != "" {
			return h
		}
	}
	return fallback
}

// Host returns the lowercased host of raw, or "" if it has none.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// goalOutcome reports whether the final action completes the goal, and the
// sorted set of completion signals seen anywhere in the trajectory.
func goalOutcome(actions []models.BrowserAction, signals []string) (bool, []string) {
	matches := func(a models.BrowserAction) []string {
		var out []string
		if a.UserIntent != "" && slices.Contains(signals, a.UserIntent) {
			out = append(out, a.UserIntent)
		}
		if t := string(a.Type()); slices.Contains(signals, t) {
			out = append(out, t)
		}
		return out
	}

	indicators := []string{}
	for _, a := range actions {
		indicators = append(indicators, matches(a)...)
	}
	slices.Sort(indicators)
	indicators = slices.Compact(indicators)

	achieved := len(actions) > 0 && len(matches(actions[len(actions)-1])) > 0
	return achieved, indicators
}
