package evaluation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-prospect/internal/domain"
	"github.com/ahrav/go-prospect/internal/ports"
)

var validate = validator.New()

// Placeholder prefixes used in assessment slots so a reader of the
// records can tell a failed character from a skipped one.
const (
	errorPlaceholderPrefix   = "[error] "
	skippedPlaceholderPrefix = "[skipped] "
)

// opinionSeparator joins character outputs in the summary context.
const opinionSeparator = "\n\n---\n\n"

// Options configures an Orchestrator.
type Options struct {
	// Characters is the evaluation panel. Names must be unique and must
	// not collide with the summary character.
	Characters []CharacterSpec `validate:"min=1,dive"`

	// Summary, when set, synthesizes the panel's settled outputs into a
	// final verdict per unit. It sees the original feature context plus
	// one "<name>_opinion" entry per successful character and the joined
	// "opinions" text.
	Summary *CharacterSpec

	// BaseParams carries the batch-wide sampling parameters; character
	// temperature offsets are applied on top of BaseParams.Temperature.
	BaseParams ports.RequestParams

	// Retry controls backoff for transient request failures.
	Retry RetryPolicy

	// MaxConcurrency bounds the number of units evaluated at once.
	// Zero or negative means unbounded.
	MaxConcurrency int
}

// Orchestrator fans evaluation units out across a character panel. Each
// (unit, character) pair is an independent task: transient failures are
// retried with backoff, permanent ones leave a placeholder in the
// record and an entry in the failure ledger, and no failure anywhere
// stalls the rest of the batch.
type Orchestrator struct {
	service ports.EvaluationService
	opts    Options
}

// NewOrchestrator validates the options and returns an orchestrator
// bound to the given service.
func NewOrchestrator(service ports.EvaluationService, opts Options) (*Orchestrator, error) {
	if service == nil {
		return nil, domain.NewConfigError("service", "evaluation service is required")
	}
	if err := validate.Struct(opts); err != nil {
		return nil, domain.NewConfigError("orchestrator", "invalid options: %v", err)
	}

	seen := make(map[string]struct{}, len(opts.Characters))
	for _, c := range opts.Characters {
		if _, dup := seen[c.Name]; dup {
			return nil, domain.NewConfigError("characters", "duplicate character name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	if opts.Summary != nil {
		if _, dup := seen[opts.Summary.Name]; dup {
			return nil, domain.NewConfigError("summary",
				"summary character name %q collides with a panel character", opts.Summary.Name)
		}
	}

	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	return &Orchestrator{service: service, opts: opts}, nil
}

// task identifies one unit of work for error reporting and the ledger.
type task struct {
	subjectID string
	character string
}

func (t task) String() string { return t.subjectID + "/" + t.character }

// unitOutcome is what one unit's evaluation settles to: a record (nil
// for malformed units) plus zero or more ledger entries.
type unitOutcome struct {
	record   *domain.EvaluationRecord
	failures []domain.FailureEntry
}

// EvaluateBatch evaluates all units concurrently and returns the
// completed records together with the failure ledger. Every unit
// appears exactly once in either the records (possibly with error
// placeholders in individual assessment slots) or, for units that could
// not be constructed at all, in the ledger alone.
//
// Cancelling the context stops in-flight work; records completed before
// cancellation are still returned, and the returned error reports the
// cancellation.
func (o *Orchestrator) EvaluateBatch(
	ctx context.Context, units []domain.EvaluationUnit,
) ([]domain.EvaluationRecord, *domain.FailureLedger, error) {
	ledger := &domain.FailureLedger{}
	if len(units) == 0 {
		return nil, ledger, nil
	}

	outcomes := make(chan unitOutcome, len(units))

	var g errgroup.Group
	if o.opts.MaxConcurrency > 0 {
		g.SetLimit(o.opts.MaxConcurrency)
	}
	for _, unit := range units {
		g.Go(func() error {
			outcomes <- o.evaluateUnit(ctx, unit)
			return nil
		})
	}
	go func() {
		g.Wait() //nolint:errcheck // tasks never return errors
		close(outcomes)
	}()

	// Single collector: records and ledger entries are appended here
	// only, so neither needs locking.
	records := make([]domain.EvaluationRecord, 0, len(units))
	for outcome := range outcomes {
		if outcome.record != nil {
			records = append(records, *outcome.record)
		}
		for _, f := range outcome.failures {
			ledger.Append(f)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SubjectID < records[j].SubjectID
	})
	return records, ledger, ctx.Err()
}

// evaluateUnit runs the full panel plus summary for one unit. Malformed
// units produce no record, only a ledger entry.
func (o *Orchestrator) evaluateUnit(ctx context.Context, unit domain.EvaluationUnit) unitOutcome {
	subjectID := unit.SubjectID()
	promptCtx, err := unit.PromptContext()
	if err != nil {
		if subjectID == "" {
			subjectID = "unknown"
		}
		return unitOutcome{failures: []domain.FailureEntry{{
			SubjectID: subjectID,
			Reason:    fmt.Sprintf("malformed unit: %v", err),
		}}}
	}

	chars := o.opts.Characters
	texts := make([]string, len(chars))
	charFailures := make([]*domain.FailureEntry, len(chars))

	// Inner fan-out: every character writes only its own slot, so the
	// slices need no locking.
	var wg sync.WaitGroup
	for i, spec := range chars {
		wg.Add(1)
		go func() {
			defer wg.Done()
			texts[i], charFailures[i] = o.runTask(ctx, task{subjectID, spec.Name}, spec, promptCtx)
		}()
	}
	wg.Wait()

	outcome := unitOutcome{record: &domain.EvaluationRecord{
		SubjectID:   subjectID,
		Context:     promptCtx,
		Assessments: make(map[string]string, len(chars)),
	}}
	for i, spec := range chars {
		outcome.record.Assessments[spec.Name] = texts[i]
		if charFailures[i] != nil {
			outcome.failures = append(outcome.failures, *charFailures[i])
		}
	}

	if o.opts.Summary != nil {
		summary, failure := o.summarize(ctx, subjectID, promptCtx, chars, texts, charFailures)
		outcome.record.Summary = summary
		if failure != nil {
			outcome.failures = append(outcome.failures, *failure)
		}
	}
	return outcome
}

// summarize runs the summary character over the panel's successful
// outputs. It starts only after every panel task has settled, so the
// narrator always sees the complete set of opinions that will exist.
func (o *Orchestrator) summarize(
	ctx context.Context,
	subjectID string,
	promptCtx map[string]string,
	chars []CharacterSpec,
	texts []string,
	charFailures []*domain.FailureEntry,
) (string, *domain.FailureEntry) {
	opinions := make([]string, 0, len(chars))
	summaryCtx := make(map[string]string, len(promptCtx)+len(chars)+1)
	for k, v := range promptCtx {
		summaryCtx[k] = v
	}
	for i, spec := range chars {
		if charFailures[i] != nil {
			continue
		}
		summaryCtx[spec.Name+"_opinion"] = texts[i]
		opinions = append(opinions, fmt.Sprintf("[%s]\n%s", spec.Name, texts[i]))
	}

	if len(opinions) == 0 {
		return skippedPlaceholderPrefix + "no character assessments available", nil
	}
	summaryCtx["opinions"] = strings.Join(opinions, opinionSeparator)

	return o.runTask(ctx, task{subjectID, o.opts.Summary.Name}, *o.opts.Summary, summaryCtx)
}

// runTask executes one (unit, character) request with retries. A
// permanent failure returns an error placeholder as the text plus the
// ledger entry; it never propagates as an error.
func (o *Orchestrator) runTask(
	ctx context.Context, t task, spec CharacterSpec, promptCtx map[string]string,
) (string, *domain.FailureEntry) {
	rendered, err := RenderPrompt(spec.Name, spec.InputTemplate, promptCtx)
	if err != nil {
		// Configuration errors are fatal per task, never retried.
		return errorPlaceholderPrefix + err.Error(), &domain.FailureEntry{
			SubjectID: t.subjectID,
			Character: t.character,
			Reason:    err.Error(),
		}
	}

	userPrompt := rendered
	if spec.Instruction != "" {
		userPrompt = spec.Instruction + "\n\n" + rendered
	}
	params := o.opts.BaseParams
	params.Temperature = spec.Temperature(o.opts.BaseParams.Temperature)

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= o.opts.Retry.MaxAttempts; attempt++ {
		attempts = attempt
		text, err := o.service.Request(ctx, spec.SystemPrompt(), userPrompt, params)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == o.opts.Retry.MaxAttempts {
			break
		}
		if err := o.opts.Retry.Sleep(ctx, attempt); err != nil {
			lastErr = fmt.Errorf("retry interrupted: %w", err)
			break
		}
	}

	reason := fmt.Sprintf("task %s failed after %d attempt(s): %v", t, attempts, lastErr)
	return errorPlaceholderPrefix + lastErr.Error(), &domain.FailureEntry{
		SubjectID: t.subjectID,
		Character: t.character,
		Reason:    reason,
	}
}
