// Package validate checks the resources of a store against the Atomic Data
// schema they declare: values against their property datatypes and resources
// against the properties their classes require. Defects are collected into a
// Report instead of stopping the walk.
package validate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/client"
	"github.com/soheilade/atomic-server/errors"
	"github.com/soheilade/atomic-server/internal/util"
	"github.com/soheilade/atomic-server/logger"
	"github.com/soheilade/atomic-server/store"
)

// DefaultFetchConcurrency is the number of subjects fetched at once.
const DefaultFetchConcurrency = 1

// ErrNoFetcher is recorded for every subject when fetching is requested from
// an engine without a Fetcher.
var ErrNoFetcher = errors.New("no fetcher configured")

// Fetcher retrieves a subject from where it is published. The returned
// resource is only used to decide success; it is never written to the store.
type Fetcher interface {
	FetchResource(ctx context.Context, subject string) (atomic.Resource, error)
}

// ValueParser interprets a raw value under a datatype.
type ValueParser func(raw string, dt atomic.Datatype) (atomic.Value, error)

// Engine walks a store and builds a Report. An Engine holds no per-run state
// and can be reused, including concurrently.
type Engine struct {
	fetcher          Fetcher
	parseValue       ValueParser
	tracer           Tracer
	logger           *zap.SugaredLogger
	fetchConcurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithFetcher sets the collaborator used when fetchItems is requested.
func WithFetcher(f Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithValueParser replaces atomic.NewValue.
func WithValueParser(p ValueParser) Option {
	return func(e *Engine) {
		if p != nil {
			e.parseValue = p
		}
	}
}

// WithTracer sets the walk observer.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithLogger sets the logger for run summaries.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithFetchConcurrency bounds parallel fetches; values below 1 mean 1.
func WithFetchConcurrency(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.fetchConcurrency = n
	}
}

// New creates an engine. Without WithFetcher, fetch requests fail with ErrNoFetcher.
func New(opts ...Option) *Engine {
	e := &Engine{
		parseValue:       atomic.NewValue,
		tracer:           NopTracer{},
		logger:           logger.ComponentLogger("validate"),
		fetchConcurrency: DefaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks every resource of s. With fetchItems, each subject is also
// fetched through the engine's Fetcher. Validate never fails: every problem
// ends up in the returned report.
func Validate(ctx context.Context, s store.Storelike, fetchItems bool) *Report {
	return New(WithFetcher(client.New(client.Options{}))).Validate(ctx, s, fetchItems)
}

// Validate checks every resource of s in enumeration order.
//
// A property lookup failure stops the checks of that resource: its remaining
// values and its classes are skipped. A class lookup failure likewise skips
// the requirement checks. The walk always continues with the next resource.
func (e *Engine) Validate(ctx context.Context, s store.Storelike, fetchItems bool) *Report {
	log := e.logger.With(logger.FieldRunID, uuid.NewString())
	start := time.Now()

	resources := s.AllResources()
	report := &Report{}

	if fetchItems {
		report.Unfetchable = e.fetchAll(ctx, resources, log)
	}

	for _, r := range resources {
		report.ResourceCount = util.SaturatingAdd(report.ResourceCount, 1)
		e.tracer.Resource(r)
		complete := e.checkResource(s, r, report)
		e.tracer.ResourceDone(r.Subject, complete)
	}

	log.Infow("Validation finished",
		logger.FieldResourceCount, report.ResourceCount,
		logger.FieldAtomCount, report.AtomCount,
		logger.FieldDefects, report.Defects(),
		"missing", len(report.MissingProps),
		logger.FieldValid, report.IsValid(),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return report
}

// checkResource records the defects of one resource and reports whether all
// of its checks ran.
func (e *Engine) checkResource(s store.Storelike, r atomic.Resource, report *Report) bool {
	found := make(map[string]bool, len(r.Values))
	for _, pv := range r.Values {
		report.AtomCount = util.SaturatingAdd(report.AtomCount, 1)

		prop, err := s.GetProperty(pv.Property)
		if err != nil {
			report.UnfetchableProps = append(report.UnfetchableProps, SubjectError{Subject: pv.Property, Err: err})
			return false
		}

		if _, err := e.parseValue(pv.Value, prop.DataType); err != nil {
			report.InvalidValues = append(report.InvalidValues, InvalidValue{
				Atom: atomic.NewAtom(r.Subject, pv.Property, pv.Value),
				Err:  err,
			})
		}
		found[pv.Property] = true
	}

	classes, err := s.GetClassesForSubject(r.Subject)
	if err != nil {
		report.UnfetchableClasses = append(report.UnfetchableClasses, SubjectError{Subject: r.Subject, Err: err})
		return false
	}

	for _, class := range classes {
		e.tracer.Class(r.Subject, class)
		for _, required := range class.Requires {
			ok := found[required.Subject]
			e.tracer.Required(r.Subject, required.Subject, class.Subject, ok)
			if !ok {
				report.MissingProps = append(report.MissingProps, MissingProp{
					Subject:  r.Subject,
					Property: required.Subject,
					Class:    class.Subject,
				})
			}
		}
	}
	return true
}

// fetchAll fetches every subject on a bounded pool. Results are stored by
// index so the failures come back in enumeration order.
func (e *Engine) fetchAll(ctx context.Context, resources []atomic.Resource, log *zap.SugaredLogger) []SubjectError {
	results := make([]error, len(resources))

	if e.fetcher == nil {
		for i := range results {
			results[i] = ErrNoFetcher
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.fetchConcurrency)
		for i, r := range resources {
			i, r := i, r
			g.Go(func() error {
				_, results[i] = e.fetcher.FetchResource(ctx, r.Subject)
				return nil
			})
		}
		_ = g.Wait()
	}

	var unfetchable []SubjectError
	for i, err := range results {
		if err == nil {
			continue
		}
		log.Debugw("Resource not fetchable",
			logger.FieldSubject, resources[i].Subject,
			logger.FieldError, err,
		)
		unfetchable = append(unfetchable, SubjectError{Subject: resources[i].Subject, Err: err})
	}

	log.Debugw("Fetched resources",
		logger.FieldCount, len(resources),
		"failed", len(unfetchable),
		logger.FieldConcurrency, e.fetchConcurrency,
	)
	return unfetchable
}
