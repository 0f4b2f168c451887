package validate

import (
	"go.uber.org/zap"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/logger"
)

// Tracer observes the walk. Calls happen on the walking goroutine in store
// enumeration order; fetches are not traced.
type Tracer interface {
	// Resource is called before a resource's values are checked.
	Resource(r atomic.Resource)
	// Class is called for every class the subject claims.
	Class(subject string, class atomic.Class)
	// Required is called for every property a class requires.
	Required(subject, property, class string, found bool)
	// ResourceDone is called after a resource; complete is false when a
	// property or class lookup failure cut its checks short.
	ResourceDone(subject string, complete bool)
}

// NopTracer ignores every event.
type NopTracer struct{}

func (NopTracer) Resource(atomic.Resource)              {}
func (NopTracer) Class(string, atomic.Class)            {}
func (NopTracer) Required(string, string, string, bool) {}
func (NopTracer) ResourceDone(string, bool)             {}

// LogTracer writes every event at debug level.
type LogTracer struct {
	logger *zap.SugaredLogger
}

// NewLogTracer creates a tracer logging to l.
func NewLogTracer(l *zap.SugaredLogger) *LogTracer {
	return &LogTracer{logger: l}
}

func (t *LogTracer) Resource(r atomic.Resource) {
	t.logger.Debugw("Checking resource",
		logger.FieldSubject, r.Subject,
		logger.FieldCount, len(r.Values),
	)
}

func (t *LogTracer) Class(subject string, class atomic.Class) {
	t.logger.Debugw("Checking class",
		logger.FieldSubject, subject,
		logger.FieldClass, class.Shortname,
		"requires", len(class.Requires),
	)
}

func (t *LogTracer) Required(subject, property, class string, found bool) {
	t.logger.Debugw("Required property",
		logger.FieldSubject, subject,
		logger.FieldProperty, property,
		logger.FieldClass, class,
		logger.FieldFound, found,
	)
}

func (t *LogTracer) ResourceDone(subject string, complete bool) {
	t.logger.Debugw("Resource checked",
		logger.FieldSubject, subject,
		"complete", complete,
	)
}
