package validate

import (
	"context"
	"sync"
	"sync/atomic"

	ad "github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/errors"
)

// memStore is a Storelike over fixed maps.
type memStore struct {
	resources  []ad.Resource
	properties map[string]ad.Property
	classes    map[string][]ad.Class
	classErrs  map[string]error
}

func (m *memStore) AllResources() []ad.Resource {
	return m.resources
}

func (m *memStore) GetProperty(url string) (*ad.Property, error) {
	p, ok := m.properties[url]
	if !ok {
		return nil, errors.NewNotFoundError("property %s is not in the store", url)
	}
	return &p, nil
}

func (m *memStore) GetClassesForSubject(subject string) ([]ad.Class, error) {
	if err, ok := m.classErrs[subject]; ok {
		return nil, err
	}
	return m.classes[subject], nil
}

// fakeFetcher fails for the subjects in fail and counts calls.
type fakeFetcher struct {
	fail     map[string]bool
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
	gate     chan struct{}
}

func (f *fakeFetcher) FetchResource(ctx context.Context, subject string) (ad.Resource, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.fail[subject] {
		return ad.Resource{}, errors.NewFetchError("%s returned status 404", subject)
	}
	return ad.Resource{Subject: subject}, nil
}

// recordingTracer counts events.
type recordingTracer struct {
	mu        sync.Mutex
	resources []string
	classes   []string
	required  []string
	done      map[string]bool
}

func (t *recordingTracer) Resource(r ad.Resource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resources = append(t.resources, r.Subject)
}

func (t *recordingTracer) Class(subject string, class ad.Class) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.classes = append(t.classes, class.Subject)
}

func (t *recordingTracer) Required(subject, property, class string, found bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.required = append(t.required, property)
}

func (t *recordingTracer) ResourceDone(subject string, complete bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		t.done = map[string]bool{}
	}
	t.done[subject] = complete
}
