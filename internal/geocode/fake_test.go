package geocode

import (
	"context"
	"sync"
)

// fakeProvider records calls and answers from fixed data.
type fakeProvider struct {
	mu       sync.Mutex
	searches []SearchQuery
	reverses int
	results  []Suggestion
	reverse  *Suggestion
	err      error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, q SearchQuery) ([]Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeProvider) Reverse(_ context.Context, _, _ float64, _ []string) (*Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reverses++
	if f.err != nil {
		return nil, f.err
	}
	if f.reverse == nil {
		return nil, ErrNoResult
	}
	s := *f.reverse
	return &s, nil
}

func (f *fakeProvider) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeProvider) reverseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reverses
}
