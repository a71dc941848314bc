package parser

import (
	"container/heap"
	"context"
	"io"
)

// MergedSource combines multiple LineSources into a single stream ordered by
// track time (earliest first). Lines at the same time keep the order of the
// sources they came from. This lets several tracks, one per actuator, be
// played back as one timeline.
type MergedSource struct {
	sources []LineSource
	heap    *lineHeap
	started bool
	closed  bool
}

// NewMergedSource creates a LineSource that merges multiple sources by time.
func NewMergedSource(sources ...LineSource) *MergedSource {
	return &MergedSource{
		sources: sources,
		heap:    &lineHeap{},
	}
}

// Next returns the next line in time order across all sources.
// Returns io.EOF when all sources are exhausted.
func (m *MergedSource) Next(ctx context.Context) (*TimedLine, error) {
	if !m.started && !m.closed {
		m.started = true
		if err := m.initHeap(ctx); err != nil {
			return nil, err
		}
	}

	if m.heap.Len() == 0 {
		return nil, io.EOF
	}

	item := heap.Pop(m.heap).(*heapItem)

	// Refill from the same source
	next, err := m.sources[item.sourceIdx].Next(ctx)
	switch {
	case err == nil:
		heap.Push(m.heap, &heapItem{line: next, sourceIdx: item.sourceIdx})
	case err != io.EOF:
		return nil, err
	}

	return item.line, nil
}

// initHeap reads the first line from each source.
func (m *MergedSource) initHeap(ctx context.Context) error {
	heap.Init(m.heap)

	for i, src := range m.sources {
		line, err := src.Next(ctx)
		if err == io.EOF {
			continue
		}
		if err != nil {
			return err
		}
		heap.Push(m.heap, &heapItem{line: line, sourceIdx: i})
	}

	return nil
}

// Close releases all source resources and returns the first error.
func (m *MergedSource) Close() error {
	m.closed = true
	var firstErr error
	for _, src := range m.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type heapItem struct {
	line      *TimedLine
	sourceIdx int
}

// lineHeap orders lines by time, then by source position.
type lineHeap []*heapItem

func (h lineHeap) Len() int { return len(h) }

func (h lineHeap) Less(i, j int) bool {
	if h[i].line.TimeMs != h[j].line.TimeMs {
		return h[i].line.TimeMs < h[j].line.TimeMs
	}
	return h[i].sourceIdx < h[j].sourceIdx
}

func (h lineHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *lineHeap) Push(x any) {
	*h = append(*h, x.(*heapItem))
}

func (h *lineHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
