package device

import (
	"context"
)

// Fake records every count and replays results in order; the last result
// repeats once the list is exhausted. With no results it always delivers.
type Fake struct {
	Results []Result
	Counts  []int
}

func NewFake(results ...Result) *Fake {
	return &Fake{Results: results}
}

func (svc *Fake) Update(_ context.Context, count int) Result {
	svc.Counts = append(svc.Counts, count)
	if len(svc.Results) == 0 {
		return Result{Outcome: Delivered, StatusCode: 200}
	}

	idx := len(svc.Counts) - 1
	if idx >= len(svc.Results) {
		idx = len(svc.Results) - 1
	}
	return svc.Results[idx]
}

func (svc *Fake) Close() error {
	return nil
}
