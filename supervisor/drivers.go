/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package supervisor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel runs every task with at most concurrency simultaneously live.
// A task failing does not stop the others. Results are returned in
// submission order, not completion order.
func (s *Supervisor) Parallel(ctx context.Context, tasks []Task, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]Result, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			results[i] = s.runCommand(gctx, t)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Sequential starts the next task only once the previous has exited, and
// stops at the first failure. The returned slice holds exactly the results
// of the tasks attempted, in order.
func (s *Supervisor) Sequential(ctx context.Context, tasks []Task) []Result {
	var results []Result
	for _, t := range tasks {
		r := s.runCommand(ctx, t)
		results = append(results, r)
		if !r.Success {
			break
		}
	}
	return results
}

// Batched runs each batch's members in parallel (bounded by concurrency);
// batch k+1 is withheld if any member of batch k failed. A failed batch's
// own in-flight siblings still run to completion.
func (s *Supervisor) Batched(ctx context.Context, batches [][]Task, concurrency int) []Result {
	var all []Result
	for _, batch := range batches {
		batchResults := s.Parallel(ctx, batch, concurrency)
		all = append(all, batchResults...)

		failed := false
		for _, r := range batchResults {
			if !r.Success {
				failed = true
				break
			}
		}
		if failed {
			break
		}
	}
	return all
}
