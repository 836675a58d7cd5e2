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
	"bytes"
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shellTask(name, script string) Task {
	if runtime.GOOS == "windows" {
		return Task{PackageName: name, Command: "cmd", Args: []string{"/C", script}}
	}
	return Task{PackageName: name, Command: "sh", Args: []string{"-c", script}}
}

func newTestSupervisor() *Supervisor {
	return &Supervisor{
		Sink:     NewWriterSink(&bytes.Buffer{}),
		colors:   NewColorAssigner(),
		children: make(map[int]*liveChild),
	}
}

func TestParallelReturnsResultsInSubmissionOrder(t *testing.T) {
	s := newTestSupervisor()
	tasks := []Task{
		shellTask("c", "exit 0"),
		shellTask("a", "exit 0"),
		shellTask("b", "exit 1"),
	}
	results := s.Parallel(context.Background(), tasks, 3)

	require.Len(t, results, 3)
	assert.Equal(t, "c", results[0].PackageName)
	assert.Equal(t, "a", results[1].PackageName)
	assert.Equal(t, "b", results[2].PackageName)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.False(t, results[2].Success)
}

func TestParallelNeverExceedsConcurrencyBound(t *testing.T) {
	s := newTestSupervisor()
	const bound = 2
	var maxSeen int32
	var mu sync.Mutex

	tasks := make([]Task, 6)
	for i := range tasks {
		tasks[i] = shellTask("pkg", "sleep 0.05")
	}

	// Wrap runCommand indirectly by observing live child count through the
	// supervisor's own bookkeeping, sampled from a watcher goroutine.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				n := int32(s.LiveChildCount())
				mu.Lock()
				if n > maxSeen {
					maxSeen = n
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
			}
		}
	}()

	s.Parallel(context.Background(), tasks, bound)
	close(stop)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, int(maxSeen), bound)
}

func TestSequentialStopsAtFirstFailure(t *testing.T) {
	s := newTestSupervisor()
	tasks := []Task{
		shellTask("a", "exit 0"),
		shellTask("b", "exit 1"),
		shellTask("c", "exit 0"),
	}
	results := s.Sequential(context.Background(), tasks)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
}

func TestBatchedWithholdsSubsequentBatchOnFailure(t *testing.T) {
	s := newTestSupervisor()
	batches := [][]Task{
		{shellTask("a", "exit 1")},
		{shellTask("b", "exit 0")},
	}
	results := s.Batched(context.Background(), batches, 2)

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].PackageName)
	assert.False(t, results[0].Success)
}

func TestBatchedRunsAllBatchesOnSuccess(t *testing.T) {
	s := newTestSupervisor()
	batches := [][]Task{
		{shellTask("a", "exit 0"), shellTask("b", "exit 0")},
		{shellTask("c", "exit 0")},
	}
	results := s.Batched(context.Background(), batches, 2)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestColorAssignerIsStablePerName(t *testing.T) {
	c := NewColorAssigner()
	first := c.ColorFor("app")
	second := c.ColorFor("app")
	assert.Equal(t, first, second)

	var calls int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ColorFor("concurrent")
			atomic.AddInt64(&calls, 1)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 10, calls)
}
