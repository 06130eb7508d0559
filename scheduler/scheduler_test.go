package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bad-mango-solutions/pocket2e/scheduler"
)

func TestAdvanceToFiresInOrder(t *testing.T) {
	s := scheduler.New()
	var fired []string
	s.ScheduleAt(100, func() { fired = append(fired, "a") })
	s.ScheduleAt(50, func() { fired = append(fired, "b") })
	s.ScheduleAt(50, func() { fired = append(fired, "c") })

	s.AdvanceTo(75)
	require.Equal(t, []string{"b", "c"}, fired)

	s.AdvanceTo(100)
	require.Equal(t, []string{"b", "c", "a"}, fired)
}

func TestCancelPreventsFiring(t *testing.T) {
	s := scheduler.New()
	fired := false
	tok := s.ScheduleAt(10, func() { fired = true })
	s.Cancel(tok)
	s.AdvanceTo(20)
	require.False(t, fired)
}

func TestReentrantScheduling(t *testing.T) {
	s := scheduler.New()
	count := 0
	var recur func()
	recur = func() {
		count++
		if count < 3 {
			s.ScheduleAt(s.Now()+10, recur)
		}
	}
	s.ScheduleAt(10, recur)
	s.AdvanceTo(10)
	require.Equal(t, 1, count)
	s.AdvanceTo(20)
	require.Equal(t, 2, count)
	s.AdvanceTo(30)
	require.Equal(t, 3, count)
}

func TestPeekNextDue(t *testing.T) {
	s := scheduler.New()
	_, ok := s.PeekNextDue()
	require.False(t, ok)
	s.ScheduleAt(42, func() {})
	d, ok := s.PeekNextDue()
	require.True(t, ok)
	require.EqualValues(t, 42, d)
}
