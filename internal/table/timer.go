package table

import "time"

func (s *Synchronizer) startTimer(playerID string, deadline time.Time) {
	if s.timer != nil {
		s.renderer.StopTimer(s.timer.playerID)
	}
	s.timer = &turnTimer{playerID: playerID, deadline: deadline}
	s.renderer.StartTimer(playerID, s.remaining())
}

// remaining is the time left on the active countdown, never below zero.
func (s *Synchronizer) remaining() time.Duration {
	if s.timer == nil {
		return 0
	}
	left := s.timer.deadline.Sub(s.Clock.Now())
	if left < 0 {
		return 0
	}
	return left.Round(time.Second)
}

// Tick refreshes the active countdown. Reaching zero ends nothing; the
// server decides when the turn is over.
func (s *Synchronizer) Tick() {
	id, left, ok := s.ActiveTimer()
	if !ok {
		return
	}
	s.renderer.UpdateTimer(id, left)
	s.renderer.Flush()
}

// ActiveTimer returns the player on the clock and the time left.
func (s *Synchronizer) ActiveTimer() (playerID string, remaining time.Duration, ok bool) {
	if s.timer == nil {
		return "", 0, false
	}
	return s.timer.playerID, s.remaining(), true
}
