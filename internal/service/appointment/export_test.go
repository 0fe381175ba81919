package appointment

import "time"

// SetNow overrides the clock in tests.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}
