package notify

// activeCount reports deliveries that have been dispatched but not finished.
func (s *service) activeCount() int64 {
	return s.inflight.Load()
}
