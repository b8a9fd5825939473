package radar

// TypingSet is maintained by chat events and read by the radar poll.
type TypingSet struct {
	ids map[EntityID]struct{}
}

func NewTypingSet() *TypingSet {
	return &TypingSet{ids: make(map[EntityID]struct{})}
}

func (s *TypingSet) Add(id EntityID) {
	s.ids[id] = struct{}{}
}

func (s *TypingSet) Remove(id EntityID) {
	delete(s.ids, id)
}

func (s *TypingSet) Has(id EntityID) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *TypingSet) Clear() {
	s.ids = make(map[EntityID]struct{})
}

func (s *TypingSet) Len() int {
	return len(s.ids)
}
