package sender

// segmentEntry allows Segments to be stored in a segmentList. Entries can be
// added to and removed from the list in O(1) time and with no additional
// memory allocations
type segmentEntry struct {
	next *Segment
	prev *Segment
}

// Next returns the segment that follows s in the window, or nil
func (e *segmentEntry) Next() *Segment {
	return e.next
}

// Prev returns the segment that precedes s in the window, or nil
func (e *segmentEntry) Prev() *Segment {
	return e.prev
}

// segmentList is an intrusive doubly linked list of Segments.
//
// The zero value for segmentList is an empty list ready to use.
//
// To iterate over a list (where l is a segmentList):
//		for s := l.Front(); s != nil; s = s.Next() {
//		// do something with s
//		}
type segmentList struct {
	head *Segment
	tail *Segment
}

// Empty returns true if the list is empty
func (l *segmentList) Empty() bool {
	return l.head == nil
}

// Front returns the first segment of list l or nil
func (l *segmentList) Front() *Segment {
	return l.head
}

// Back returns the last segment of list l or nil
func (l *segmentList) Back() *Segment {
	return l.tail
}

// PushBack inserts the segment s at the back of list l
func (l *segmentList) PushBack(s *Segment) {
	s.next = nil
	s.prev = l.tail

	if l.tail != nil {
		l.tail.next = s
	} else {
		l.head = s
	}

	l.tail = s
}

// Remove removes s from l
func (l *segmentList) Remove(s *Segment) {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		l.head = s.next
	}

	if s.next != nil {
		s.next.prev = s.prev
	} else {
		l.tail = s.prev
	}

	s.next = nil
	s.prev = nil
}
