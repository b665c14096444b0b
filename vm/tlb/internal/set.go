// Package internal provides the definition required for defining TLB.
package internal

import (
	"sort"

	"github.com/sarchlab/vmsim/vm"
)

// A Set holds a certain number of translations.
type Set interface {
	Lookup(page vm.Page) (wayID int, frame vm.Frame, found bool)
	Update(wayID int, page vm.Page, frame vm.Frame)
	Evict() (wayID int, ok bool)
	Visit(wayID int)
}

// NewSet creates a new TLB set.
func NewSet(numWays int) Set {
	s := &setImpl{}
	s.blocks = make([]*block, numWays)
	s.visitList = make([]*block, 0, numWays)
	s.pageWayIDMap = make(map[vm.Page]int)
	for i := range s.blocks {
		b := &block{}
		s.blocks[i] = b
		b.wayID = i
		s.Visit(i)
	}
	return s
}

type block struct {
	page      vm.Page
	frame     vm.Frame
	valid     bool
	wayID     int
	lastVisit uint64
}

type setImpl struct {
	blocks       []*block
	pageWayIDMap map[vm.Page]int
	visitList    []*block
	visitCount   uint64
}

func (s *setImpl) Lookup(page vm.Page) (
	wayID int,
	frame vm.Frame,
	found bool,
) {
	wayID, ok := s.pageWayIDMap[page]
	if !ok {
		return 0, 0, false
	}

	block := s.blocks[wayID]

	return block.wayID, block.frame, true
}

func (s *setImpl) Update(wayID int, page vm.Page, frame vm.Frame) {
	block := s.blocks[wayID]
	if block.valid {
		delete(s.pageWayIDMap, block.page)
	}

	block.page = page
	block.frame = frame
	block.valid = true
	s.pageWayIDMap[page] = wayID
}

func (s *setImpl) Evict() (wayID int, ok bool) {
	if s.hasNothingToEvict() {
		return 0, false
	}

	leastVisited := s.visitList[0]
	wayID = leastVisited.wayID
	s.visitList = s.visitList[1:]
	return wayID, true
}

func (s *setImpl) Visit(wayID int) {
	block := s.blocks[wayID]

	for i, b := range s.visitList {
		if b.wayID == wayID {
			s.visitList = append(s.visitList[:i], s.visitList[i+1:]...)
		}
	}

	s.visitCount++
	block.lastVisit = s.visitCount

	index := sort.Search(len(s.visitList), func(i int) bool {
		return s.visitList[i].lastVisit > block.lastVisit
	})

	s.visitList = append(s.visitList, nil)
	copy(s.visitList[index+1:], s.visitList[index:])
	s.visitList[index] = block
}

func (s *setImpl) hasNothingToEvict() bool {
	return len(s.visitList) == 0
}
