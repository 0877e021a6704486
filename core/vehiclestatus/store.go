package vehiclestatus

import (
	"sort"
	"sync"

	"github.com/kilianp07/agvfleet/core/model"
)

// Entry is the last known status and task list of a vehicle.
type Entry struct {
	VehicleStatus
	Tasks []model.TaskKind `json:"tasks"`
}

// Filter narrows List results.
type Filter struct {
	LowOnly bool
	Task    *model.TaskKind
}

// MemoryStore keeps the latest status per vehicle for the HTTP API.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[int]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[int]Entry{}}
}

// OnVehicleStatus implements Sink.
func (s *MemoryStore) OnVehicleStatus(st VehicleStatus) {
	s.mu.Lock()
	e := s.data[st.VehicleID]
	e.VehicleStatus = st
	s.data[st.VehicleID] = e
	s.mu.Unlock()
}

// OnTaskListChanged implements Sink.
func (s *MemoryStore) OnTaskListChanged(id int, kinds []model.TaskKind) {
	s.mu.Lock()
	e := s.data[id]
	e.VehicleID = id
	e.Tasks = append([]model.TaskKind(nil), kinds...)
	e.QueueLength = len(kinds)
	s.data[id] = e
	s.mu.Unlock()
}

// Get returns the entry of one vehicle.
func (s *MemoryStore) Get(id int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return Entry{}, false
	}
	e.Tasks = append([]model.TaskKind(nil), e.Tasks...)
	return e, true
}

// List returns entries sorted by vehicle id.
func (s *MemoryStore) List(f Filter) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Entry, 0, len(s.data))
	for _, e := range s.data {
		if f.LowOnly && !e.Low {
			continue
		}
		if f.Task != nil && e.TaskKind != *f.Task {
			continue
		}
		e.Tasks = append([]model.TaskKind(nil), e.Tasks...)
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].VehicleID < res[j].VehicleID })
	return res
}
