package ledger

import "sync"

// Memory is the default ledger: a mutex-guarded append-only slice. Volatile
// on purpose, records live as long as the process does.
type Memory struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(r Record) error {
	m.mu.Lock()
	m.records = append(m.records, r)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Query(f Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
