// Package surface provides the editable text regions a session keeps in sync
// with its rendered form.
package surface

import "sync"

// Surface is an editable text region. Read returns the current contents and
// Write replaces them.
type Surface interface {
	Read() (string, error)
	Write(text string) error
}

// Memory is an in-memory Surface. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	text string
}

var _ Surface = (*Memory)(nil)

// NewMemory returns a Memory surface holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Read() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Edit replaces the contents the way a user typing into the region would.
func (m *Memory) Edit(text string) {
	_ = m.Write(text)
}
