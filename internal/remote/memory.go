package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It backs tests and the explicit offline
// mode, and counts writes so reconciliation passes can be checked for
// idempotence.
type Memory struct {
	mu   sync.Mutex
	root map[string]any

	// Err, when set, is returned by every operation. Lets tests cut the
	// "network" mid-pass.
	Err error

	SetCalls    int
	UpdateCalls int
	PushCalls   int
	DeleteCalls int
}

func NewMemory() *Memory {
	return &Memory{root: make(map[string]any)}
}

// WriteCalls is the total number of write operations performed.
func (m *Memory) WriteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SetCalls + m.UpdateCalls + m.PushCalls + m.DeleteCalls
}

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalize round-trips through JSON so stored values look exactly like
// what the wire client would hand back.
func normalize(v any) (any, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Memory) node(path string) (any, bool) {
	var cur any = m.root
	for _, seg := range segments(path) {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (m *Memory) setNode(path string, v any) {
	segs := segments(path)
	cur := m.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	if v == nil {
		delete(cur, segs[len(segs)-1])
		return
	}
	cur[segs[len(segs)-1]] = v
}

func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	n, ok := m.node(path)
	if !ok {
		return nil, nil
	}
	return json.Marshal(n)
}

func (m *Memory) QueryEqual(_ context.Context, path, field string, value any) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	want, err := normalize(value)
	if err != nil {
		return nil, err
	}
	n, ok := m.node(path)
	if !ok {
		return nil, nil
	}
	children, ok := n.(map[string]any)
	if !ok {
		return nil, nil
	}
	out := make(map[string]json.RawMessage)
	for key, child := range children {
		obj, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if reflect.DeepEqual(obj[field], want) {
			raw, err := json.Marshal(child)
			if err != nil {
				return nil, err
			}
			out[key] = raw
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	v, err := normalize(value)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	m.setNode(path, v)
	m.SetCalls++
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for key, value := range fields {
		v, err := normalize(value)
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", path, key, err)
		}
		m.setNode(path+"/"+strings.Trim(key, "/"), v)
	}
	m.UpdateCalls++
	return nil
}

func (m *Memory) Push(_ context.Context, path string, value any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	v, err := normalize(value)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	key := "-" + strings.ReplaceAll(uuid.New().String(), "-", "")
	m.setNode(path+"/"+key, v)
	m.PushCalls++
	return key, nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.setNode(path, nil)
	m.DeleteCalls++
	return nil
}
