package store

// MemoryArea is a map-backed Area. Nothing survives the process.
type MemoryArea struct {
	slots map[string][]byte
}

func NewMemoryArea() *MemoryArea {
	return &MemoryArea{slots: make(map[string][]byte)}
}

func (a *MemoryArea) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	v, ok := a.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (a *MemoryArea) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	a.slots[key] = v
	return nil
}

func (a *MemoryArea) Close() error {
	return nil
}
