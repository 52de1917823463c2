package scene

// Snapshot is an immutable copy of the store state. Layers are ordered
// bottom to top; mutating a snapshot has no effect on the store.
type Snapshot struct {
	Width, Height float64

	Layers []Layer

	Background    string
	ProfileSource string
	Profile       ProfileTransform

	Selected string
	Version  uint64
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Width:         s.width,
		Height:        s.height,
		Background:    s.background,
		ProfileSource: s.profileSource,
		Profile:       s.profile,
		Selected:      s.selected,
		Version:       s.version,
		Layers:        make([]Layer, 0, len(s.order)),
	}
	for _, id := range s.order {
		snap.Layers = append(snap.Layers, *s.layers[id])
	}
	return snap
}

// Layer returns the snapshot layer with the given id, or nil.
func (sn Snapshot) Layer(id string) *Layer {
	for i := range sn.Layers {
		if sn.Layers[i].ID == id {
			return &sn.Layers[i]
		}
	}
	return nil
}

// Sources returns every distinct bitmap source the snapshot references:
// the background, the profile overlay, and all image layer contents.
func (sn Snapshot) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(src string) {
		if src != "" && !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	add(sn.Background)
	add(sn.ProfileSource)
	for i := range sn.Layers {
		if sn.Layers[i].Kind == KindImage {
			add(sn.Layers[i].Content)
		}
	}
	return out
}
