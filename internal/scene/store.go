package scene

import (
	"fmt"
	"math"
	"sync"

	"banner-canvas-engine/internal/geom"
)

// Store is the single source of truth for a design session: an id-keyed
// layer arena with an explicit z-order sequence, plus the background and
// profile-overlay slots and the transient selection. All mutation goes
// through the command methods; readers get immutable snapshots.
type Store struct {
	mu sync.Mutex

	width, height float64
	minLayerSize  float64
	minFontSize   float64

	layers map[string]*Layer
	order  []string // index 0 = bottom

	background    string
	profileSource string
	profile       ProfileTransform

	selected string
	nextID   int
	version  uint64

	journal []JournalEntry
	subs    map[int]func()
	nextSub int
}

// JournalEntry records one committed mutation. Gesture previews collapse
// into a single entry on commit, keeping the log coarse enough for a
// host-side undo feature.
type JournalEntry struct {
	Op      string
	LayerID string
	Version uint64
}

// Options configures a new Store.
type Options struct {
	Width        float64
	Height       float64
	MinLayerSize float64
	MinFontSize  float64
}

// NewStore creates an empty store for a W×H logical canvas.
func NewStore(opts Options) *Store {
	if opts.Width <= 0 {
		opts.Width = 1584
	}
	if opts.Height <= 0 {
		opts.Height = 396
	}
	if opts.MinLayerSize <= 0 {
		opts.MinLayerSize = 20
	}
	if opts.MinFontSize <= 0 {
		opts.MinFontSize = 8
	}
	return &Store{
		width:        opts.Width,
		height:       opts.Height,
		minLayerSize: opts.MinLayerSize,
		minFontSize:  opts.MinFontSize,
		layers:       make(map[string]*Layer),
		subs:         make(map[int]func()),
		profile:      ProfileTransform{Scale: 1},
	}
}

// Size returns the logical canvas dimensions.
func (s *Store) Size() (w, h float64) {
	return s.width, s.height
}

// AddLayer inserts a layer on top of the stack and returns its id.
// A provided ID is kept if unused; otherwise a fresh one is assigned.
func (s *Store) AddLayer(l Layer) string {
	s.mu.Lock()
	if l.ID == "" || s.layers[l.ID] != nil {
		s.nextID++
		l.ID = fmt.Sprintf("layer-%d", s.nextID)
	}
	s.sanitize(&l)
	cp := l
	s.layers[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	s.commitLocked("add", cp.ID)
	s.mu.Unlock()
	s.notify()
	return l.ID
}

// UpdateLayer applies a partial update to one layer.
func (s *Store) UpdateLayer(id string, p Patch) error {
	s.mu.Lock()
	l, ok := s.layers[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("scene: no layer %q", id)
	}
	applyPatch(l, p)
	s.sanitize(l)
	s.commitLocked("update", id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteLayer removes a layer. Deleting the selected layer clears the
// selection.
func (s *Store) DeleteLayer(id string) error {
	s.mu.Lock()
	if _, ok := s.layers[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("scene: no layer %q", id)
	}
	delete(s.layers, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.selected == id {
		s.selected = ""
	}
	s.commitLocked("delete", id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// DuplicateLayer clones a layer, offset slightly, on top of the stack.
func (s *Store) DuplicateLayer(id string) (string, error) {
	s.mu.Lock()
	src, ok := s.layers[id]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("scene: no layer %q", id)
	}
	cp := *src
	s.nextID++
	cp.ID = fmt.Sprintf("layer-%d", s.nextID)
	cp.X += 16
	cp.Y += 16
	s.layers[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	s.commitLocked("duplicate", cp.ID)
	s.mu.Unlock()
	s.notify()
	return cp.ID, nil
}

// MoveLayer moves a layer to the given z-order index, clamped to the
// valid range. Index 0 is the bottom of the stack.
func (s *Store) MoveLayer(id string, index int) error {
	s.mu.Lock()
	pos := -1
	for i, oid := range s.order {
		if oid == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		s.mu.Unlock()
		return fmt.Errorf("scene: no layer %q", id)
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.order)-1 {
		index = len(s.order) - 1
	}
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	s.order = append(s.order[:index], append([]string{id}, s.order[index:]...)...)
	s.commitLocked("move", id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetBackground replaces the background source. Empty string clears it.
func (s *Store) SetBackground(source string) {
	s.mu.Lock()
	s.background = source
	s.commitLocked("background", "")
	s.mu.Unlock()
	s.notify()
}

// SetProfileOverlay replaces the profile overlay source. Empty string
// clears it and resets the transform.
func (s *Store) SetProfileOverlay(source string) {
	s.mu.Lock()
	s.profileSource = source
	if source == "" {
		s.profile = ProfileTransform{Scale: 1}
	}
	s.commitLocked("profile", "")
	s.mu.Unlock()
	s.notify()
}

// SetProfileTransform replaces the overlay transform, clamping invalid
// values instead of storing them.
func (s *Store) SetProfileTransform(t ProfileTransform) {
	s.mu.Lock()
	s.profile = sanitizeProfile(t)
	s.commitLocked("profile-transform", "")
	s.mu.Unlock()
	s.notify()
}

// SetSelection selects the named layer, or clears the selection for "".
// Selecting an unknown id clears the selection.
func (s *Store) SetSelection(id string) {
	s.mu.Lock()
	if id != "" && s.layers[id] == nil {
		id = ""
	}
	changed := s.selected != id
	s.selected = id
	if changed {
		s.version++
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// CenterLayer centers a layer on the given canvas axis. The caller
// supplies the layer's effective bounding-box size, since text layers
// derive theirs from glyph metrics.
func (s *Store) CenterLayer(id string, axis Axis, boxW, boxH float64) error {
	s.mu.Lock()
	l, ok := s.layers[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("scene: no layer %q", id)
	}
	if axis == AxisHorizontal || axis == AxisBoth {
		l.X = (s.width - boxW) / 2
	}
	if axis == AxisVertical || axis == AxisBoth {
		l.Y = (s.height - boxH) / 2
	}
	s.commitLocked("center", id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// ApplyGesture applies an in-progress gesture update to a layer. It bumps
// the version (so the host redraws) but writes no journal entry; the
// gesture becomes one entry when CommitGesture is called.
func (s *Store) ApplyGesture(id string, p Patch) error {
	s.mu.Lock()
	l, ok := s.layers[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("scene: no layer %q", id)
	}
	applyPatch(l, p)
	s.sanitize(l)
	s.version++
	s.mu.Unlock()
	s.notify()
	return nil
}

// CommitGesture records a completed gesture as a single journal entry.
func (s *Store) CommitGesture(id, op string) {
	s.mu.Lock()
	if l, ok := s.layers[id]; ok {
		l.Rotation = geom.NormalizeDeg(l.Rotation)
		s.commitLocked(op, id)
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyProfileGesture updates the overlay transform mid-gesture without a
// journal entry.
func (s *Store) ApplyProfileGesture(t ProfileTransform) {
	s.mu.Lock()
	s.profile = sanitizeProfile(t)
	s.version++
	s.mu.Unlock()
	s.notify()
}

// CommitProfileGesture records a completed overlay gesture.
func (s *Store) CommitProfileGesture() {
	s.mu.Lock()
	s.commitLocked("profile-transform", "")
	s.mu.Unlock()
	s.notify()
}

// Journal returns a copy of the committed mutation log.
func (s *Store) Journal() []JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JournalEntry, len(s.journal))
	copy(out, s.journal)
	return out
}

// Subscribe registers a change callback and returns an unsubscribe
// function. Callbacks run after the mutation is committed, outside the
// store lock, on the mutating goroutine.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) commitLocked(op, layerID string) {
	s.version++
	s.journal = append(s.journal, JournalEntry{Op: op, LayerID: layerID, Version: s.version})
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func applyPatch(l *Layer, p Patch) {
	if p.X != nil {
		l.X = *p.X
	}
	if p.Y != nil {
		l.Y = *p.Y
	}
	if p.Rotation != nil {
		l.Rotation = *p.Rotation
	}
	if p.Content != nil {
		l.Content = *p.Content
	}
	if p.FontSize != nil {
		l.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		l.FontFamily = *p.FontFamily
	}
	if p.FontWeight != nil {
		l.FontWeight = *p.FontWeight
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.TextAlign != nil {
		l.TextAlign = *p.TextAlign
	}
	if p.Width != nil {
		l.Width = *p.Width
	}
	if p.Height != nil {
		l.Height = *p.Height
	}
}

// sanitize clamps invalid values so a bad gesture or external update can
// never propagate NaN or degenerate geometry into the store.
func (s *Store) sanitize(l *Layer) {
	if !finite(l.X) {
		l.X = 0
	}
	if !finite(l.Y) {
		l.Y = 0
	}
	if !finite(l.Rotation) {
		l.Rotation = 0
	}
	switch l.Kind {
	case KindImage:
		if !finite(l.Width) || l.Width < s.minLayerSize {
			l.Width = s.minLayerSize
		}
		if !finite(l.Height) || l.Height < s.minLayerSize {
			l.Height = s.minLayerSize
		}
	case KindText:
		if !finite(l.FontSize) || l.FontSize < s.minFontSize {
			l.FontSize = s.minFontSize
		}
		if l.TextAlign == "" {
			l.TextAlign = AlignLeft
		}
		if l.Color == "" {
			l.Color = "#ffffff"
		}
	}
}

func sanitizeProfile(t ProfileTransform) ProfileTransform {
	if !finite(t.X) {
		t.X = 0
	}
	if !finite(t.Y) {
		t.Y = 0
	}
	if !finite(t.Scale) || t.Scale <= 0 {
		t.Scale = 1
	}
	t.Scale = geom.Clamp(t.Scale, 0.2, 5)
	return t
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
