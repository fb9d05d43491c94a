package picking

// World is the set of colliders a ray can be cast against.
type World struct {
	colliders []Collider
}

// NewWorld creates an empty collision world.
func NewWorld() *World {
	return &World{}
}

// Add registers a collider.
func (w *World) Add(c Collider) {
	w.colliders = append(w.colliders, c)
}

// Raycast returns the nearest hit within maxDistance among colliders whose
// layer is in mask.
func (w *World) Raycast(ray Ray, maxDistance float32, mask LayerMask) (Hit, bool) {
	var best Hit
	found := false
	for _, c := range w.colliders {
		if !mask.Contains(c.Layer()) {
			continue
		}
		hit, ok := c.Raycast(ray, maxDistance)
		if !ok {
			continue
		}
		if !found || hit.Distance < best.Distance {
			best = hit
			found = true
		}
	}
	return best, found
}
