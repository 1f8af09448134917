package pose

// BoneMask is a sparse per-bone weight map. Bones not listed weigh 0.
type BoneMask map[EntityPath]float64

// Weight returns the weight of path clamped to [0, 1].
func (m BoneMask) Weight(path EntityPath) float64 {
	w, ok := m[path]
	if !ok || w != w {
		return 0
	}
	switch {
	case w < 0:
		return 0
	case w > 1:
		return 1
	}
	return w
}

// Clone returns a copy of the mask.
func (m BoneMask) Clone() BoneMask {
	if m == nil {
		return nil
	}
	out := make(BoneMask, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
