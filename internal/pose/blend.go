package pose

// Blend interpolates a toward b by factor. Bones present in both inputs are
// interpolated with Lerp; bones present in only one input pass through
// unchanged. Output order is a's bones followed by b-only bones. The result
// carries a's timestamp.
func Blend(a, b *Pose, factor float64) *Pose {
	if a == nil {
		a = New(0)
	}
	if b == nil {
		b = New(a.Timestamp)
	}
	out := New(a.Timestamp)
	for _, bone := range a.bones {
		if other, ok := b.Get(bone.Path); ok {
			out.Set(bone.Path, Lerp(bone.Transform, other, factor))
			continue
		}
		out.Set(bone.Path, bone.Transform)
	}
	for _, bone := range b.bones {
		if !a.Has(bone.Path) {
			out.Set(bone.Path, bone.Transform)
		}
	}
	return out
}

// Weighted is one input of BlendWeighted.
type Weighted struct {
	Pose   *Pose
	Weight float64
}

// BlendWeighted folds inputs pairwise: the running result is blended with each
// next input using that input's weight renormalized against the weight
// accumulated so far. Inputs with non-positive weight are skipped, so a single
// contributor passes through unchanged.
func BlendWeighted(inputs ...Weighted) *Pose {
	var (
		acc   *Pose
		total float64
	)
	for _, in := range inputs {
		if in.Weight <= 0 || in.Pose == nil {
			continue
		}
		if acc == nil {
			acc, total = in.Pose, in.Weight
			continue
		}
		total += in.Weight
		acc = Blend(acc, in.Pose, in.Weight/total)
	}
	if acc == nil {
		return New(0)
	}
	return acc
}
