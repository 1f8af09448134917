// Package pose holds the skeletal data the graph operates on: per-bone local
// transforms, ordered timestamped poses, skeletons with rest poses, keyframed
// clips, and the blend and mirror operations nodes build on.
package pose
