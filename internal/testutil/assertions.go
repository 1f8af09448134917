package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/pose"
)

// AssertPoseEqual fails unless want and got hold the same bones in the same
// order with transforms equal within tol. Timestamps are ignored.
func AssertPoseEqual(t *testing.T, want, got *pose.Pose, tol float64) {
	t.Helper()
	require.NotNil(t, got)
	opts := []cmp.Option{cmpopts.EquateApprox(0, tol), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(want.Bones(), got.Bones(), opts...); diff != "" {
		t.Fatalf("pose mismatch (-want +got):\n%s", diff)
	}
}

// AssertPoseIdentical requires bit-for-bit equal transforms.
func AssertPoseIdentical(t *testing.T, want, got *pose.Pose) {
	t.Helper()
	require.NotNil(t, got)
	if diff := cmp.Diff(want.Bones(), got.Bones()); diff != "" {
		t.Fatalf("pose mismatch (-want +got):\n%s", diff)
	}
}
