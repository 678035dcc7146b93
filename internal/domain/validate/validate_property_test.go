package validate_test

import (
	"strings"
	"testing"

	"github.com/okian/sentinela/internal/domain/validate"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPropertyValidRecordsAlwaysAccepted checks that any positive RDW with a
// non-blank group key is accepted and carried through unchanged.
func TestPropertyValidRecordsAlwaysAccepted(t *testing.T) {
	schema := validate.DefaultSchema()

	rapid.Check(t, func(rt *rapid.T) {
		rdw := rapid.Float64Range(0.001, 100).Draw(rt, "rdw")
		key := rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,20}`).Draw(rt, "group")
		pad := rapid.StringMatching(`[ \t]{0,3}`).Draw(rt, "pad")

		res := validate.Validate(exam(rdw, pad+key+pad), schema)

		require.True(rt, res.OK(), "unexpected rejection: %v", res.Err())
		require.Equal(rt, rdw, res.Observation.RDWPercent)
		require.Equal(rt, strings.TrimSpace(key), res.Observation.GroupKey)
		require.Greater(rt, res.Observation.RDWPercent, 0.0)
		require.NotEmpty(rt, res.Observation.GroupKey)
	})
}

// TestPropertyNonPositiveRejected checks that zero and negative values never
// produce an observation.
func TestPropertyNonPositiveRejected(t *testing.T) {
	schema := validate.DefaultSchema()

	rapid.Check(t, func(rt *rapid.T) {
		rdw := rapid.Float64Range(-1000, 0).Draw(rt, "rdw")

		res := validate.Validate(exam(rdw, "Centro"), schema)

		require.False(rt, res.OK())
		require.Equal(rt, validate.OutOfRange, res.Rejection.Reason)
	})
}

// TestPropertyNeverPanics feeds arbitrary scalar shapes at both required
// paths; every outcome must be either an observation or a rejection.
func TestPropertyNeverPanics(t *testing.T) {
	schema := validate.DefaultSchema()
	values := []any{nil, "", " ", "x", "14.5", true, false, 0, -3, 2.5, []any{1}, map[string]any{}}

	rapid.Check(t, func(rt *rapid.T) {
		rdw := rapid.SampledFrom(values).Draw(rt, "rdw")
		group := rapid.SampledFrom(values).Draw(rt, "group")

		res := validate.Validate(exam(rdw, group), schema)

		if res.OK() {
			require.Greater(rt, res.Observation.RDWPercent, 0.0)
			require.NotEmpty(rt, strings.TrimSpace(res.Observation.GroupKey))
			return
		}
		require.NotZero(rt, res.Rejection.Reason)
		require.Error(rt, res.Err())
	})
}
