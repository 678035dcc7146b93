package aggregate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/sentinela/internal/domain/aggregate"
	"github.com/okian/sentinela/internal/domain/model"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func observationGen() *rapid.Generator[model.Observation] {
	return rapid.Custom(func(t *rapid.T) model.Observation {
		return model.Observation{
			RDWPercent:     rapid.Float64Range(8, 24).Draw(t, "rdw"),
			GroupKey:       rapid.SampledFrom([]string{"Boa Viagem", "Casa Forte", "Aflitos", "Ibura", "Pina"}).Draw(t, "group"),
			PatientID:      model.Unknown,
			CollectionDate: rapid.SampledFrom([]string{model.Unknown, "2025-01-01", "2025-01-02", "2025-02-10"}).Draw(t, "date"),
			Age:            rapid.IntRange(0, 110).Draw(t, "age"),
			AgeKnown:       rapid.Bool().Draw(t, "age_known"),
			Sex:            rapid.SampledFrom([]string{model.Unknown, "Feminino", "Masculino"}).Draw(t, "sex"),
		}
	})
}

// TestPropertyAggregateOrderInvariant checks that shuffling observations
// yields an identical summary sequence.
func TestPropertyAggregateOrderInvariant(t *testing.T) {
	th := model.DefaultThresholds()

	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.SliceOfN(observationGen(), 0, 60).Draw(rt, "observations")
		shuffled := rapid.Permutation(in).Draw(rt, "shuffled")

		want := aggregate.Aggregate(in, th)
		got := aggregate.Aggregate(shuffled, th)

		if diff := cmp.Diff(want, got); diff != "" {
			rt.Fatalf("aggregate depends on input order (-want +got):\n%s", diff)
		}
	})
}

// TestPropertyAggregateConservesCounts checks counts, bounds and ordering.
func TestPropertyAggregateConservesCounts(t *testing.T) {
	th := model.DefaultThresholds()

	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.SliceOfN(observationGen(), 0, 60).Draw(rt, "observations")
		got := aggregate.Aggregate(in, th)

		total := 0
		for i, s := range got {
			total += s.ExamCount
			require.GreaterOrEqual(rt, s.ExamCount, 1)
			require.LessOrEqual(rt, s.ElevatedCount, s.ExamCount)
			require.GreaterOrEqual(rt, s.ElevatedPercent, 0.0)
			require.LessOrEqual(rt, s.ElevatedPercent, 100.0)
			require.LessOrEqual(rt, s.MinRDW, s.MaxRDW)
			if i > 0 {
				prev := got[i-1]
				require.True(rt, prev.MeanRDW > s.MeanRDW ||
					(prev.MeanRDW == s.MeanRDW && prev.GroupKey < s.GroupKey),
					"summaries out of order at %d", i)
			}
		}
		require.Equal(rt, len(in), total)
	})
}

// TestPropertyDistributionBounded checks that binned counts never exceed the
// number of observations.
func TestPropertyDistributionBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.SliceOfN(observationGen(), 0, 60).Draw(rt, "observations")
		bins := aggregate.Distribution(in, aggregate.DefaultBinSpec())

		binned := 0
		for _, b := range bins {
			binned += b.Count
		}
		require.LessOrEqual(rt, binned, len(in))
	})
}

// TestPropertyStratificationOrderInvariant checks that the run-wide
// roll-ups ignore input order and account for every observation.
func TestPropertyStratificationOrderInvariant(t *testing.T) {
	th := model.DefaultThresholds()

	rapid.Check(t, func(rt *rapid.T) {
		in := rapid.SliceOfN(observationGen(), 0, 60).Draw(rt, "observations")
		shuffled := rapid.Permutation(in).Draw(rt, "shuffled")

		if diff := cmp.Diff(aggregate.Overall(in, th), aggregate.Overall(shuffled, th)); diff != "" {
			rt.Fatalf("overall depends on input order (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(aggregate.Demographics(in), aggregate.Demographics(shuffled)); diff != "" {
			rt.Fatalf("demographics depend on input order (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(aggregate.Timeline(in), aggregate.Timeline(shuffled)); diff != "" {
			rt.Fatalf("timeline depends on input order (-want +got):\n%s", diff)
		}

		d := aggregate.Demographics(in)
		ages, sexes := d.UnknownAge, d.UnknownSex
		for _, b := range d.AgeBands {
			ages += b.Count
		}
		for _, b := range d.Sex {
			sexes += b.Count
		}
		require.Equal(rt, len(in), ages)
		require.Equal(rt, len(in), sexes)

		dated := 0
		for _, p := range aggregate.Timeline(in) {
			dated += p.Count
		}
		require.LessOrEqual(rt, dated, len(in))
	})
}
