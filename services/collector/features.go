package collector

import "math"

// NonTargetFamily is the rocket family excluded from the dataset; the
// pipeline studies the Falcon 9 program only.
const NonTargetFamily = "Falcon 1"

// DeriveFeatures produces the final feature table from the flattened
// records:
//  1. drops rows whose booster version equals excludeFamily,
//  2. renumbers FlightNumber densely 1..N in table order,
//  3. replaces unknown payload masses with the mean of the known ones.
//
// When every payload mass is unknown the mean is NaN and the imputation
// propagates it; it never substitutes zero.
func DeriveFeatures(records []LaunchRecord, excludeFamily string) []LaunchRecord {
	out := make([]LaunchRecord, 0, len(records))
	for _, r := range records {
		if r.BoosterVersion != nil && *r.BoosterVersion == excludeFamily {
			continue
		}
		out = append(out, r)
	}

	mean := meanPayloadMass(out)
	for i := range out {
		out[i].FlightNumber = int64(i + 1)
		if math.IsNaN(out[i].PayloadMass) {
			out[i].PayloadMass = mean
		}
	}
	return out
}

func meanPayloadMass(records []LaunchRecord) float64 {
	sum := 0.0
	n := 0
	for _, r := range records {
		if math.IsNaN(r.PayloadMass) {
			continue
		}
		sum += r.PayloadMass
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
