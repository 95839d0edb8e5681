package anomaly

import "hash/fnv"

// featureBuckets is the modulus for the hashed categorical features.
const featureBuckets = 1000

// featureDim is the width of the encoded feature vector:
// [amount, category bucket, vendor bucket].
const featureDim = 3

// encode maps an expense onto the numeric feature vector the model is
// trained on. The hash is stable, so identical inputs always encode
// identically within and across runs.
func encode(vendor, category string, amount float64) [featureDim]float64 {
	if category == "" {
		category = "misc"
	}
	if vendor == "" {
		vendor = "unknown"
	}
	return [featureDim]float64{
		amount,
		float64(bucket(category)),
		float64(bucket(vendor)),
	}
}

func bucket(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32() % featureBuckets
}
