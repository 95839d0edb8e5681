package anomaly

import (
	"math"
	"math/rand"
	"sort"
)

// contamination is the assumed share of outliers in the training data. The
// decision offset is set to this percentile of the training scores, so
// roughly 1-contamination of pattern-matching points score ≥ 0.
const contamination = 0.1

// forest is an isolation forest: an ensemble of randomly-built binary trees
// where outliers isolate in few splits and inliers need many. The raw
// anomaly measure for a point is -2^(-E[h(x)]/c(ψ)); the decision score
// subtracts the contamination percentile of the training measures, giving
// the usual decision-function convention: ≥ 0 for points that fit the
// training distribution, < 0 for points that deviate from it.
type forest struct {
	trees     []*treeNode
	subsample int
	offset    float64
}

// treeNode is one node of an isolation tree. Leaves have left == nil and
// carry the number of training points that landed in them.
type treeNode struct {
	left       *treeNode
	right      *treeNode
	splitValue float64
	splitAttr  int
	size       int
}

// buildForest fits numTrees isolation trees, each over a random subsample of
// at most sampleSize points. The rng seed is fixed by the caller so the fit
// is deterministic for a given data set.
func buildForest(data [][featureDim]float64, numTrees, sampleSize int, seed int64) *forest {
	rng := rand.New(rand.NewSource(seed))

	subsample := sampleSize
	if subsample > len(data) {
		subsample = len(data)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(subsample))))

	trees := make([]*treeNode, numTrees)
	for i := range trees {
		sample := make([][featureDim]float64, subsample)
		for j, idx := range rng.Perm(len(data))[:subsample] {
			sample[j] = data[idx]
		}
		trees[i] = buildTree(sample, 0, heightLimit, rng)
	}

	f := &forest{trees: trees, subsample: subsample}

	// Calibrate the decision offset on the training data itself: the points
	// below the contamination percentile are the ones treated as deviant.
	raws := make([]float64, len(data))
	for i, x := range data {
		raws[i] = f.rawScore(x)
	}
	sort.Float64s(raws)
	f.offset = percentile(raws, 100*contamination)

	return f
}

func buildTree(points [][featureDim]float64, depth, limit int, rng *rand.Rand) *treeNode {
	if depth >= limit || len(points) <= 1 {
		return &treeNode{size: len(points)}
	}

	// Pick a split attribute with spread; give up if every attribute is
	// constant across the points.
	attr := -1
	var lo, hi float64
	for _, candidate := range rng.Perm(featureDim) {
		lo, hi = points[0][candidate], points[0][candidate]
		for _, p := range points[1:] {
			if p[candidate] < lo {
				lo = p[candidate]
			}
			if p[candidate] > hi {
				hi = p[candidate]
			}
		}
		if hi > lo {
			attr = candidate
			break
		}
	}
	if attr == -1 {
		return &treeNode{size: len(points)}
	}

	split := lo + rng.Float64()*(hi-lo)

	var left, right [][featureDim]float64
	for _, p := range points {
		if p[attr] < split {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	return &treeNode{
		splitAttr:  attr,
		splitValue: split,
		left:       buildTree(left, depth+1, limit, rng),
		right:      buildTree(right, depth+1, limit, rng),
	}
}

// score returns the decision score for a point: its raw anomaly measure
// shifted by the training-calibrated offset.
func (f *forest) score(x [featureDim]float64) float64 {
	return f.rawScore(x) - f.offset
}

// rawScore is the uncalibrated anomaly measure in (-1, 0): closer to -1 the
// faster the point isolates.
func (f *forest) rawScore(x [featureDim]float64) float64 {
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree, x, 0)
	}
	mean := total / float64(len(f.trees))

	return -math.Pow(2, -mean/avgPathLength(f.subsample))
}

// percentile interpolates the q-th percentile of sorted values.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// pathLength walks a point down a tree; leaves contribute the expected
// remaining depth for the points that trained them.
func pathLength(node *treeNode, x [featureDim]float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if x[node.splitAttr] < node.splitValue {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// eulerGamma is the Euler-Mascheroni constant used in the average
// unsuccessful-search path length of a binary search tree.
const eulerGamma = 0.5772156649

// avgPathLength is c(n), the expected path length of an unsuccessful search
// in a binary search tree over n points.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + eulerGamma
	return 2*h - 2*float64(n-1)/float64(n)
}
