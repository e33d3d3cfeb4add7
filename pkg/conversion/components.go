package conversion

import (
	"brats2twolabel/internal/models"
)

// componentReport carries the per-cluster voxel counts of a size-filter run,
// split by outcome. Sizes are float64 for direct use with gonum/stat.
type componentReport struct {
	keptSizes    []float64
	removedSizes []float64
}

// FilterComponents removes small isolated clusters from the candidate mask.
//
// Connected components of the mask are computed with 6-connectivity (face
// adjacency only, no diagonals) and every component of size <= threshold is
// dropped. Edema voxels of the primary segmentation are restored
// unconditionally regardless of the size of the component they fell into: the
// filter targets small spurious necrosis clusters, not edema.
//
// A threshold of 0 keeps every component, making the filter a no-op apart from
// the edema restoration. The input mask is not modified.
func FilterComponents(mask []bool, primary *models.Volume, threshold int) []bool {
	out, _ := filterComponents(mask, primary, threshold)
	return out
}

func filterComponents(mask []bool, primary *models.Volume, threshold int) ([]bool, componentReport) {
	ids, counts := labelComponents(mask, primary.Width, primary.Height, primary.Depth)

	// Component 0 is background and is never retained.
	retained := make([]bool, len(counts))
	var report componentReport
	for id := 1; id < len(counts); id++ {
		if counts[id] > threshold {
			retained[id] = true
			report.keptSizes = append(report.keptSizes, float64(counts[id]))
		} else {
			report.removedSizes = append(report.removedSizes, float64(counts[id]))
		}
	}

	out := make([]bool, len(mask))
	for i := range out {
		out[i] = retained[ids[i]] || primary.Data[i] == LabelEdema
	}
	return out, report
}

// labelComponents assigns a positive transient id to every 6-connected
// component of the mask and returns the id field together with the voxel count
// per id (index 0, the background, stays zero). Labeling is an iterative BFS
// so stack depth stays constant regardless of component size.
func labelComponents(mask []bool, width, height, depth int) ([]int32, []int) {
	ids := make([]int32, len(mask))
	counts := []int{0}
	sliceSize := width * height

	var queue []int
	next := int32(0)
	for start, in := range mask {
		if !in || ids[start] != 0 {
			continue
		}
		next++
		ids[start] = next
		size := 0
		queue = append(queue[:0], start)

		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			size++

			x := idx % width
			y := (idx / width) % height
			z := idx / sliceSize

			if x > 0 {
				grow(idx-1, next, mask, ids, &queue)
			}
			if x < width-1 {
				grow(idx+1, next, mask, ids, &queue)
			}
			if y > 0 {
				grow(idx-width, next, mask, ids, &queue)
			}
			if y < height-1 {
				grow(idx+width, next, mask, ids, &queue)
			}
			if z > 0 {
				grow(idx-sliceSize, next, mask, ids, &queue)
			}
			if z < depth-1 {
				grow(idx+sliceSize, next, mask, ids, &queue)
			}
		}
		counts = append(counts, size)
	}
	return ids, counts
}

func grow(idx int, id int32, mask []bool, ids []int32, queue *[]int) {
	if mask[idx] && ids[idx] == 0 {
		ids[idx] = id
		*queue = append(*queue, idx)
	}
}
