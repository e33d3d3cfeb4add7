package conversion

import (
	"brats2twolabel/internal/models"
)

// RemoveEnclosed clears candidate-mask voxels that are completely enclosed by
// enhancing tissue. Such pockets are segmentation noise or partial-volume
// artifacts rather than genuine necrosis.
//
// Enclosure is determined by topological hole-filling of the enhancing-tissue
// mask: background voxels unreachable from the volume's outer boundary through
// face-adjacent background steps are holes, and candidate voxels falling in a
// hole are discarded. An empty enhancing-tissue mask leaves the candidate mask
// unchanged.
//
// The input mask is not modified; a new mask is returned.
func RemoveEnclosed(primary *models.Volume, mask []bool) []bool {
	n := primary.NumVoxels()
	foreground := make([]bool, n)
	hasForeground := false
	for i, p := range primary.Data {
		if p == LabelEnhancing {
			foreground[i] = true
			hasForeground = true
		}
	}

	out := make([]bool, n)
	copy(out, mask)
	if !hasForeground {
		return out
	}

	outside := floodFromBoundary(foreground, primary.Width, primary.Height, primary.Depth)
	for i := range out {
		// Enclosed: not enhancing tissue, yet unreachable from the boundary.
		if !foreground[i] && !outside[i] {
			out[i] = false
		}
	}
	return out
}

// floodFromBoundary marks every non-foreground voxel reachable from the six
// outer faces of the volume through chains of face-adjacent (6-connected)
// non-foreground voxels. Uses an iterative BFS to keep stack depth constant on
// large volumes.
func floodFromBoundary(foreground []bool, width, height, depth int) []bool {
	visited := make([]bool, len(foreground))
	queue := make([]int, 0, 2*(width*height+width*depth+height*depth))

	seed := func(x, y, z int) {
		idx := z*width*height + y*width + x
		if !visited[idx] && !foreground[idx] {
			visited[idx] = true
			queue = append(queue, idx)
		}
	}

	// Seed the flood with every background voxel on the outer faces.
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if x == 0 || x == width-1 || y == 0 || y == height-1 || z == 0 || z == depth-1 {
					seed(x, y, z)
				}
			}
		}
	}

	sliceSize := width * height
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]

		x := idx % width
		y := (idx / width) % height
		z := idx / sliceSize

		if x > 0 {
			visit(idx-1, foreground, visited, &queue)
		}
		if x < width-1 {
			visit(idx+1, foreground, visited, &queue)
		}
		if y > 0 {
			visit(idx-width, foreground, visited, &queue)
		}
		if y < height-1 {
			visit(idx+width, foreground, visited, &queue)
		}
		if z > 0 {
			visit(idx-sliceSize, foreground, visited, &queue)
		}
		if z < depth-1 {
			visit(idx+sliceSize, foreground, visited, &queue)
		}
	}
	return visited
}

func visit(idx int, foreground, visited []bool, queue *[]int) {
	if !visited[idx] && !foreground[idx] {
		visited[idx] = true
		*queue = append(*queue, idx)
	}
}
