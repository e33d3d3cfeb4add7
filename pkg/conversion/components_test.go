package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brats2twolabel/internal/models"
)

func maskWith(v *models.Volume, coords ...[3]int) []bool {
	mask := make([]bool, v.NumVoxels())
	for _, c := range coords {
		mask[v.Index(c[0], c[1], c[2])] = true
	}
	return mask
}

func TestLabelComponentsFaceAdjacency(t *testing.T) {
	v := models.NewVolume(5, 5, 5)

	// Two face-adjacent voxels along each axis form one component each.
	for _, pair := range [][2][3]int{
		{{1, 1, 1}, {2, 1, 1}},
		{{1, 1, 1}, {1, 2, 1}},
		{{1, 1, 1}, {1, 1, 2}},
	} {
		mask := maskWith(v, pair[0], pair[1])
		_, counts := labelComponents(mask, v.Width, v.Height, v.Depth)
		require.Len(t, counts, 2)
		assert.Equal(t, 2, counts[1])
	}
}

func TestLabelComponentsNoDiagonalAdjacency(t *testing.T) {
	v := models.NewVolume(5, 5, 5)

	// Edge and corner neighbors must not merge into one component.
	for _, pair := range [][2][3]int{
		{{1, 1, 1}, {2, 2, 1}},
		{{1, 1, 1}, {2, 1, 2}},
		{{1, 1, 1}, {2, 2, 2}},
	} {
		mask := maskWith(v, pair[0], pair[1])
		_, counts := labelComponents(mask, v.Width, v.Height, v.Depth)
		assert.Len(t, counts, 3)
	}
}

func TestLabelComponentsCounts(t *testing.T) {
	v := models.NewVolume(10, 10, 10)
	mask := make([]bool, v.NumVoxels())
	for x := 0; x < 4; x++ { // 4-voxel line
		mask[v.Index(x, 0, 0)] = true
	}
	mask[v.Index(8, 8, 8)] = true // singleton

	ids, counts := labelComponents(mask, v.Width, v.Height, v.Depth)
	require.Len(t, counts, 3)
	assert.ElementsMatch(t, []int{4, 1}, counts[1:])

	// Background keeps id 0.
	assert.Equal(t, int32(0), ids[v.Index(5, 5, 5)])
}

func TestFilterComponentsStrictThreshold(t *testing.T) {
	// A component of exactly threshold size must be removed; strictly larger
	// survives.
	v := models.NewVolume(10, 10, 10)
	fillBox(v, 0, 0, 0, 3, 0, 0, LabelNecrosis) // 4 voxels
	fillBox(v, 0, 5, 0, 4, 5, 0, LabelNecrosis) // 5 voxels
	mask := make([]bool, v.NumVoxels())
	for i, p := range v.Data {
		mask[i] = p == LabelNecrosis
	}

	out := FilterComponents(mask, v, 4)
	assert.False(t, out[v.Index(0, 0, 0)])
	assert.True(t, out[v.Index(0, 5, 0)])
}

func TestFilterComponentsThresholdZeroKeepsAll(t *testing.T) {
	v := models.NewVolume(6, 6, 6)
	v.Set(1, 1, 1, LabelNecrosis)
	mask := maskWith(v, [3]int{1, 1, 1})

	out := FilterComponents(mask, v, 0)
	assert.Equal(t, mask, out)
}

func TestFilterComponentsRestoresEdema(t *testing.T) {
	// A mixed cluster below threshold: its necrosis voxels go, its edema
	// voxels stay.
	v := models.NewVolume(8, 8, 8)
	v.Set(2, 2, 2, LabelNecrosis)
	v.Set(3, 2, 2, LabelEdema)
	mask := maskWith(v, [3]int{2, 2, 2}, [3]int{3, 2, 2})

	out := FilterComponents(mask, v, 10)
	assert.False(t, out[v.Index(2, 2, 2)])
	assert.True(t, out[v.Index(3, 2, 2)])
}
