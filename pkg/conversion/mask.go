package conversion

import (
	"brats2twolabel/internal/models"
)

// CombineMasks builds the initial necrosis+edema candidate mask from the
// primary three-label segmentation and the auxiliary whole-tumor segmentation.
//
// A voxel enters the candidate mask if it is labeled NCR/NET in the primary
// volume and lies inside the auxiliary whole-tumor region (any nonzero
// auxiliary value), or if it is labeled edema in the primary volume. Gating
// necrosis on the auxiliary region suppresses false-positive necrosis outside
// the tumor; edema is always admitted because the auxiliary segmentation does
// not reliably delineate it.
//
// Returns ErrShapeMismatch if the two volumes differ in shape.
func CombineMasks(primary, aux *models.Volume) ([]bool, error) {
	if !primary.SameShape(aux) {
		return nil, shapeMismatchError(primary, aux)
	}

	mask := make([]bool, primary.NumVoxels())
	for i, p := range primary.Data {
		mask[i] = (aux.Data[i] != 0 && p == LabelNecrosis) || p == LabelEdema
	}
	return mask, nil
}
