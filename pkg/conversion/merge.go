package conversion

import (
	"brats2twolabel/internal/models"
)

// MergeLabels produces the final two-label volume from the primary
// segmentation and the filtered candidate mask.
//
// Enhancing-tissue voxels always become OutContrastEnhancing, taking
// precedence over the candidate mask at the same voxel. Of the remaining
// voxels, those in the mask become OutNonEnhancing and everything else stays
// background.
func MergeLabels(primary *models.Volume, mask []bool) *models.Volume {
	out := models.NewVolume(primary.Width, primary.Height, primary.Depth)
	for i, p := range primary.Data {
		switch {
		case p == LabelEnhancing:
			out.Data[i] = OutContrastEnhancing
		case mask[i]:
			out.Data[i] = OutNonEnhancing
		}
	}
	return out
}
