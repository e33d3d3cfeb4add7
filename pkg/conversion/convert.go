// Package conversion implements the voxel-level reconciliation of a BraTS-style
// three-label tumor segmentation with an externally produced whole-tumor
// segmentation into a cleaned two-label volume.
//
// The conversion consists of four stages, each a pure transform over in-memory
// volumes:
//  1. Combine the two inputs into a candidate necrosis+edema mask
//  2. Discard candidate voxels fully enclosed by enhancing tissue
//  3. Remove small isolated clusters from the candidate mask
//  4. Merge the surviving mask with the enhancing-tissue class
package conversion

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"brats2twolabel/internal/models"
)

// Labels of the three-label input taxonomy (BraTS).
const (
	// LabelBackground marks voxels outside the tumor.
	LabelBackground uint8 = 0

	// LabelNecrosis marks the necrotic / non-enhancing tumor core (NCR/NET).
	LabelNecrosis uint8 = 1

	// LabelEdema marks peritumoral edema (ED).
	LabelEdema uint8 = 2

	// LabelEnhancing marks enhancing tissue (AT).
	LabelEnhancing uint8 = 4
)

// Labels of the two-label output taxonomy.
const (
	// OutNonEnhancing is the merged necrosis+edema class (NE).
	OutNonEnhancing uint8 = 1

	// OutContrastEnhancing is the enhancing-tissue class (CE).
	OutContrastEnhancing uint8 = 2
)

// ErrShapeMismatch is returned when the primary and auxiliary volumes do not
// have identical dimensions.
var ErrShapeMismatch = errors.New("primary and auxiliary volumes differ in shape")

// Params holds the conversion parameters.
type Params struct {
	// ClusterSizeThreshold is the minimum cluster size in voxels. Connected
	// candidate clusters must be strictly larger than this to survive the
	// size filter. Zero keeps every cluster.
	ClusterSizeThreshold int

	// EnclosureFill controls whether candidate voxels completely enclosed by
	// enhancing tissue are discarded as segmentation artifacts.
	EnclosureFill bool

	// Logger receives per-stage progress and statistics. May be nil, in which
	// case logging is disabled.
	Logger *zap.Logger
}

// DefaultParams returns the conversion parameters used when none are
// configured: a 50-voxel cluster threshold with enclosure filling enabled.
func DefaultParams() Params {
	return Params{
		ClusterSizeThreshold: 50,
		EnclosureFill:        true,
	}
}

// Converter runs the two-label conversion pipeline. It holds no state across
// calls; a single Converter may be used for any number of volume pairs.
type Converter struct {
	params Params
	logger *zap.Logger
}

// NewConverter creates a converter with the provided parameters.
func NewConverter(params Params) *Converter {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{params: params, logger: logger}
}

// Convert reconciles the primary three-label segmentation with the auxiliary
// whole-tumor segmentation and returns the two-label result. The output shares
// the primary volume's shape; the inputs are not modified.
//
// Output voxels are 0 (background), OutNonEnhancing or OutContrastEnhancing.
// Convert fails with ErrShapeMismatch if the two inputs differ in shape.
func (c *Converter) Convert(primary, aux *models.Volume) (*models.Volume, error) {
	mask, err := CombineMasks(primary, aux)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("combined candidate mask",
		zap.Int("candidateVoxels", countTrue(mask)))

	if c.params.EnclosureFill {
		mask = RemoveEnclosed(primary, mask)
		c.logger.Debug("removed enclosed candidates",
			zap.Int("candidateVoxels", countTrue(mask)))
	}

	mask, report := filterComponents(mask, primary, c.params.ClusterSizeThreshold)
	c.logComponentReport(report)

	out := MergeLabels(primary, mask)
	return out, nil
}

// logComponentReport summarizes the size filter outcome at debug level.
func (c *Converter) logComponentReport(report componentReport) {
	fields := []zap.Field{
		zap.Int("threshold", c.params.ClusterSizeThreshold),
		zap.Int("clustersKept", len(report.keptSizes)),
		zap.Int("clustersRemoved", len(report.removedSizes)),
	}
	if len(report.keptSizes) > 0 {
		fields = append(fields,
			zap.Float64("meanKeptSize", stat.Mean(report.keptSizes, nil)),
			zap.Float64("largestKeptSize", maxOf(report.keptSizes)))
	}
	if len(report.removedSizes) > 0 {
		fields = append(fields,
			zap.Float64("meanRemovedSize", stat.Mean(report.removedSizes, nil)))
	}
	c.logger.Debug("filtered candidate clusters", fields...)
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func shapeMismatchError(primary, aux *models.Volume) error {
	return fmt.Errorf("%w: primary %dx%dx%d, auxiliary %dx%dx%d",
		ErrShapeMismatch,
		primary.Width, primary.Height, primary.Depth,
		aux.Width, aux.Height, aux.Depth)
}
