// Package nifti reads and writes NIfTI-1 volumes for the two-label converter.
//
// The package supports single-file NIfTI ("n+1" magic), optionally
// gzip-compressed, with the data section cast to uint8 on read. It propagates
// the header and affine of a template image to the output, so the converted
// volume keeps the spatial metadata of the primary input. It is deliberately
// not a general NIfTI library: only the element types that occur in
// segmentation exports are decoded, and extensions are dropped on write.
package nifti

import (
	"errors"
)

// ErrFormat wraps every malformed-file error returned by this package.
var ErrFormat = errors.New("nifti: invalid file")

// headerSize is the fixed size of a NIfTI-1 header in bytes.
const headerSize = 348

// voxOffset is the data offset written by this package: the header followed by
// a four-byte empty extension indicator.
const voxOffset = headerSize + 4

// NIfTI-1 datatype codes for the element types this package decodes.
const (
	DTUint8   int16 = 2
	DTInt16   int16 = 4
	DTInt32   int16 = 8
	DTFloat32 int16 = 16
	DTFloat64 int16 = 64
	DTUint16  int16 = 512
)

// Header is the on-disk NIfTI-1 header. Field order and widths match the
// standard 348-byte layout exactly so the struct can be encoded and decoded
// with encoding/binary.
type Header struct {
	SizeofHdr    int32
	DataTypeName [10]byte
	DBName       [18]byte
	Extents      int32
	SessionError int16
	Regular      byte
	DimInfo      byte

	Dim           [8]int16
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	Datatype      int16
	Bitpix        int16
	SliceStart    int16
	Pixdim        [8]float32
	VoxOffset     float32
	SclSlope      float32
	SclInter      float32
	SliceEnd      int16
	SliceCode     byte
	XyztUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	Toffset       float32
	Glmax         int32
	Glmin         int32

	Descrip [80]byte
	AuxFile [24]byte

	QformCode int16
	SformCode int16
	QuaternB  float32
	QuaternC  float32
	QuaternD  float32
	QoffsetX  float32
	QoffsetY  float32
	QoffsetZ  float32
	SrowX     [4]float32
	SrowY     [4]float32
	SrowZ     [4]float32

	IntentName [16]byte
	Magic      [4]byte
}

// bytesPerVoxel returns the on-disk element width for a datatype code, or 0
// if the code is not supported.
func bytesPerVoxel(datatype int16) int {
	switch datatype {
	case DTUint8:
		return 1
	case DTInt16, DTUint16:
		return 2
	case DTInt32, DTFloat32:
		return 4
	case DTFloat64:
		return 8
	default:
		return 0
	}
}

// affineFromHeader derives the voxel-to-world transform. The sform rows are
// used when present; otherwise a diagonal pixdim scaling is assumed. The
// converter only carries the affine through to the output, so qform
// quaternion decoding is not needed here.
func affineFromHeader(hdr *Header) [4][4]float64 {
	var affine [4][4]float64
	affine[3][3] = 1
	if hdr.SformCode > 0 {
		for j := 0; j < 4; j++ {
			affine[0][j] = float64(hdr.SrowX[j])
			affine[1][j] = float64(hdr.SrowY[j])
			affine[2][j] = float64(hdr.SrowZ[j])
		}
		return affine
	}
	for i := 0; i < 3; i++ {
		scale := float64(hdr.Pixdim[i+1])
		if scale == 0 {
			scale = 1
		}
		affine[i][i] = scale
	}
	return affine
}
