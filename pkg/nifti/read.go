package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"brats2twolabel/internal/models"
)

// Image is a decoded NIfTI volume: the label data cast to uint8 plus the
// spatial metadata (header, byte order, affine) needed to write a matching
// output file.
type Image struct {
	// Header is the raw NIfTI-1 header as read from disk. The converter
	// treats it as opaque metadata to carry through to the output.
	Header Header

	// ByteOrder is the byte order the file was encoded with.
	ByteOrder binary.ByteOrder

	// Affine is the voxel-to-world transform derived from the header.
	Affine [4][4]float64

	// Vol holds the voxel data cast to uint8.
	Vol *models.Volume
}

// Read decodes a NIfTI-1 file, transparently handling gzip compression, and
// casts the voxel data to uint8. Scale factors (scl_slope/scl_inter) are
// applied before the cast, matching the behavior of common NIfTI tooling.
//
// Only 3D volumes are accepted; trailing singleton dimensions are squeezed.
func Read(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	raw, err := readMaybeGzipped(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	img, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// NewImage wraps a volume in a fresh little-endian image with unit voxel
// spacing and an identity affine. Intended for synthetic volumes; converted
// outputs should instead reuse the primary input's image as write template.
func NewImage(vol *models.Volume) *Image {
	var hdr Header
	hdr.SizeofHdr = headerSize
	hdr.Regular = 'r'
	hdr.Dim = [8]int16{3, int16(vol.Width), int16(vol.Height), int16(vol.Depth), 1, 1, 1, 1}
	hdr.Pixdim = [8]float32{1, 1, 1, 1, 1, 1, 1, 1}
	hdr.Datatype = DTUint8
	hdr.Bitpix = 8
	hdr.SclSlope = 1
	hdr.VoxOffset = voxOffset
	hdr.SformCode = 1
	hdr.SrowX = [4]float32{1, 0, 0, 0}
	hdr.SrowY = [4]float32{0, 1, 0, 0}
	hdr.SrowZ = [4]float32{0, 0, 1, 0}
	hdr.Magic = [4]byte{'n', '+', '1', 0}

	return &Image{
		Header:    hdr,
		ByteOrder: binary.LittleEndian,
		Affine:    affineFromHeader(&hdr),
		Vol:       vol,
	}
}

// readMaybeGzipped slurps the whole file, decompressing if the gzip magic is
// present. Whole-file reads are fine here: label volumes are small and the
// header offset arithmetic needs random access anyway.
func readMaybeGzipped(f *os.File) ([]byte, error) {
	head := make([]byte, 2)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if n == 2 && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(f)
}

func decode(raw []byte) (*Image, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrFormat, len(raw))
	}

	order, err := detectByteOrder(raw)
	if err != nil {
		return nil, err
	}

	var hdr Header
	if err := binary.Read(bytes.NewReader(raw[:headerSize]), order, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if hdr.Magic != [4]byte{'n', '+', '1', 0} {
		return nil, fmt.Errorf("%w: unsupported magic %q (only single-file NIfTI-1 is supported)", ErrFormat, hdr.Magic[:3])
	}

	width, height, depth, err := volumeDims(&hdr)
	if err != nil {
		return nil, err
	}

	offset := int(hdr.VoxOffset)
	if offset < headerSize || offset > len(raw) {
		return nil, fmt.Errorf("%w: vox_offset %d out of range", ErrFormat, offset)
	}

	data, err := castVoxels(raw[offset:], order, &hdr, width*height*depth)
	if err != nil {
		return nil, err
	}

	return &Image{
		Header:    hdr,
		ByteOrder: order,
		Affine:    affineFromHeader(&hdr),
		Vol: &models.Volume{
			Data:   data,
			Width:  width,
			Height: height,
			Depth:  depth,
		},
	}, nil
}

// detectByteOrder infers the file's byte order from sizeof_hdr, which must
// decode to 348 under the correct order.
func detectByteOrder(raw []byte) (binary.ByteOrder, error) {
	if binary.LittleEndian.Uint32(raw) == headerSize {
		return binary.LittleEndian, nil
	}
	if binary.BigEndian.Uint32(raw) == headerSize {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("%w: sizeof_hdr is not %d in either byte order", ErrFormat, headerSize)
}

// volumeDims validates the dimension block and returns the 3D extents.
// Dimensions beyond the third must be singletons.
func volumeDims(hdr *Header) (int, int, int, error) {
	ndim := int(hdr.Dim[0])
	if ndim < 3 || ndim > 7 {
		return 0, 0, 0, fmt.Errorf("%w: %d-dimensional image, need 3", ErrFormat, ndim)
	}
	for i := 4; i <= ndim; i++ {
		if hdr.Dim[i] > 1 {
			return 0, 0, 0, fmt.Errorf("%w: dimension %d has extent %d, only 3D volumes are supported", ErrFormat, i, hdr.Dim[i])
		}
	}
	width, height, depth := int(hdr.Dim[1]), int(hdr.Dim[2]), int(hdr.Dim[3])
	if width <= 0 || height <= 0 || depth <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: non-positive dimensions %dx%dx%d", ErrFormat, width, height, depth)
	}
	return width, height, depth, nil
}

// castVoxels decodes n voxels of the header's element type and casts them to
// uint8, applying scl_slope/scl_inter when set. The cast truncates toward
// zero and wraps, the same way a numpy astype does.
func castVoxels(data []byte, order binary.ByteOrder, hdr *Header, n int) ([]uint8, error) {
	width := bytesPerVoxel(hdr.Datatype)
	if width == 0 {
		return nil, fmt.Errorf("%w: unsupported datatype code %d", ErrFormat, hdr.Datatype)
	}
	if len(data) < n*width {
		return nil, fmt.Errorf("%w: data section holds %d bytes, need %d", ErrFormat, len(data), n*width)
	}

	slope := float64(hdr.SclSlope)
	inter := float64(hdr.SclInter)
	scaled := slope != 0 && !(slope == 1 && inter == 0)

	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		var v float64
		switch hdr.Datatype {
		case DTUint8:
			v = float64(data[i])
		case DTInt16:
			v = float64(int16(order.Uint16(data[i*2:])))
		case DTUint16:
			v = float64(order.Uint16(data[i*2:]))
		case DTInt32:
			v = float64(int32(order.Uint32(data[i*4:])))
		case DTFloat32:
			v = float64(math.Float32frombits(order.Uint32(data[i*4:])))
		case DTFloat64:
			v = math.Float64frombits(order.Uint64(data[i*8:]))
		}
		if scaled {
			v = v*slope + inter
		}
		out[i] = uint8(int64(v))
	}
	return out, nil
}
