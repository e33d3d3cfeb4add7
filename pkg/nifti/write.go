package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"brats2twolabel/internal/models"
)

// Write encodes vol as a single-file NIfTI-1 volume at path, gzip-compressed
// when the path ends in ".gz".
//
// The header, byte order and affine rows are taken from the template image
// (normally the primary input), with the dimension and datatype fields
// normalized to the uint8 volume being written. Header extensions of the
// template are not carried over. The file is encoded fully in memory before
// anything touches disk, so a failed conversion never leaves a partial
// output behind.
func Write(path string, vol *models.Volume, template *Image) error {
	hdr := template.Header
	hdr.SizeofHdr = headerSize
	hdr.Dim = [8]int16{3, int16(vol.Width), int16(vol.Height), int16(vol.Depth), 1, 1, 1, 1}
	hdr.Datatype = DTUint8
	hdr.Bitpix = 8
	hdr.SclSlope = 1
	hdr.SclInter = 0
	hdr.VoxOffset = voxOffset
	hdr.Magic = [4]byte{'n', '+', '1', 0}

	var buf bytes.Buffer
	buf.Grow(voxOffset + len(vol.Data))
	if err := binary.Write(&buf, template.ByteOrder, &hdr); err != nil {
		return fmt.Errorf("encoding header: %w", err)
	}
	// Empty extension indicator.
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(vol.Data)

	return writeFile(path, buf.Bytes())
}

func writeFile(path string, encoded []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	var werr error
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(encoded); err != nil {
			werr = err
		}
		if err := gz.Close(); err != nil && werr == nil {
			werr = err
		}
	} else {
		_, werr = f.Write(encoded)
	}

	if err := f.Close(); err != nil && werr == nil {
		werr = err
	}
	if werr != nil {
		return fmt.Errorf("writing %s: %w", path, werr)
	}
	return nil
}
