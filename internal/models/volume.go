package models

// Volume represents a 3D label volume as a flat voxel array.
//
// Voxels are stored with x varying fastest, matching the element order of
// NIfTI image data, so the voxel at (x, y, z) lives at index
// z*Width*Height + y*Width + x.
type Volume struct {
	// Data is the voxel data as a 1D array in x-fastest order
	Data []uint8

	// Width is the extent of the volume along the x axis in voxels
	Width int

	// Height is the extent of the volume along the y axis in voxels
	Height int

	// Depth is the extent of the volume along the z axis in voxels
	Depth int
}

// NewVolume allocates a zero-filled volume with the given dimensions.
func NewVolume(width, height, depth int) *Volume {
	return &Volume{
		Data:   make([]uint8, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
}

// Index returns the flat index of the voxel at (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the label at (x, y, z).
func (v *Volume) At(x, y, z int) uint8 {
	return v.Data[v.Index(x, y, z)]
}

// Set assigns the label at (x, y, z).
func (v *Volume) Set(x, y, z int, label uint8) {
	v.Data[v.Index(x, y, z)] = label
}

// NumVoxels returns the total number of voxels in the volume.
func (v *Volume) NumVoxels() int {
	return v.Width * v.Height * v.Depth
}

// SameShape reports whether the two volumes have identical dimensions.
func (v *Volume) SameShape(other *Volume) bool {
	return v.Width == other.Width && v.Height == other.Height && v.Depth == other.Depth
}

// Clone returns a deep copy of the volume.
func (v *Volume) Clone() *Volume {
	out := NewVolume(v.Width, v.Height, v.Depth)
	copy(out.Data, v.Data)
	return out
}
