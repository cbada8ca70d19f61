package matrix

// DeviceMatrix is the stamping target for devices.
type DeviceMatrix interface {
	AddElement(i, j int, value complex128) // 1-based indexing, 0 is ground
	// block is nodes x nodes in column-major order
	AddPrimitiveMatrix(order int, nodes []int, block []complex128) error
}
