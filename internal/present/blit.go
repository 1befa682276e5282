// internal/present/blit.go
package present

// blit copies rows of RGBA pixels from src into dst.
// Each row copies min(srcStride, dstStride) bytes; rows beyond either
// buffer are dropped. swapRB writes BGRA for framebuffers whose red
// channel sits at bit 16.
func blit(dst []byte, dstStride int, src []byte, srcStride int, swapRB bool) {
	if dstStride <= 0 || srcStride <= 0 {
		return
	}
	row := min(srcStride, dstStride)
	rows := min(len(src)/srcStride, len(dst)/dstStride)

	for y := 0; y < rows; y++ {
		d := dst[y*dstStride : y*dstStride+row]
		s := src[y*srcStride : y*srcStride+row]
		if !swapRB {
			copy(d, s)
			continue
		}
		for i := 0; i+3 < row; i += 4 {
			d[i+0] = s[i+2]
			d[i+1] = s[i+1]
			d[i+2] = s[i+0]
			d[i+3] = s[i+3]
		}
	}
}
