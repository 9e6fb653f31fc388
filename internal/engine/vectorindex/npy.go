package vectorindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

var (
	descrRe = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'`)
	orderRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// readNPY parses a 2-D little-endian float32 or float64 array in C order.
func readNPY(path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: %w", err)
	}
	if len(data) < 10 || !bytes.Equal(data[:6], npyMagic) {
		return nil, fmt.Errorf("vectorindex: %s is not a .npy file", path)
	}

	major := data[6]
	var headerLen, offset int
	switch major {
	case 1:
		headerLen = int(binary.LittleEndian.Uint16(data[8:10]))
		offset = 10
	case 2, 3:
		if len(data) < 12 {
			return nil, fmt.Errorf("vectorindex: truncated .npy header")
		}
		headerLen = int(binary.LittleEndian.Uint32(data[8:12]))
		offset = 12
	default:
		return nil, fmt.Errorf("vectorindex: unsupported .npy version %d", major)
	}
	if offset+headerLen > len(data) {
		return nil, fmt.Errorf("vectorindex: .npy header length %d exceeds file size", headerLen)
	}
	header := string(data[offset : offset+headerLen])
	body := data[offset+headerLen:]

	m := descrRe.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("vectorindex: .npy header has no descr")
	}
	var width int
	switch m[1] {
	case "<f4":
		width = 4
	case "<f8":
		width = 8
	default:
		return nil, fmt.Errorf("vectorindex: unsupported dtype %s", m[1])
	}

	if o := orderRe.FindStringSubmatch(header); o != nil && o[1] == "True" {
		return nil, fmt.Errorf("vectorindex: fortran-order arrays are not supported")
	}

	s := shapeRe.FindStringSubmatch(header)
	if s == nil {
		return nil, fmt.Errorf("vectorindex: .npy header has no shape")
	}
	var shape []int
	for _, part := range strings.Split(s[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("vectorindex: bad shape %q", s[1])
		}
		shape = append(shape, n)
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("vectorindex: expected 2-D array, got shape %v", shape)
	}

	rows, cols := shape[0], shape[1]
	if len(body) < rows*cols*width {
		return nil, fmt.Errorf("vectorindex: .npy data is %d bytes, shape %v needs %d", len(body), shape, rows*cols*width)
	}

	out := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		row := make([]float32, cols)
		for c := 0; c < cols; c++ {
			at := (r*cols + c) * width
			if width == 4 {
				row[c] = math.Float32frombits(binary.LittleEndian.Uint32(body[at : at+4]))
			} else {
				row[c] = float32(math.Float64frombits(binary.LittleEndian.Uint64(body[at : at+8])))
			}
		}
		out[r] = row
	}
	return out, nil
}

// writeNPY writes a version 1.0 <f4 array. The header is padded so the data
// starts on a 64-byte boundary.
func writeNPY(path string, rows [][]float32, dim int) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", len(rows), dim)
	total := len(npyMagic) + 4 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	for _, row := range rows {
		for _, v := range row {
			binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
