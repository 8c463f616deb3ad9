package fingerprint

import (
	"encoding/hex"
	"fmt"
	"image"
	"math/bits"
	"sort"

	"gocv.io/x/gocv"
)

const (
	// HashSize is the side length of the DCT low-frequency block.
	HashSize = 16

	// BitLength is the total number of bits in a fingerprint (16x16 = 256).
	BitLength = HashSize * HashSize
)

// dctInputSize is the side length images are resized to before the DCT.
// Four times the hash size keeps enough detail for the low-frequency block.
const dctInputSize = HashSize * 4

// Fingerprint is a fixed-length perceptual hash of a page image.
// Two fingerprints are compared only via Hamming distance.
type Fingerprint struct {
	bits [BitLength / 8]byte
}

// Compute calculates a DCT-based perceptual hash for the image.
// Returns an error if the image is empty.
func Compute(img gocv.Mat) (*Fingerprint, error) {
	if img.Empty() {
		return nil, fmt.Errorf("cannot compute fingerprint for empty image")
	}

	// Resize to a small square for the DCT
	resized := gocv.NewMat()
	defer resized.Close()

	gocv.Resize(img, &resized, image.Point{X: dctInputSize, Y: dctInputSize}, 0, 0, gocv.InterpolationLinear)

	// Convert to grayscale if not already
	gray := gocv.NewMat()
	defer gray.Close()

	if resized.Channels() != 1 {
		gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	} else {
		resized.CopyTo(&gray)
	}

	// Convert to float for DCT
	floatImg := gocv.NewMat()
	defer floatImg.Close()
	gray.ConvertTo(&floatImg, gocv.MatTypeCV32F)

	dct := gocv.NewMat()
	defer dct.Close()
	gocv.DCT(floatImg, &dct, 0)

	// Extract the low-frequency block
	lowFreq := dct.Region(image.Rect(0, 0, HashSize, HashSize))
	defer lowFreq.Close()

	values := make([]float32, 0, BitLength)
	for y := 0; y < lowFreq.Rows(); y++ {
		for x := 0; x < lowFreq.Cols(); x++ {
			values = append(values, lowFreq.GetFloatAt(y, x))
		}
	}

	median := calculateMedian(values)

	// Each coefficient above the median sets a bit
	var fp Fingerprint
	idx := 0
	for y := 0; y < lowFreq.Rows(); y++ {
		for x := 0; x < lowFreq.Cols(); x++ {
			if lowFreq.GetFloatAt(y, x) >= median {
				fp.bits[idx/8] |= 1 << (7 - uint(idx%8))
			}
			idx++
		}
	}

	return &fp, nil
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b *Fingerprint) int {
	d := 0
	for i := range a.bits {
		d += bits.OnesCount8(a.bits[i] ^ b.bits[i])
	}
	return d
}

// Bytes returns the raw fingerprint bits.
func (f *Fingerprint) Bytes() []byte {
	out := make([]byte, len(f.bits))
	copy(out, f.bits[:])
	return out
}

// String returns the fingerprint as a hexadecimal string.
func (f *Fingerprint) String() string {
	return hex.EncodeToString(f.bits[:])
}

// FromBytes builds a fingerprint from raw bits.
func FromBytes(data []byte) (*Fingerprint, error) {
	if len(data) != BitLength/8 {
		return nil, fmt.Errorf("fingerprint must be %d bytes, got %d", BitLength/8, len(data))
	}
	var fp Fingerprint
	copy(fp.bits[:], data)
	return &fp, nil
}

// Parse decodes a fingerprint from its hexadecimal string form.
func Parse(s string) (*Fingerprint, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid fingerprint hex: %v", err)
	}
	return FromBytes(data)
}

// calculateMedian calculates the median value of a float32 array
func calculateMedian(values []float32) float32 {
	// Make a copy to avoid modifying the original slice
	valuesCopy := make([]float32, len(values))
	copy(valuesCopy, values)

	sort.Slice(valuesCopy, func(i, j int) bool {
		return valuesCopy[i] < valuesCopy[j]
	})

	length := len(valuesCopy)
	if length == 0 {
		return 0
	} else if length%2 == 0 {
		return (valuesCopy[length/2-1] + valuesCopy[length/2]) / 2
	}
	return valuesCopy[length/2]
}
