package faceindex

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// faceIDPart formats one normalized coordinate as the 5-digit fractional
// string used inside a face ID. The value is clamped to [0, 0.999999] first,
// so the integer part is always zero and only the fraction is kept
// (0.12345 -> "12345").
func faceIDPart(v float64) string {
	if v < 0 {
		v = 0
	}
	if v > 0.999999 {
		v = 0.999999
	}
	digits := int(math.Round(v * 100000))
	if digits > 99999 {
		digits = 99999
	}
	return fmt.Sprintf("%05d", digits)
}

// MakeFaceID builds the stable face identifier from the file ID and the
// detection box in source pixel coordinates:
//
//	<fileID>_<xMin>_<yMin>_<xMax>_<yMax>
//
// where each coordinate field is the 5-digit fractional part of the box
// corner normalized by the image dimensions. The ID survives reindexing and
// transport, so cluster membership can reference it across devices.
func MakeFaceID(fileID int64, box geometry.Box, dims geometry.Dimensions) string {
	w := float64(dims.Width)
	h := float64(dims.Height)
	return strings.Join([]string{
		strconv.FormatInt(fileID, 10),
		faceIDPart(box.X / w),
		faceIDPart(box.Y / h),
		faceIDPart(box.MaxX() / w),
		faceIDPart(box.MaxY() / h),
	}, "_")
}

// FileIDFromFaceID parses the file ID prefix of a face ID. Returns false if
// the ID is malformed; the failure is logged but never fatal.
func FileIDFromFaceID(faceID string) (int64, bool) {
	prefix, _, found := strings.Cut(faceID, "_")
	if !found {
		log.Printf("malformed face ID %q: missing separator", faceID)
		return 0, false
	}
	fileID, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		log.Printf("malformed face ID %q: %v", faceID, err)
		return 0, false
	}
	return fileID, true
}
