package topology

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is the side of a matrix a port sits on.
type Direction string

// Port directions as they appear in vertex keys.
const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// PortRef is a decomposed matrix port key.
type PortRef struct {
	Matrix    string
	Direction Direction
	Port      int
}

// MatrixInputKey returns the vertex key for input n of a matrix, e.g. "MX1.IN.3".
func MatrixInputKey(matrixID string, n int) string {
	return fmt.Sprintf("%s.%s.%d", matrixID, DirectionIn, n)
}

// MatrixOutputKey returns the vertex key for output n of a matrix, e.g. "MX1.OUT.2".
func MatrixOutputKey(matrixID string, n int) string {
	return fmt.Sprintf("%s.%s.%d", matrixID, DirectionOut, n)
}

// ParsePortKey splits a matrix port key into its parts.
//
// The key is split on its last two dots, so matrix IDs may themselves
// contain dots ("rack.1.MX.IN.4" is matrix "rack.1.MX", input 4).
//
// Returns:
//   - PortRef: The decomposed key
//   - error: ErrMalformedKey if the direction is not IN/OUT or the port
//     is not a positive integer
func ParsePortKey(key string) (PortRef, error) {
	portDot := strings.LastIndexByte(key, '.')
	if portDot <= 0 {
		return PortRef{}, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	dirDot := strings.LastIndexByte(key[:portDot], '.')
	if dirDot <= 0 {
		return PortRef{}, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}

	dir := Direction(key[dirDot+1 : portDot])
	if dir != DirectionIn && dir != DirectionOut {
		return PortRef{}, fmt.Errorf("%w: %q: direction %q", ErrMalformedKey, key, dir)
	}

	port, err := strconv.Atoi(key[portDot+1:])
	if err != nil || port < 1 {
		return PortRef{}, fmt.Errorf("%w: %q: port %q", ErrMalformedKey, key, key[portDot+1:])
	}

	return PortRef{
		Matrix:    key[:dirDot],
		Direction: dir,
		Port:      port,
	}, nil
}
