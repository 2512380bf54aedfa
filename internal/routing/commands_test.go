package routing

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-av/internal/topology"
)

// kindsByShape classifies keys that contain ".IN." or ".OUT." as matrix
// ports and everything else as leaves.
func kindsByShape(key string) topology.Kind {
	if strings.Contains(key, ".IN.") || strings.Contains(key, ".OUT.") {
		return topology.KindMatrix
	}
	return topology.KindInput
}

func TestPlanCommands(t *testing.T) {
	tests := []struct {
		name    string
		path    []string
		want    []Command
		wantErr bool
	}{
		{
			name: "single matrix",
			path: []string{"CAM1", "MX1.IN.1", "MX1.OUT.1", "DISP1"},
			want: []Command{{Router: "MX1", Input: 1, Output: 1}},
		},
		{
			name: "cascade",
			path: []string{"CAM1", "MX1.IN.1", "MX1.OUT.2", "MX2.IN.3", "MX2.OUT.4", "PROJ1"},
			want: []Command{
				{Router: "MX1", Input: 1, Output: 2},
				{Router: "MX2", Input: 3, Output: 4},
			},
		},
		{
			name: "three matrices",
			path: []string{"S", "A.IN.1", "A.OUT.1", "B.IN.1", "B.OUT.2", "C.IN.2", "C.OUT.3", "D"},
			want: []Command{
				{Router: "A", Input: 1, Output: 1},
				{Router: "B", Input: 1, Output: 2},
				{Router: "C", Input: 2, Output: 3},
			},
		},
		{
			name: "out without matching in is ignored",
			path: []string{"MX1.OUT.1", "MX2.IN.1", "MX2.OUT.2"},
			want: []Command{{Router: "MX2", Input: 1, Output: 2}},
		},
		{
			name: "leaves only",
			path: []string{"CAM1", "DISP1"},
			want: nil,
		},
		{
			name:    "malformed second hop keeps first",
			path:    []string{"CAM1", "MX1.IN.1", "MX1.OUT.2", "MX2.IN.x", "MX2.OUT.1", "PROJ1"},
			want:    []Command{{Router: "MX1", Input: 1, Output: 2}},
			wantErr: true,
		},
		{
			name:    "malformed first hop",
			path:    []string{"CAM1", "MX1.IN.one", "MX1.OUT.1", "DISP1"},
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := planCommands(tt.path, kindsByShape)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPath) {
					t.Fatalf("error = %v, want ErrMalformedPath", err)
				}
				if !errors.Is(err, topology.ErrMalformedKey) {
					t.Errorf("error = %v, want wrapped ErrMalformedKey", err)
				}
			} else if err != nil {
				t.Fatalf("error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("planCommands = %+v, want %+v", got, tt.want)
			}
		})
	}
}
