package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/meshlod/pkg/mesh"
)

const (
	maxGridSize     = 512
	maxSphereRings  = 512
	defaultGridSize = 8
)

// parseMesh builds the procedural mesh a CLI name refers to.
func parseMesh(name string) (*mesh.Mesh, error) {
	kind, params, _ := strings.Cut(strings.ToLower(name), ":")

	switch kind {
	case "cube":
		return mesh.NewCube(), nil
	case "grid":
		n := defaultGridSize
		if params != "" {
			v, err := parseSize(params, maxGridSize)
			if err != nil {
				return nil, fmt.Errorf("grid %q: %w", name, err)
			}
			n = v
		}
		return mesh.NewGrid(n), nil
	case "sphere":
		rings, segments := 16, 24
		if params != "" {
			r, s, ok := strings.Cut(params, ",")
			if !ok {
				return nil, fmt.Errorf("sphere %q: want sphere:<rings>,<segments>", name)
			}
			var err error
			if rings, err = parseSize(r, maxSphereRings); err != nil {
				return nil, fmt.Errorf("sphere %q rings: %w", name, err)
			}
			if segments, err = parseSize(s, maxSphereRings); err != nil {
				return nil, fmt.Errorf("sphere %q segments: %w", name, err)
			}
		}
		return mesh.NewUVSphere(rings, segments), nil
	default:
		return nil, fmt.Errorf("unknown mesh %q", name)
	}
}

func parseSize(s string, limit int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 1 || v > limit {
		return 0, fmt.Errorf("size %d out of range [1, %d]", v, limit)
	}
	return v, nil
}
