package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "luma", "":
		return NewLumaDetector(), nil
	case "fast":
		d := NewLumaDetector()
		d.Step = 4
		return d, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
