package keycraft

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// fingerOrder lists the eight non-thumb (hand, finger) slots in the order a
// target-finger-load string supplies them: left pinky..index, then right
// index..pinky.
var fingerOrder = [8]struct {
	Hand   Hand
	Finger Finger
}{
	{Left, Pinky}, {Left, Ring}, {Left, Middle}, {Left, Index},
	{Right, Index}, {Right, Middle}, {Right, Ring}, {Right, Pinky},
}

// NewFingerBalanceTargets creates FingerBalanceTargets with the documented
// default distribution: even load across the eight non-thumb fingers.
func NewFingerBalanceTargets() *FingerBalanceTargets {
	return &FingerBalanceTargets{Loads: defaultFingerLoad()}
}

func defaultFingerLoad() HandFingerMap[float64] {
	var hfm HandFingerMap[float64]
	for _, slot := range fingerOrder {
		hfm.Set(slot.Hand, slot.Finger, 100.0/8)
	}
	return hfm
}

// NewFingerBalanceTargetsFromFile loads finger-load targets from a config
// file. Returns the default distribution if the file sets nothing.
func NewFingerBalanceTargetsFromFile(filePath string) (*FingerBalanceTargets, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	targets := NewFingerBalanceTargets()
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if key == "target-finger-load" {
			if err := targets.SetFingerLoad(value); err != nil {
				return nil, fmt.Errorf("invalid target-finger-load in config file: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return targets, nil
}

// SetFingerLoad parses and sets the finger load distribution from a string.
// Accepts 4 values (mirrored for both hands) or 8 values (left pinky..index,
// right index..pinky). Values are automatically scaled to sum to 100%.
func (tl *FingerBalanceTargets) SetFingerLoad(s string) error {
	loads, err := parseFingerLoad(s)
	if err != nil {
		return fmt.Errorf("could not parse finger load: %w", err)
	}
	tl.Loads = loads
	return nil
}

// parseFingerLoad parses finger load values from a comma-separated string.
// Accepts 4 values (mirrored to 8) or 8 values directly, in fingerOrder.
func parseFingerLoad(s string) (HandFingerMap[float64], error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 && len(parts) != 8 {
		return HandFingerMap[float64]{}, fmt.Errorf("target-finger-load must have 4 or 8 comma-separated values")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// If the user provided 4 values, mirror them for the opposite hand.
	if len(parts) == 4 {
		parts = append(parts, parts[3], parts[2], parts[1], parts[0])
	}

	var vals [8]float64
	var sum float64
	for i, p := range parts {
		if p == "" {
			return HandFingerMap[float64]{}, fmt.Errorf("empty value in target-finger-load at position %d", i)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0.0 {
			return HandFingerMap[float64]{}, fmt.Errorf("invalid float in target-finger-load at position %d: %w", i, err)
		}
		vals[i] = v
		sum += v
	}

	const epsilon = 1e-9
	if sum < epsilon {
		return HandFingerMap[float64]{}, fmt.Errorf("cannot scale finger load: sum is zero or too small")
	}
	scale := 100.0 / sum

	var hfm HandFingerMap[float64]
	for i, slot := range fingerOrder {
		hfm.Set(slot.Hand, slot.Finger, vals[i]*scale)
	}
	return hfm, nil
}
