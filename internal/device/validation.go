package device

import (
	"fmt"
	"regexp"
)

// Validation constants.
const (
	maxNameLength = 64

	// Names are substituted into topic templates, so MQTT separators and
	// wildcards are not allowed.
	namePattern = `^[A-Za-z0-9][A-Za-z0-9_.-]*$`
)

var nameRegex = regexp.MustCompile(namePattern)

// Pre-computed validation set for O(1) lookups.
var validKinds map[Kind]struct{}

func init() {
	validKinds = make(map[Kind]struct{}, len(AllKinds()))
	for _, k := range AllKinds() {
		validKinds[k] = struct{}{}
	}
}

// ValidateName checks a device name is usable as a topic segment.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains characters not allowed in a topic", ErrInvalidName, name)
	}
	return nil
}

// ValidateKind checks a kind is recognised.
func ValidateKind(k Kind) error {
	if _, ok := validKinds[k]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, k)
	}
	return nil
}

// ValidateDevice checks a fully built device.
func ValidateDevice(d *Device) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if err := ValidateKind(d.Kind); err != nil {
		return err
	}
	if d.Kind == KindTag && d.TapTopic == "" && d.DoubleTapTopic == "" {
		return fmt.Errorf("%w: tag %q has no gesture topics", ErrInvalidDevice, d.Name)
	}
	if d.Threshold < 0 {
		return fmt.Errorf("%w: %q threshold must not be negative", ErrInvalidDevice, d.Name)
	}
	return nil
}
