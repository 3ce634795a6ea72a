//go:build !linux

package source

import "github.com/pkg/errors"

func EnumPhysicalDisks() ([]PhysicalDisk, error) {
	return nil, errors.New("physical disk enumeration is not supported on this platform")
}
