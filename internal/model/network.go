package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	NetworkMainnet uint64 = 1
	NetworkRinkeby uint64 = 4
)

var networkNames = map[uint64]string{
	NetworkMainnet: "mainnet",
	NetworkRinkeby: "rinkeby",
}

// NetworkName returns a readable name for a network ID.
func NetworkName(id uint64) string {
	if name, ok := networkNames[id]; ok {
		return name
	}
	return strconv.FormatUint(id, 10)
}

// ParseNetwork accepts a numeric network ID or a known name.
func ParseNetwork(input string) (uint64, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	for id, name := range networkNames {
		if name == input {
			return id, nil
		}
	}
	id, err := strconv.ParseUint(input, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid network: %q", input)
	}
	return id, nil
}
