package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReserveSnapshot is a pool's reserves at one point in time, oriented for a
// trade: Input is the reserve of the asset sold, Output of the asset bought.
type ReserveSnapshot struct {
	Pool   common.Address `json:"pool"`
	Input  *big.Int       `json:"input"`
	Output *big.Int       `json:"output"`
}

// Reversed returns the snapshot oriented for the opposite trade.
func (s ReserveSnapshot) Reversed() ReserveSnapshot {
	s.Input, s.Output = s.Output, s.Input
	return s
}
