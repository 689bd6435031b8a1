package model

import (
	"fmt"
	"strings"
)

// Direction is the side of the account a bank record moves money on.
type Direction string

// Direction constants.
const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// ParseDirection converts user or configuration input into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(DirectionCredit):
		return DirectionCredit, nil
	case string(DirectionDebit):
		return DirectionDebit, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want credit or debit)", s)
	}
}

// Ptr returns a pointer to a copy of d.
func (d Direction) Ptr() *Direction {
	return &d
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == DirectionCredit {
		return DirectionDebit
	}
	return DirectionCredit
}
