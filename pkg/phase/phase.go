// Package phase classifies shooting frames into discrete phases.
//
// Classify is memoryless: the previous phase is an explicit argument. Session
// wraps it for a video and is owned by the caller, one per video, so videos
// can be processed concurrently without sharing state.
package phase

import (
	"errors"
	"fmt"
)

var ErrUnknownPhase = errors.New("unknown shot phase")

// Phase is a shooting phase, declared in forward order.
type Phase int

const (
	Setup Phase = iota
	Dip
	Rise
	Release
	FollowThrough
)

var phaseNames = [...]string{
	Setup:         "SETUP",
	Dip:           "DIP",
	Rise:          "RISE",
	Release:       "RELEASE",
	FollowThrough: "FOLLOW_THROUGH",
}

func (p Phase) Valid() bool {
	return p >= Setup && p <= FollowThrough
}

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, name)
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPhase, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
