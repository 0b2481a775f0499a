package core

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrSwapchainBooting is returned when a frame was skipped because the
	// swapchain is being (or has just been) recreated. It is not a failure.
	ErrSwapchainBooting      = errors.New("swapchain resized or recreated, booting")
	ErrNoSuitableDevice      = errors.New("no suitable GPU")
	ErrValidationUnavailable = errors.New("validation layers requested, but not available")
	ErrUnknown               = errors.New("unknown")
)
