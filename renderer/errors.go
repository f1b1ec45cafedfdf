package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrProbesNotDefined = errors.New("renderer: no probe grid defined")
	ErrInvalidFrameDims = errors.New("renderer: frame dimensions must be non-zero")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
