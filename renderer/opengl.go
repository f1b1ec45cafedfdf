package renderer

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/borealis-render/borealis/gi"
	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.2
	mouseSensitivityY float32 = 0.2

	// Camera movement speed
	cameraMoveSpeed float32 = 0.05
)

const (
	leftMouseButton  = 0
	rightMouseButton = 1
)

// An interactive opengl-based renderer. Frames accumulate probe history
// while the window is open; moving the camera resets nothing since probes
// are anchored in world space.
type interactiveGLRenderer struct {
	*defaultRenderer

	// opengl handles
	window    *glfw.Window
	fbTexture uint32
	texFbo    uint32

	// state
	lastCursorPos types.Vec2
	mousePressed  [2]bool

	// mutex for synchronizing camera updates
	sync.Mutex

	// Display options
	showBlocks bool
}

// NewInteractive creates a windowed renderer that re-renders and displays
// frames until the window is closed.
func NewInteractive(sc *scene.Scene, cam *scene.Camera, globals gi.Globals, probes *gi.ProbeGrid, scheduler BlockScheduler, opts Options) (Renderer, error) {
	base, err := NewDefault(sc, cam, globals, probes, scheduler, opts)
	if err != nil {
		return nil, err
	}

	r := &interactiveGLRenderer{
		defaultRenderer: base.(*defaultRenderer),
	}

	if err = r.initGL(opts); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.SetShouldClose(true)
	}
	r.defaultRenderer.Close()
}

func (r *interactiveGLRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), "borealis", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Texture the CPU framebuffer gets uploaded into each frame.
	gl.GenTextures(1, &r.fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(opts.FrameW), int32(opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO so the frame can be blitted to the window.
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Ortho projection for the block-assignment overlay.
	gl.Disable(gl.DEPTH_TEST)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(opts.FrameW), float64(opts.FrameH), 0, -1, 1)
	gl.Viewport(0, 0, int32(opts.FrameW), int32(opts.FrameH))
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)

	return nil
}

func (r *interactiveGLRenderer) Render() error {
	for !r.window.ShouldClose() {
		glfw.PollEvents()

		// Stop re-rendering once the requested number of frames has been produced.
		if r.options.FrameCount != 0 && r.frame >= r.options.FrameCount {
			r.window.SwapBuffers()
			continue
		}

		r.Lock()
		err := r.renderFrame()
		if err != nil {
			r.Unlock()
			return err
		}

		// Upload the frame, flipping rows since GL textures are bottom-up.
		gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(r.options.FrameW), int32(r.options.FrameH),
			gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&r.framebuffer[0]))

		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, 0, int32(r.options.FrameW), int32(r.options.FrameH),
			0, int32(r.options.FrameH), int32(r.options.FrameW), 0,
			gl.COLOR_BUFFER_BIT, gl.LINEAR)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		if r.showBlocks {
			r.renderBlockOverlay()
		}

		r.window.SwapBuffers()
		r.Unlock()
	}
	return nil
}

// renderBlockOverlay outlines each worker's row block so scheduler
// rebalancing is visible.
func (r *interactiveGLRenderer) renderBlockOverlay() {
	frameW := int32(r.options.FrameW) - 1
	gl.LineWidth(2.0)
	for i, ws := range r.stats.Workers {
		hue := float32(i+1) / float32(len(r.stats.Workers))
		gl.Color3f(hue, 1-hue, 1)
		gl.Begin(gl.LINE_LOOP)
		gl.Vertex2i(0, int32(ws.BlockY))
		gl.Vertex2i(frameW, int32(ws.BlockY))
		gl.Vertex2i(frameW, int32(ws.BlockY+ws.BlockH))
		gl.Vertex2i(0, int32(ws.BlockY+ws.BlockH))
		gl.End()
	}
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir scene.CameraDirection
	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
		return
	case glfw.KeyUp:
		moveDir = scene.Forward
	case glfw.KeyDown:
		moveDir = scene.Backward
	case glfw.KeyLeft:
		moveDir = scene.Left
	case glfw.KeyRight:
		moveDir = scene.Right
	case glfw.KeyTab:
		r.showBlocks = !r.showBlocks
		return
	default:
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}

	r.Lock()
	r.camera.Move(moveDir, speedScaler*cameraMoveSpeed)
	r.Unlock()
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft && button != glfw.MouseButtonRight {
		return
	}

	r.mousePressed[leftMouseButton] = false
	r.mousePressed[rightMouseButton] = false

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)

		buttonIndex := leftMouseButton
		if button == glfw.MouseButtonRight {
			buttonIndex = rightMouseButton
		}
		r.mousePressed[buttonIndex] = true
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed[leftMouseButton] {
		return
	}

	newPos := types.XY(float32(xPos), float32(yPos))
	delta := r.lastCursorPos.Sub(newPos)
	r.lastCursorPos = newPos

	r.Lock()
	r.camera.Rotate(delta[0]*mouseSensitivityX, delta[1]*mouseSensitivityY)
	r.Unlock()
}
