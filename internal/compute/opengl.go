//go:build opengl

package compute

import (
	"context"
	_ "embed"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/san-kum/partsim/internal/particle"
)

//go:embed shaders/particles.comp
var particleShader string

var uniformNames = []string{
	"deltaTime", "time", "numParticles",
	"gravity", "damping", "maxSpeed", "centerEpsilon",
	"alphaMin", "alphaMax", "phaseStep", "pulseRate", "bound",
}

// OpenGLBackend runs the kernel as a compute shader. All GL calls happen on
// one goroutine locked to its OS thread, which owns a hidden 1x1 window for
// the context.
type OpenGLBackend struct {
	jobs     chan func()
	done     chan struct{}
	once     sync.Once
	initErr  error
	renderer string

	window   *glfw.Window
	program  uint32
	ssboIn   uint32
	ssboOut  uint32
	capacity int
	uniforms map[string]int32
}

func NewOpenGLBackend() *OpenGLBackend {
	b := &OpenGLBackend{
		jobs: make(chan func()),
		done: make(chan struct{}),
	}
	ready := make(chan struct{})
	go b.loop(ready)
	<-ready
	return b
}

func (b *OpenGLBackend) loop(ready chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b.initErr = b.init()
	close(ready)

	for job := range b.jobs {
		job()
	}

	b.release()
	close(b.done)
}

func (b *OpenGLBackend) init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to init glfw: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(1, 1, "partsim", nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create context: %w", err)
	}
	window.MakeContextCurrent()
	b.window = window

	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to init opengl: %w", err)
	}

	program, err := createComputeProgram(particleShader)
	if err != nil {
		return err
	}
	b.program = program

	b.uniforms = make(map[string]int32, len(uniformNames))
	for _, name := range uniformNames {
		b.uniforms[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}

	gl.GenBuffers(1, &b.ssboIn)
	gl.GenBuffers(1, &b.ssboOut)

	b.renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	return nil
}

func (b *OpenGLBackend) release() {
	if b.window == nil {
		return
	}
	if b.program != 0 {
		gl.DeleteBuffers(1, &b.ssboIn)
		gl.DeleteBuffers(1, &b.ssboOut)
		gl.DeleteProgram(b.program)
	}
	b.window.Destroy()
	glfw.Terminate()
}

// do runs fn on the GL thread and waits for it.
func (b *OpenGLBackend) do(fn func()) {
	finished := make(chan struct{})
	b.jobs <- func() {
		defer close(finished)
		fn()
	}
	<-finished
}

func (b *OpenGLBackend) Name() string {
	if b.initErr == nil {
		return "opengl (" + b.renderer + ")"
	}
	return "opengl (not available)"
}

func (b *OpenGLBackend) Available() bool { return b.initErr == nil }

func (b *OpenGLBackend) Cleanup() {
	b.once.Do(func() {
		close(b.jobs)
		<-b.done
	})
}

func (b *OpenGLBackend) Run(ctx context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	if b.initErr != nil {
		return fmt.Errorf("compute: opengl backend unavailable: %w", b.initErr)
	}
	if err := checkBuffers(src, dst); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return interrupted(err)
	}

	var err error
	b.do(func() { err = b.dispatch(k.Constants(), src, dst, p) })
	return err
}

func (b *OpenGLBackend) dispatch(c particle.Constants, src, dst []particle.Particle, p particle.Params) error {
	n := len(src)
	size := n * particle.Stride

	if n > b.capacity {
		for _, ssbo := range []uint32{b.ssboIn, b.ssboOut} {
			gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
			gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_COPY)
		}
		b.capacity = n
	}

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.ssboIn)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, size, unsafe.Pointer(&src[0]))
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, b.ssboIn)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, b.ssboOut)

	gl.UseProgram(b.program)
	gl.Uniform1f(b.uniforms["deltaTime"], p.DeltaTime)
	gl.Uniform1f(b.uniforms["time"], p.Time)
	gl.Uniform1ui(b.uniforms["numParticles"], uint32(n))
	gl.Uniform1f(b.uniforms["gravity"], c.Gravity)
	gl.Uniform1f(b.uniforms["damping"], c.Damping)
	gl.Uniform1f(b.uniforms["maxSpeed"], c.MaxSpeed)
	gl.Uniform1f(b.uniforms["centerEpsilon"], c.CenterEpsilon)
	gl.Uniform1f(b.uniforms["alphaMin"], c.AlphaMin)
	gl.Uniform1f(b.uniforms["alphaMax"], c.AlphaMax)
	gl.Uniform1f(b.uniforms["phaseStep"], c.PhaseStep)
	gl.Uniform1f(b.uniforms["pulseRate"], c.PulseRate)
	gl.Uniform1f(b.uniforms["bound"], c.Bound)

	gl.DispatchCompute(uint32(GridSize(n)/WorkgroupSize), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.ssboOut)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, size, unsafe.Pointer(&dst[0]))

	if code := gl.GetError(); code != gl.NO_ERROR {
		return interrupted(fmt.Errorf("gl error 0x%x", code))
	}
	return nil
}

func createComputeProgram(source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile compute shader: %v", log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)
	gl.DeleteShader(shader)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link compute program")
	}

	return program, nil
}
