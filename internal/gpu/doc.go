// Package gpu holds the HAL-level plumbing behind package headless:
// backend instances and adapter enumeration, logical devices, offscreen
// render targets, render pipelines, frame encoding and pixel readback.
//
// Everything here talks to github.com/gogpu/wgpu/hal directly. Backends are
// registered by import; on every platform the CPU rasterizer is available
// as a last resort, which is what the tests run on.
//
// # Frames
//
// A Frame records clears and indexed draws against a Target. Encode turns
// them into one command buffer: each clear opens a render pass with a
// clear load op, draws join the open pass or open a loading pass.
//
//	frame := gpu.NewFrame(target)
//	frame.Clear(gpu.ClearOp{ClearColor: true, Color: gputypes.Color{R: 0.3, G: 0.4, B: 0.5, A: 1}})
//	cmd, err := frame.Encode(dev, "frame")
//	...
//	err = dev.Submit(cmd)
//	pix, err := gpu.ReadTarget(dev, target, "readback")
package gpu
