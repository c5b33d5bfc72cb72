// Package headless renders single frames offscreen on a GPU and reads the
// pixels back to host memory.
//
// The API mirrors the lifecycle of a GL offscreen context: a Connection
// enumerates adapters, an Adapter opens a Device, the Device creates a
// Context and a Surface, the surface is bound to the context, the context
// is made current and the typed function table (Functions) is loaded.
// Rendering goes through wgpu's HAL backends (Vulkan, Metal, DX12, GLES,
// and a CPU rasterizer) rather than a native GL driver.
//
// # Quick Start
//
//	s, err := headless.Setup(headless.DefaultSetupConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pix, err := headless.RenderClear(s.GL, s.SurfaceInfo, headless.DefaultFrameConfig())
//	s.Close()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = pix.Save("test.png")
//
// # Frames
//
// RenderClear clears the surface and reads it back. RenderQuad additionally
// compiles a shader program and draws an indexed quad. Without
// QuadConfig.BindProgram the program is never made active, so the draw is
// skipped and the output is the clear color; FrameStats reports it.
//
// # Pixel layout
//
// ReadPixels returns rows bottom-up, as GL does. PixelBuffer keeps that
// order and Save writes it unchanged, so the saved image appears vertically
// flipped relative to the framebuffer.
//
// # Logging
//
// headless is silent by default. Call SetLogger to enable structured
// logging via log/slog.
package headless
