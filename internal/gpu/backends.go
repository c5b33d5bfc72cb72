package gpu

import (
	// Registers the platform HAL backends (Vulkan, Metal, DX12, GLES)
	// plus the CPU rasterizer.
	_ "github.com/gogpu/wgpu/hal/allbackends"
)
