// Package compose is an instance-driven compositor for rectangular screen
// elements such as UI panels, sprites and glyphs.
//
// # Overview
//
// Each frame the caller fills a [FrameState], an [InstanceStore] and a
// [TextureTable], then hands them to a renderer. The renderer draws one
// procedural quad per [InstanceRecord] and shades every fragment with
// [ShadeRectangle]: a hard rectangular clip, a base color chosen by the
// record's [RectangleType], and signed-distance-field anti-aliasing for the
// four independently rounded corners.
//
// The rendered target can then go through the post-processing passes in the
// render package: a multisample resolve and a separable box blur whose kernel
// grows with the source resolution.
//
// # Quick Start
//
//	frame := compose.NewFrameState(mgl32.Ident4(), mgl32.Ident4(), 800, 600)
//	table := compose.NewTextureTable()
//	store := compose.NewInstanceStore()
//
//	instances, err := store.Write(ctx, []compose.InstanceRecord{
//	    compose.SolidRectangle(mgl32.Vec2{0.1, 0.1}, mgl32.Vec2{0.3, 0.2}, compose.Hex("#3366cc")).
//	        WithCornerRadius(compose.UniformRadius(12)),
//	})
//
//	r := render.NewSoftwareRenderer(render.Options{})
//	defer r.Close()
//	out, err := r.Render(ctx, &compose.Frame{State: frame, Instances: instances, Textures: table})
//
// # Executors
//
// The render package evaluates every pass on the CPU with a worker pool and is
// always available. Importing the gpu package registers a [Backend] that
// records the same passes as wgpu render pipelines.
//
// # Logging
//
// compose is silent by default. Use [SetLogger] to route diagnostics to any
// slog handler.
package compose
