// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the software executor of the compositor.
//
// Every pass is a pure function evaluated once per output pixel over a 2-D
// index range, split into row bands on a work-stealing pool:
//
//   - RectanglePass draws one quad per instance into a possibly
//     multisampled Target, shading fragments with compose.ShadeRectangle.
//   - ResolvePass turns the multisampled color and depth into a
//     single-sample target. Its sample count is fixed at construction.
//   - BlurPass runs the separable box blur, horizontal then vertical,
//     with a kernel chosen from the source width.
//   - MipChain builds the downsampled levels BlurPass.ApplyChain blurs.
//
// SoftwareRenderer orders the passes for one compose.Frame. RenderImage
// prefers a registered GPU backend and falls back to a software renderer.
//
// Example:
//
//	r := render.NewSoftwareRenderer(render.Options{})
//	defer r.Close()
//
//	out, err := r.Render(ctx, &compose.Frame{
//	    State:       state,
//	    Instances:   instances,
//	    Textures:    table,
//	    SampleCount: 4,
//	})
//	if err != nil {
//	    return err
//	}
//	png.Encode(w, out.Image())
package render
