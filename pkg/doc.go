// Package pkg provides the core libraries for chaoscrypt image scrambling.
//
// # Overview
//
// Chaoscrypt permutes the pixels of square images with two chaotic maps, the
// Arnold cat map and a generalized Baker map, and restores them exactly with
// the inverse map. It is a reversible geometric transform, not cryptographic
// encryption. The pkg directory is organized into three areas:
//
//  1. Maps: [grid], [transform], [arnold], [baker], and [key] (the Baker secret
//     key partition of the width)
//  2. Orchestration: [pipeline] runs one worker per color channel
//  3. Infrastructure: [imageio], [cache], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow through chaoscrypt:
//
//	image file
//	     ↓
//	[imageio] Split (one grid per channel)
//	     ↓
//	[pipeline] Runner (resolve options, load or generate the secret key)
//	     ↓
//	[arnold] / [baker] on every channel concurrently
//	     ↓
//	[imageio] Merge + Save (lossless formats only)
//
// # Quick Start
//
// Scramble grids directly:
//
//	k, _ := key.Generate(g.Size())
//	scrambled, _ := baker.Encrypt(g, g.Size(), k, transform.Horizontal)
//	restored, _ := baker.Decrypt(scrambled, g.Size(), k, transform.Horizontal)
//
// Or run a whole image through the pipeline:
//
//	img, _ := imageio.Load("cat.png")
//	channels, _ := imageio.Split(img)
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, _ := runner.Execute(ctx, channels, pipeline.Options{Map: "arnold", A: 3, B: 5})
//	grids, _ := result.Grids()
//	out, _ := imageio.Merge(grids)
//	_ = imageio.Save(out, "cat.encrypt.png")
//
// [grid]: github.com/matzehuels/chaoscrypt/pkg/grid
// [transform]: github.com/matzehuels/chaoscrypt/pkg/transform
// [arnold]: github.com/matzehuels/chaoscrypt/pkg/arnold
// [baker]: github.com/matzehuels/chaoscrypt/pkg/baker
// [key]: github.com/matzehuels/chaoscrypt/pkg/key
// [pipeline]: github.com/matzehuels/chaoscrypt/pkg/pipeline
// [imageio]: github.com/matzehuels/chaoscrypt/pkg/imageio
// [cache]: github.com/matzehuels/chaoscrypt/pkg/cache
// [observability]: github.com/matzehuels/chaoscrypt/pkg/observability
// [errors]: github.com/matzehuels/chaoscrypt/pkg/errors
// [buildinfo]: github.com/matzehuels/chaoscrypt/pkg/buildinfo
package pkg
