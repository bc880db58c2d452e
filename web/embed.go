// Package web embeds the built Vite frontend for single-binary distribution.
package web

import "embed"

// Assets contains the frontend production build output. The dist/
// directory is created by `npm run build` in the frontend repo and copied
// here before release builds.
//
//go:embed all:dist
var Assets embed.FS
