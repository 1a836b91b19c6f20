package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/annel0/voxelstream/internal/culling"
	"github.com/annel0/voxelstream/internal/logging"
	"github.com/annel0/voxelstream/internal/render"
	"github.com/annel0/voxelstream/internal/util"
	"github.com/annel0/voxelstream/internal/world"
	"github.com/annel0/voxelstream/internal/world/block"
)

func main() {
	var (
		out     = flag.String("out", "meshdump.zst", "Output file")
		seed    = flag.Int64("seed", util.DefaultSeed, "Noise seed")
		noise   = flag.String("noise", "perlin", "Height field: perlin, simplex, flat")
		radius  = flag.Int("radius", 2, "Window radius in chunks")
		x       = flag.Float64("x", 0, "Observer X")
		z       = flag.Float64("z", 0, "Observer Z")
		workers = flag.Int("workers", 4, "Worker count")
		timeout = flag.Duration("timeout", time.Minute, "Build timeout")
		inspect = flag.String("inspect", "", "Print header and per-chunk stats of an existing dump and exit")
	)
	flag.Parse()

	if *inspect != "" {
		if err := printDump(*inspect); err != nil {
			log.Fatalf("❌ Failed to read dump: %v", err)
		}
		return
	}

	heights, err := util.NewField(*noise, *seed)
	if err != nil {
		log.Fatalf("❌ Failed to create height field: %v", err)
	}

	rec := render.NewRecorder()
	w := world.New(world.Config{Radius: *radius, Workers: *workers, Texture: 1},
		heights, block.DefaultAtlas(), rec, world.WithLogger(logging.NewNop("meshdump")))
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	observer := mgl32.Vec3{float32(*x), 0, float32(*z)}
	started := time.Now()
	for !w.Settled() {
		if ctx.Err() != nil {
			log.Fatalf("❌ Window was not built in %s: %+v", *timeout, w.Stats())
		}
		w.Frame(ctx, observer, culling.Frustum{})
		rec.EndFrame()
		time.Sleep(time.Millisecond)
	}

	chunks := w.Store().Snapshot()
	sort.Slice(chunks, func(i, j int) bool {
		a, b := chunks[i].Key, chunks[j].Key
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	dump := render.Dump{Header: render.DumpHeader{
		Version: render.DumpVersion,
		RunID:   uuid.New(),
		Seed:    *seed,
		Created: time.Now().UTC(),
	}}
	for _, c := range chunks {
		g := c.Geometry()
		if g == nil {
			continue
		}
		dump.Meshes = append(dump.Meshes, render.MeshRecord{
			CX: c.Key.X, CZ: c.Key.Y,
			Quads:    g.Quads,
			Vertices: g.Vertices,
			Indices:  g.Indices,
		})
	}
	dump.Header.Chunks = len(dump.Meshes)

	if err := render.WriteDumpFile(*out, dump); err != nil {
		log.Fatalf("❌ Failed to write dump: %v", err)
	}
	fmt.Printf("✅ %d chunks meshed in %s, run %s -> %s\n",
		dump.Header.Chunks, time.Since(started).Round(time.Millisecond), dump.Header.RunID, *out)
}

func printDump(path string) error {
	d, err := render.ReadDumpFile(path)
	if err != nil {
		return err
	}
	h := d.Header
	fmt.Printf("run=%s version=%d seed=%d created=%s chunks=%d\n",
		h.RunID, h.Version, h.Seed, h.Created.Format(time.RFC3339), h.Chunks)

	total := 0
	for _, m := range d.Meshes {
		fmt.Printf("  [%d,%d] quads=%d vertices=%d indices=%d\n", m.CX, m.CZ, m.Quads, len(m.Vertices), len(m.Indices))
		total += m.Quads
	}
	fmt.Printf("total quads: %d\n", total)
	if total == 0 && len(d.Meshes) > 0 {
		fmt.Fprintln(os.Stderr, "⚠️  dump contains only empty meshes")
	}
	return nil
}
