// jp2dump prints the box tree and decode metadata of JP2 files.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mrjoshuak/go-jp2"
)

func main() {
	verbose := flag.Bool("v", false, "log each box as it is read")
	tree := flag.Bool("xml", true, "print the box tree as XML")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: jp2dump [-v] [-xml=false] <file.jp2>...")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	failed := false
	for _, name := range flag.Args() {
		if err := dump(name, *tree); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func dump(name string, tree bool) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	file, err := jp2.ReadFile(f)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s ===\n", name)
	if tree {
		if err := file.DumpXML(os.Stdout); err != nil {
			return err
		}
	}

	md, err := file.Metadata()
	if err != nil {
		return err
	}
	fmt.Printf("Size: %dx%d\n", md.Width, md.Height)
	fmt.Printf("Components: %d, depths %v, signed %v\n", md.NumComponents, md.BitDepths, md.Signed)
	fmt.Printf("Channels: %v\n", md.Channels)
	fmt.Printf("Color space: %s\n", md.ColorSpace)
	if md.Profile != nil {
		fmt.Printf("ICC profile: %s %s v%s\n", md.Profile.Class, md.Profile.ColorSpace, md.Profile.VersionString())
	}
	if md.Palette != nil {
		fmt.Printf("Palette: %d entries x %d columns\n", md.Palette.NumEntries(), md.Palette.NumColumns())
	}
	if r := md.CaptureResolution; r != nil {
		x, y := r.DPI()
		fmt.Printf("Capture resolution: %.2f x %.2f dpi\n", x, y)
	}
	if r := md.DisplayResolution; r != nil {
		x, y := r.DPI()
		fmt.Printf("Display resolution: %.2f x %.2f dpi\n", x, y)
	}
	for i, jp2c := range file.Codestreams() {
		h, err := jp2c.Summary()
		if err != nil {
			fmt.Printf("Codestream %d: %d bytes (%v)\n", i, len(jp2c.Data), err)
			continue
		}
		fmt.Printf("Codestream %d: %d bytes, %dx%d, %dx%d tiles, %d resolutions\n",
			i, len(jp2c.Data), h.Width(), h.Height(), h.NumTilesX, h.NumTilesY, h.NumResolutions())
	}
	return nil
}
