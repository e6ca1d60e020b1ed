// ABOUTME: Stream inspection tool
// ABOUTME: Prints every stream of a media file and the one the player would pick
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Resonate-Protocol/resonate-play/pkg/ffmpeg"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: mediainfo <file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	streams, err := ffmpeg.Probe(path)
	if err != nil {
		log.Fatalf("Failed to probe %s: %v", path, err)
	}

	fmt.Printf("%s: %d streams\n", path, len(streams))
	for _, st := range streams {
		fmt.Printf("  %s\n", st)
	}

	src, err := ffmpeg.Open(path)
	if err != nil {
		fmt.Printf("No playable audio: %v\n", err)
		return
	}
	defer src.Close()

	fmt.Printf("Selected audio stream #%d: %s\n", src.AudioStream(), src.Format())
}
