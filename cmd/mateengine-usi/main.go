package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/sanjo-shogi/mateengine/internal/mate"
	"github.com/sanjo-shogi/mateengine/internal/usi"
)

// defaultHashMB sizes the transposition table before the host sends
// setoption USI_Hash.
const defaultHashMB = 64

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	kh := mate.New()
	kh.Init()
	kh.Resize(defaultHashMB)

	protocol := usi.New(kh)
	protocol.Run()
}
