package main

import (
	"fmt"
	"os"
	"time"

	"go-rhythm/audio"
	"go-rhythm/midiout"
	"go-rhythm/rhythm"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "kinds":
		testKinds()
	case "midi":
		testMIDI()
	case "pattern":
		key := "poly-3-2"
		if len(os.Args) > 2 {
			key = os.Args[2]
		}
		testPattern(key)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Renderer Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  kinds          - play every event kind through the speaker")
	fmt.Println("  midi           - play every event kind through the first MIDI port")
	fmt.Println("  pattern [key]  - play two bars of a catalog pattern")
}

var allKinds = []rhythm.EventKind{
	rhythm.KindAccent,
	rhythm.KindNormal,
	rhythm.KindGridA,
	rhythm.KindGridB,
}

func testKinds() {
	r, err := audio.NewRenderer()
	if err != nil {
		fmt.Println("speaker unavailable:", err)
		return
	}
	defer r.Close()

	now, _ := r.Now()
	for i, kind := range allKinds {
		at := now + 0.2 + float64(i)*0.5
		fmt.Printf("  %.1fs %s\n", at, kind)
		if err := r.Schedule(at, kind, 1.0); err != nil {
			fmt.Println("  schedule failed:", err)
		}
	}
	time.Sleep(3 * time.Second)
}

func testMIDI() {
	r, err := midiout.Open("")
	if err != nil {
		fmt.Println("MIDI unavailable:", err)
		return
	}
	defer r.Close()
	fmt.Println("port:", r.PortName())

	now, _ := r.Now()
	for i, kind := range allKinds {
		at := now + 0.2 + float64(i)*0.5
		fmt.Printf("  %.1fs %s\n", at, kind)
		if err := r.Schedule(at, kind, 1.0); err != nil {
			fmt.Println("  schedule failed:", err)
		}
	}
	time.Sleep(3 * time.Second)
}

func testPattern(key string) {
	r, err := audio.NewRenderer()
	if err != nil {
		fmt.Println("speaker unavailable:", err)
		return
	}
	defer r.Close()

	tr := rhythm.NewTransport(r, r)
	if err := tr.SetPattern(key); err != nil {
		fmt.Println(err)
		return
	}
	_, pat := tr.Pattern()
	fmt.Printf("two bars of %s\n", pat.Name)

	if err := tr.Start(); err != nil {
		fmt.Println(err)
		return
	}
	time.Sleep(4*time.Second + 200*time.Millisecond)
	tr.Stop()
}
