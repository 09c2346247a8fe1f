// Dashboard inspector - debugging helper for marker and selector issues.
// Opens the dashboard with the same launcher settings as the main app
// and prints the inputs, buttons, and readiness markers it can see.
package main

import (
	"flag"
	"fmt"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

var (
	targetURL = flag.String("url", "http://localhost:3001", "Dashboard URL to inspect")
	headless  = flag.Bool("headless", true, "Run the browser headless")
)

func main() {
	flag.Parse()

	fmt.Printf("Launching browser to inspect %s...\n", *targetURL)

	l := launcher.New().
		Headless(*headless).
		Set("disable-dev-shm-usage").
		Set("no-first-run")

	url, err := l.Launch()
	if err != nil {
		fmt.Println("Failed to launch browser:", err)
		return
	}

	browser := rod.New().ControlURL(url).MustConnect()
	defer browser.MustClose()

	page := browser.MustPage(*targetURL)
	page.MustWaitLoad()
	time.Sleep(2 * time.Second)

	fmt.Println("\nCurrent URL:", page.MustInfo().URL)

	// List input fields and their placeholders
	inputs, err := page.Elements("input")
	if err != nil {
		fmt.Println("Error listing inputs:", err)
		return
	}

	fmt.Printf("\nFound %d input elements:\n\n", len(inputs))
	for i, input := range inputs {
		id, _ := input.Attribute("id")
		name, _ := input.Attribute("name")
		inputType, _ := input.Attribute("type")
		placeholder, _ := input.Attribute("placeholder")

		fmt.Printf("Input %d:\n", i+1)
		if id != nil {
			fmt.Printf("  id: %s\n", *id)
		}
		if name != nil {
			fmt.Printf("  name: %s\n", *name)
		}
		if inputType != nil {
			fmt.Printf("  type: %s\n", *inputType)
		}
		if placeholder != nil {
			fmt.Printf("  placeholder: %s\n", *placeholder)
		}
		fmt.Println()
	}

	// List buttons by visible text
	buttons, _ := page.Elements("button")
	fmt.Printf("Found %d buttons:\n", len(buttons))
	for i, btn := range buttons {
		text, _ := btn.Text()
		fmt.Printf("  Button %d: %q\n", i+1, text)
	}

	// Check the readiness markers the snapshotter waits on
	for _, marker := range []string{"Admin Dashboard", "Access Dashboard", "Total Requests"} {
		has, _, err := page.HasR("*", regexp.QuoteMeta(marker))
		if err != nil {
			fmt.Printf("\nMarker %q: probe error: %v\n", marker, err)
			continue
		}
		fmt.Printf("\nMarker %q present: %v\n", marker, has)
	}
}
