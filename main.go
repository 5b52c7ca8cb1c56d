package main

import (
	_ "embed"
	"fmt"
	"os"
	goruntime "runtime"
)

//go:embed embed/icon.ico
var trayIconICO []byte

//go:embed embed/icon.png
var trayIconPNG []byte

// trayIcon returns the icon format the platform tray expects.
func trayIcon() []byte {
	if goruntime.GOOS == "windows" {
		return trayIconICO
	}
	return trayIconPNG
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
