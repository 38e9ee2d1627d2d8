package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color codes, applied only when stdout is a terminal.
const (
	reset  = "\033[0m"
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + reset
}

// Info prints an informational message with a component tag.
func Info(tag, msg string) {
	fmt.Printf("%s %s\n", paint(cyan, "["+tag+"]"), msg)
}

// Success prints a success message with a component tag.
func Success(tag, msg string) {
	fmt.Printf("%s %s\n", paint(green, "["+tag+"]"), msg)
}

// Warn prints a warning message with a component tag.
func Warn(tag, msg string) {
	fmt.Printf("%s %s\n", paint(yellow, "["+tag+"]"), msg)
}

// Error prints an error message with a component tag.
func Error(tag, msg string) {
	fmt.Printf("%s %s\n", paint(red, "["+tag+"]"), msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(paint(bold, "Frontier Forge "+version))
}

// Section prints a section header.
func Section(title string) {
	fmt.Println(paint(bold, "== "+title+" =="))
}

// Stats prints a single key/value statistic line under a section.
func Stats(key string, value interface{}) {
	fmt.Printf("   %-14s %v\n", key+":", value)
}
