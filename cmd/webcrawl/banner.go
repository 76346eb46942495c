package main

import (
	"fmt"
	"io"
	"strings"
)

// bannerLines is the start-up banner of the crawl command.
var bannerLines = []string{
	"             __                         __",
	" _    _____ / /    ___________ __    __/ /__ ____",
	"| |/|/ / -_) _ \\  / __/ __/ _ `/ |/|/ / / -_) __/",
	"|__,__/\\__/_.__/  \\__/_/  \\_,_/|__,__/_/\\__/_/",
}

// printBanner writes the banner followed by a blank line.
func printBanner(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n\n", strings.Join(bannerLines, "\n"))
}
